// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/pawmap/internal/registry"
)

// ErrInvalidFilter is wrapped by every filter parsing or validation error.
var ErrInvalidFilter = errors.New("invalid filter")

// FromQuery parses the sub-filter for category from query parameters named
// after the registry dimensions. Set dimensions accept repeated parameters
// and comma-separated values; toggles accept strconv.ParseBool forms.
// Parameters that are not dimensions of category are ignored.
func FromQuery(category registry.Category, q url.Values) (Set, error) {
	schema := registry.FilterSchema(category)
	var set Set

	for _, dim := range schema.Dimensions {
		raw, ok := q[dim.Name]
		if !ok {
			continue
		}
		switch dim.Kind {
		case registry.KindToggle:
			v := strings.TrimSpace(lastNonEmpty(raw))
			if v == "" {
				continue
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Set{}, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidFilter, dim.Name, v)
			}
			set.setToggle(schema.Category, dim.Name, b)
		case registry.KindSet:
			set.setValues(schema.Category, dim.Name, splitValues(raw))
		}
	}

	if err := set.Validate(schema.Category); err != nil {
		return Set{}, err
	}
	return set, nil
}

// Validate checks every set value of the sub-filter for category against the
// registry value domains.
func (s Set) Validate(category registry.Category) error {
	schema := registry.FilterSchema(category)
	for _, dim := range schema.Dimensions {
		if dim.Kind != registry.KindSet {
			continue
		}
		for _, v := range s.values(schema.Category, dim.Name) {
			if !dim.Allows(v) {
				return fmt.Errorf("%w: %q is not a valid %s value", ErrInvalidFilter, v, dim.Name)
			}
		}
	}
	return nil
}

// Normalize returns a copy of s whose set values for category are trimmed,
// lowercased and deduplicated the same way FromQuery treats query values.
// Sub-filters of other categories are returned unchanged.
func (s Set) Normalize(category registry.Category) Set {
	schema := registry.FilterSchema(category)
	for _, dim := range schema.Dimensions {
		if dim.Kind != registry.KindSet {
			continue
		}
		if v := s.values(schema.Category, dim.Name); len(v) > 0 {
			s.setValues(schema.Category, dim.Name, splitValues(v))
		}
	}
	return s
}

func splitValues(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func lastNonEmpty(raw []string) string {
	for i := len(raw) - 1; i >= 0; i-- {
		if strings.TrimSpace(raw[i]) != "" {
			return raw[i]
		}
	}
	return ""
}

func (s *Set) setToggle(c registry.Category, name string, v bool) {
	switch {
	case c == registry.Cafe && name == registry.DimOpenNowOnly:
		s.Cafe.OpenNowOnly = v
	case c == registry.Hospital && name == registry.DimEmergencyOnly:
		s.Hospital.EmergencyOnly = v
	case c == registry.Hospital && name == registry.DimAvailable24hOnly:
		s.Hospital.Available24hOnly = v
	case c == registry.Hotel && name == registry.DimPetFriendly:
		s.Hotel.PetFriendly = v
	}
}

func (s *Set) setValues(c registry.Category, name string, v []string) {
	if p := s.valuesPtr(c, name); p != nil {
		*p = v
	}
}

func (s Set) values(c registry.Category, name string) []string {
	if p := s.valuesPtr(c, name); p != nil {
		return *p
	}
	return nil
}

func (s *Set) valuesPtr(c registry.Category, name string) *[]string {
	switch c {
	case registry.Grooming:
		switch name {
		case registry.DimServices:
			return &s.Grooming.Services
		case registry.DimPetTypes:
			return &s.Grooming.PetTypes
		case registry.DimPriceRanges:
			return &s.Grooming.PriceRanges
		}
	case registry.Cafe:
		if name == registry.DimAmenities {
			return &s.Cafe.Amenities
		}
	case registry.Hospital:
		if name == registry.DimSpecialties {
			return &s.Hospital.Specialties
		}
	case registry.Hotel:
		switch name {
		case registry.DimPetAmenities:
			return &s.Hotel.PetAmenities
		case registry.DimPriceRanges:
			return &s.Hotel.PriceRanges
		}
	}
	return nil
}
