// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package filter applies user-selected constraints to a marker set.
//
// A Set carries one sub-filter per category; only the sub-filter of the
// category being filtered is consulted. Within a dimension requested values
// are ORed (any-match); across dimensions they are ANDed. An empty dimension
// or a false toggle matches everything, so the zero Set is neutral.
//
// Apply is pure and stable: it never reorders or mutates its input.
package filter

import (
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

// GroomingFilter constrains grooming markers.
type GroomingFilter struct {
	Services    []string `json:"services,omitempty"`
	PetTypes    []string `json:"petTypes,omitempty"`
	PriceRanges []string `json:"priceRanges,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f GroomingFilter) IsZero() bool {
	return len(f.Services) == 0 && len(f.PetTypes) == 0 && len(f.PriceRanges) == 0
}

func (f GroomingFilter) match(a *models.GroomingAttributes) bool {
	return anyOf(f.Services, a.Services) &&
		anyOf(f.PetTypes, a.PetTypes) &&
		oneOf(f.PriceRanges, a.PriceRange)
}

// CafeFilter constrains cafe markers.
type CafeFilter struct {
	Amenities   []string `json:"amenities,omitempty"`
	OpenNowOnly bool     `json:"openNowOnly,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f CafeFilter) IsZero() bool {
	return len(f.Amenities) == 0 && !f.OpenNowOnly
}

func (f CafeFilter) match(a *models.CafeAttributes) bool {
	if f.OpenNowOnly && !a.IsOpen {
		return false
	}
	return anyOf(f.Amenities, a.Amenities)
}

// HospitalFilter constrains hospital markers.
type HospitalFilter struct {
	Specialties      []string `json:"specialties,omitempty"`
	EmergencyOnly    bool     `json:"emergencyOnly,omitempty"`
	Available24hOnly bool     `json:"available24hOnly,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f HospitalFilter) IsZero() bool {
	return len(f.Specialties) == 0 && !f.EmergencyOnly && !f.Available24hOnly
}

func (f HospitalFilter) match(a *models.HospitalAttributes) bool {
	if f.EmergencyOnly && !a.IsEmergency {
		return false
	}
	if f.Available24hOnly && !a.Is24Hours {
		return false
	}
	return anyOf(f.Specialties, a.Specialties)
}

// HotelFilter constrains hotel markers.
type HotelFilter struct {
	PetFriendly  bool     `json:"petFriendly,omitempty"`
	PetAmenities []string `json:"petAmenities,omitempty"`
	PriceRanges  []string `json:"priceRanges,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f HotelFilter) IsZero() bool {
	return !f.PetFriendly && len(f.PetAmenities) == 0 && len(f.PriceRanges) == 0
}

func (f HotelFilter) match(a *models.HotelAttributes) bool {
	if f.PetFriendly && !a.PetPolicy.Allowed {
		return false
	}
	return anyOf(f.PetAmenities, a.PetAmenities) && oneOf(f.PriceRanges, a.PriceRange)
}

// Set holds the user's constraints for every category.
type Set struct {
	Grooming GroomingFilter `json:"grooming"`
	Cafe     CafeFilter     `json:"cafe"`
	Hospital HospitalFilter `json:"hospital"`
	Hotel    HotelFilter    `json:"hotel"`
}

// Neutral reports whether the sub-filter for category matches everything.
// Unknown categories use the grooming sub-filter.
func (s Set) Neutral(category registry.Category) bool {
	switch registry.Get(category).Category {
	case registry.Cafe:
		return s.Cafe.IsZero()
	case registry.Hospital:
		return s.Hospital.IsZero()
	case registry.Hotel:
		return s.Hotel.IsZero()
	default:
		return s.Grooming.IsZero()
	}
}

// Match reports whether m passes the sub-filter for category. A marker whose
// attributes belong to another category only passes a neutral filter.
func (s Set) Match(m *models.Marker, category registry.Category) bool {
	if s.Neutral(category) {
		return true
	}
	switch registry.Get(category).Category {
	case registry.Cafe:
		a, ok := m.Attributes.(*models.CafeAttributes)
		return ok && s.Cafe.match(a)
	case registry.Hospital:
		a, ok := m.Attributes.(*models.HospitalAttributes)
		return ok && s.Hospital.match(a)
	case registry.Hotel:
		a, ok := m.Attributes.(*models.HotelAttributes)
		return ok && s.Hotel.match(a)
	default:
		a, ok := m.Attributes.(*models.GroomingAttributes)
		return ok && s.Grooming.match(a)
	}
}

// Apply returns the markers that pass set for category, in input order. The
// result is always a new slice; a neutral filter returns a copy of the input.
func Apply(markers []models.Marker, set Set, category registry.Category) []models.Marker {
	out := make([]models.Marker, 0, len(markers))
	if set.Neutral(category) {
		return append(out, markers...)
	}
	for i := range markers {
		if set.Match(&markers[i], category) {
			out = append(out, markers[i])
		}
	}
	return out
}

// anyOf is true when want is empty or shares at least one value with have.
func anyOf(want, have []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

// oneOf is true when want is empty or contains v.
func oneOf(want []string, v string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if w == v {
			return true
		}
	}
	return false
}
