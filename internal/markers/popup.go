// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package markers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

// BuildPopup renders the info window content for a marker. Lines are only
// emitted for attributes that carry a value.
func BuildPopup(name string, attrs models.Attributes) models.Popup {
	cfg := registry.Get(categoryOf(attrs))
	lines := &lineBuilder{out: []string{}}

	switch a := attrs.(type) {
	case *models.GroomingAttributes:
		lines.list("Services", a.Services)
		lines.list("Pets", a.PetTypes)
		lines.kv("Price", a.PriceRange)
		lines.rating(a.Rating)
		lines.kv("Hours", a.OpeningHours)
		lines.kv("Phone", a.Phone)
		lines.kv("Address", a.Address)
	case *models.CafeAttributes:
		lines.flag(a.IsOpen, "Open now")
		lines.list("Amenities", a.Amenities)
		lines.rating(a.Rating)
		lines.kv("Hours", a.OpeningHours)
		lines.kv("Phone", a.Phone)
		lines.kv("Address", a.Address)
	case *models.HospitalAttributes:
		lines.flag(a.IsEmergency, "Emergency care available")
		lines.flag(a.Is24Hours, "Open 24 hours")
		lines.list("Specialties", a.Specialties)
		lines.list("Phone", a.PhoneNumbers)
		lines.rating(a.Rating)
		lines.kv("Address", a.Address)
	case *models.HotelAttributes:
		if a.PetPolicy.Allowed {
			if a.PetPolicy.MaxWeightKg > 0 {
				lines.add("Pets allowed up to " + strconv.FormatFloat(a.PetPolicy.MaxWeightKg, 'f', -1, 64) + " kg")
			} else {
				lines.add("Pets allowed")
			}
		}
		lines.kv("Pet policy", a.PetPolicy.Notes)
		lines.list("Pet amenities", a.PetAmenities)
		lines.kv("Price", a.PriceRange)
		lines.rating(a.Rating)
		lines.kv("Phone", a.Phone)
		lines.kv("Address", a.Address)
	}

	return models.Popup{
		Title:    name,
		Subtitle: strings.TrimSpace(cfg.Icon + " " + cfg.DisplayName),
		Lines:    lines.out,
	}
}

func categoryOf(attrs models.Attributes) registry.Category {
	if attrs == nil {
		return registry.DefaultCategory
	}
	return attrs.Category()
}

type lineBuilder struct {
	out []string
}

func (b *lineBuilder) add(line string) {
	b.out = append(b.out, line)
}

func (b *lineBuilder) kv(label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		b.add(label + ": " + value)
	}
}

func (b *lineBuilder) list(label string, values []string) {
	if len(values) > 0 {
		b.add(label + ": " + strings.Join(values, ", "))
	}
}

func (b *lineBuilder) flag(set bool, line string) {
	if set {
		b.add(line)
	}
}

// rating treats 0 as "not rated".
func (b *lineBuilder) rating(r float64) {
	if r > 0 {
		b.add(fmt.Sprintf("Rating: %.1f / 5", r))
	}
}
