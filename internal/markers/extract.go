// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package markers

import (
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

// extractAttributes maps a raw payload onto the attribute shape of category.
// Every field is populated: absent values fall back to defaults or zero values,
// and default lists are copied so markers never share backing arrays.
func extractAttributes(p payload, category registry.Category, d registry.AttributeDefaults) models.Attributes {
	switch category {
	case registry.Cafe:
		return &models.CafeAttributes{
			Amenities:    orDefault(p.slugList("amenities"), d.CafeAmenities),
			IsOpen:       p.boolean("isOpen", "openNow"),
			Rating:       rating(p),
			Phone:        p.str("phone", "phoneNumber"),
			Address:      p.str("address"),
			OpeningHours: p.str("openingHours", "hours"),
		}
	case registry.Hospital:
		return &models.HospitalAttributes{
			Specialties:  orDefault(p.slugList("specialties", "specialty"), d.HospitalSpecialties),
			IsEmergency:  p.boolean("isEmergency", "emergency"),
			Is24Hours:    p.boolean("is24Hours", "open24Hours", "is24h"),
			PhoneNumbers: phoneNumbers(p),
			Rating:       rating(p),
			Address:      p.str("address"),
		}
	case registry.Hotel:
		return &models.HotelAttributes{
			PetPolicy:    petPolicy(p),
			PetAmenities: orDefault(p.slugList("petAmenities"), d.HotelPetAmenities),
			PriceRange:   p.priceRange(d.HotelPriceRange, "priceRange", "price"),
			Rating:       rating(p),
			Phone:        p.str("phone", "phoneNumber"),
			Address:      p.str("address"),
		}
	default:
		return &models.GroomingAttributes{
			Services:     orDefault(p.slugList("services"), d.GroomingServices),
			PetTypes:     orDefault(p.slugList("petTypes", "pets"), d.GroomingPetTypes),
			PriceRange:   p.priceRange(d.GroomingPriceRange, "priceRange", "price"),
			Rating:       rating(p),
			Phone:        p.str("phone", "phoneNumber"),
			Address:      p.str("address"),
			OpeningHours: p.str("openingHours", "hours"),
		}
	}
}

func orDefault(v, def []string) []string {
	if len(v) > 0 {
		return v
	}
	out := make([]string, len(def))
	copy(out, def)
	return out
}

func phoneNumbers(p payload) []string {
	if nums := p.list("phoneNumbers", "phones"); len(nums) > 0 {
		return nums
	}
	if one := p.str("phone", "phoneNumber"); one != "" {
		return []string{one}
	}
	return []string{}
}

// petPolicy accepts an object {allowed, maxWeightKg, notes}, a bare boolean,
// or a label such as "allowed" / "not-allowed". Top-level petsAllowed and
// petFriendly flags are honored when no policy is given.
func petPolicy(p payload) models.PetPolicy {
	if obj, ok := p.object("petPolicy"); ok {
		return models.PetPolicy{
			Allowed:     obj.boolean("allowed", "petsAllowed"),
			MaxWeightKg: nonNegative(obj.number("maxWeightKg", "maxWeight")),
			Notes:       obj.str("notes", "description"),
		}
	}

	policy := models.PetPolicy{
		MaxWeightKg: nonNegative(p.number("maxPetWeightKg", "maxWeightKg")),
		Notes:       p.str("petPolicyNotes"),
	}
	if v, ok := p.lookup("petPolicy"); ok {
		switch t := v.(type) {
		case bool:
			policy.Allowed = t
		case string:
			switch slug(t) {
			case "allowed", "yes", "true", "pets-allowed", "pet-friendly":
				policy.Allowed = true
			}
		}
		return policy
	}
	policy.Allowed = p.boolean("petsAllowed", "petFriendly")
	return policy
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
