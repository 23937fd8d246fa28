// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package registry

// AttributeDefaults are the values substituted for payload fields a place
// record does not carry. They are product-data choices, so every field can be
// overridden from the "defaults" config section.
type AttributeDefaults struct {
	GroomingServices    []string `koanf:"grooming_services"`
	GroomingPetTypes    []string `koanf:"grooming_pet_types"`
	GroomingPriceRange  string   `koanf:"grooming_price_range"`
	CafeAmenities       []string `koanf:"cafe_amenities"`
	HospitalSpecialties []string `koanf:"hospital_specialties"`
	HotelPetAmenities   []string `koanf:"hotel_pet_amenities"`
	HotelPriceRange     string   `koanf:"hotel_price_range"`
}

// DefaultAttributeDefaults returns the built-in substitution values.
func DefaultAttributeDefaults() AttributeDefaults {
	return AttributeDefaults{
		GroomingServices:    []string{"full-grooming"},
		GroomingPetTypes:    []string{"dog"},
		GroomingPriceRange:  "standard",
		CafeAmenities:       []string{},
		HospitalSpecialties: []string{"general"},
		HotelPetAmenities:   []string{},
		HotelPriceRange:     "standard",
	}
}

// Merge returns d with every non-empty field of override applied on top.
func (d AttributeDefaults) Merge(override AttributeDefaults) AttributeDefaults {
	out := d
	if len(override.GroomingServices) > 0 {
		out.GroomingServices = override.GroomingServices
	}
	if len(override.GroomingPetTypes) > 0 {
		out.GroomingPetTypes = override.GroomingPetTypes
	}
	if override.GroomingPriceRange != "" {
		out.GroomingPriceRange = override.GroomingPriceRange
	}
	if len(override.CafeAmenities) > 0 {
		out.CafeAmenities = override.CafeAmenities
	}
	if len(override.HospitalSpecialties) > 0 {
		out.HospitalSpecialties = override.HospitalSpecialties
	}
	if len(override.HotelPetAmenities) > 0 {
		out.HotelPetAmenities = override.HotelPetAmenities
	}
	if override.HotelPriceRange != "" {
		out.HotelPriceRange = override.HotelPriceRange
	}
	return out
}
