// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package registry

// DimensionKind distinguishes multi-value set filters from boolean toggles.
type DimensionKind string

const (
	// KindSet dimensions hold any subset of Values; matching is any-of.
	KindSet DimensionKind = "set"
	// KindToggle dimensions are booleans; false means "no constraint".
	KindToggle DimensionKind = "toggle"
)

// Filter dimension names. They double as query parameter names.
const (
	DimServices         = "services"
	DimPetTypes         = "petTypes"
	DimPriceRanges      = "priceRanges"
	DimAmenities        = "amenities"
	DimOpenNowOnly      = "openNowOnly"
	DimSpecialties      = "specialties"
	DimEmergencyOnly    = "emergencyOnly"
	DimAvailable24hOnly = "available24hOnly"
	DimPetFriendly      = "petFriendly"
	DimPetAmenities     = "petAmenities"
)

// Dimension is one user-selectable filter for a category.
type Dimension struct {
	Name   string        `json:"name"`
	Label  string        `json:"label"`
	Kind   DimensionKind `json:"kind"`
	Values []string      `json:"values,omitempty"`
}

// Allows reports whether value is in the dimension's domain. Toggles accept
// any value since they are parsed as booleans.
func (d Dimension) Allows(value string) bool {
	if d.Kind == KindToggle {
		return true
	}
	for _, v := range d.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Schema lists the filter dimensions valid for a category.
type Schema struct {
	Category   Category    `json:"category"`
	Dimensions []Dimension `json:"dimensions"`
}

// Dimension looks up a dimension by name.
func (s Schema) Dimension(name string) (Dimension, bool) {
	for _, d := range s.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Value domains shared across categories.
var (
	PriceRangeValues = []string{"budget", "standard", "premium"}

	GroomingServiceValues = []string{
		"full-grooming", "bath", "hygiene-trim", "nail-trim",
		"ear-cleaning", "teeth-brushing", "spa", "styling",
	}
	PetTypeValues = []string{"dog", "cat", "small-animal"}

	CafeAmenityValues = []string{
		"parking", "wifi", "outdoor-seating", "pet-menu",
		"playground", "large-dog-area", "reservation",
	}

	HospitalSpecialtyValues = []string{
		"general", "surgery", "internal-medicine", "dermatology",
		"dental", "ophthalmology", "orthopedics", "exotic", "imaging",
	}

	HotelPetAmenityValues = []string{
		"pet-bed", "pet-food", "dog-run", "pet-sitting",
		"grooming", "pool", "cctv",
	}
)

var schemas = map[Category][]Dimension{
	Grooming: {
		{Name: DimServices, Label: "Services", Kind: KindSet, Values: GroomingServiceValues},
		{Name: DimPetTypes, Label: "Pet types", Kind: KindSet, Values: PetTypeValues},
		{Name: DimPriceRanges, Label: "Price range", Kind: KindSet, Values: PriceRangeValues},
	},
	Cafe: {
		{Name: DimAmenities, Label: "Amenities", Kind: KindSet, Values: CafeAmenityValues},
		{Name: DimOpenNowOnly, Label: "Open now", Kind: KindToggle},
	},
	Hospital: {
		{Name: DimSpecialties, Label: "Specialties", Kind: KindSet, Values: HospitalSpecialtyValues},
		{Name: DimEmergencyOnly, Label: "Emergency care", Kind: KindToggle},
		{Name: DimAvailable24hOnly, Label: "Open 24 hours", Kind: KindToggle},
	},
	Hotel: {
		{Name: DimPetFriendly, Label: "Pets allowed", Kind: KindToggle},
		{Name: DimPetAmenities, Label: "Pet amenities", Kind: KindSet, Values: HotelPetAmenityValues},
		{Name: DimPriceRanges, Label: "Price range", Kind: KindSet, Values: PriceRangeValues},
	},
}

// FilterSchema returns the filter dimensions for c, or the grooming schema
// when c is unknown. The returned slices are copies.
func FilterSchema(c Category) Schema {
	dims, ok := schemas[c]
	if !ok {
		c = DefaultCategory
		dims = schemas[c]
	}
	out := make([]Dimension, len(dims))
	for i, d := range dims {
		d.Values = append([]string(nil), d.Values...)
		out[i] = d
	}
	return Schema{Category: c, Dimensions: out}
}
