// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package models

import (
	"github.com/tomtom215/pawmap/internal/registry"
)

// Attributes is the category-specific attribute set of a Marker. The set of
// implementations is closed; switch on the concrete type to read fields.
type Attributes interface {
	Category() registry.Category
	cloneAttributes() Attributes
}

// GroomingAttributes describes a grooming salon.
type GroomingAttributes struct {
	Services     []string `json:"services"`
	PetTypes     []string `json:"pet_types"`
	PriceRange   string   `json:"price_range"`
	Rating       float64  `json:"rating"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	OpeningHours string   `json:"opening_hours"`
}

// Category implements Attributes.
func (a *GroomingAttributes) Category() registry.Category { return registry.Grooming }

func (a *GroomingAttributes) cloneAttributes() Attributes {
	c := *a
	c.Services = cloneStrings(a.Services)
	c.PetTypes = cloneStrings(a.PetTypes)
	return &c
}

// CafeAttributes describes a pet-friendly cafe.
type CafeAttributes struct {
	Amenities    []string `json:"amenities"`
	IsOpen       bool     `json:"is_open"`
	Rating       float64  `json:"rating"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	OpeningHours string   `json:"opening_hours"`
}

// Category implements Attributes.
func (a *CafeAttributes) Category() registry.Category { return registry.Cafe }

func (a *CafeAttributes) cloneAttributes() Attributes {
	c := *a
	c.Amenities = cloneStrings(a.Amenities)
	return &c
}

// HospitalAttributes describes a veterinary hospital.
type HospitalAttributes struct {
	Specialties  []string `json:"specialties"`
	IsEmergency  bool     `json:"is_emergency"`
	Is24Hours    bool     `json:"is_24_hours"`
	PhoneNumbers []string `json:"phone_numbers"`
	Rating       float64  `json:"rating"`
	Address      string   `json:"address"`
}

// Category implements Attributes.
func (a *HospitalAttributes) Category() registry.Category { return registry.Hospital }

func (a *HospitalAttributes) cloneAttributes() Attributes {
	c := *a
	c.Specialties = cloneStrings(a.Specialties)
	c.PhoneNumbers = cloneStrings(a.PhoneNumbers)
	return &c
}

// PetPolicy is a hotel's pet admission policy. MaxWeightKg of 0 means no limit.
type PetPolicy struct {
	Allowed     bool    `json:"allowed"`
	MaxWeightKg float64 `json:"max_weight_kg"`
	Notes       string  `json:"notes"`
}

// HotelAttributes describes a pet hotel or pet-friendly lodging.
type HotelAttributes struct {
	PetPolicy    PetPolicy `json:"pet_policy"`
	PetAmenities []string  `json:"pet_amenities"`
	PriceRange   string    `json:"price_range"`
	Rating       float64   `json:"rating"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
}

// Category implements Attributes.
func (a *HotelAttributes) Category() registry.Category { return registry.Hotel }

func (a *HotelAttributes) cloneAttributes() Attributes {
	c := *a
	c.PetAmenities = cloneStrings(a.PetAmenities)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
