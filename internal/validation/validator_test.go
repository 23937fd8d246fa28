// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package validation

import (
	"math"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

type pageQuery struct {
	Category string `json:"category" validate:"required,category"`
	Limit    int    `json:"limit" validate:"min=1,max=500"`
	Offset   int    `json:"offset" validate:"min=0"`
	Sort     string `json:"sort" validate:"omitempty,oneof=name priority"`
}

type position struct {
	Lat float64  `json:"lat" validate:"finite,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input interface{}
	}{
		{"page query", &pageQuery{Category: "cafe", Limit: 50}},
		{"category is case-insensitive", &pageQuery{Category: "Hotel", Limit: 1, Sort: "name"}},
		{"position", &position{Lat: 37.5665, Lng: ptr(126.978)}},
		{"position bounds", &position{Lat: -90, Lng: ptr(180)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{"missing category", &pageQuery{Limit: 1}, "category", "required"},
		{"unknown category", &pageQuery{Category: "boarding", Limit: 1}, "category", "category"},
		{"limit too high", &pageQuery{Category: "cafe", Limit: 501}, "limit", "max"},
		{"bad sort", &pageQuery{Category: "cafe", Limit: 1, Sort: "rating"}, "sort", "oneof"},
		{"latitude out of range", &position{Lat: 91, Lng: ptr(0)}, "lat", "latitude"},
		{"NaN latitude", &position{Lat: math.NaN(), Lng: ptr(0)}, "lat", "finite"},
		{"missing longitude", &position{Lat: 0}, "lng", "required"},
		{"infinite longitude", &position{Lat: 0, Lng: ptr(math.Inf(1))}, "lng", "longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			first := err.Errors()[0]
			if first.Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", first.Field(), tt.wantField)
			}
			if first.Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", first.Tag(), tt.wantTag)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("Error() = %q, should mention %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&pageQuery{Category: "cafe", Limit: 0})
	if single == nil {
		t.Fatal("expected error")
	}
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s", apiErr.Code)
	}
	if apiErr.Details["field"] != "limit" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	multi := ValidateStruct(&pageQuery{Category: "x", Limit: 0})
	if multi == nil {
		t.Fatal("expected error")
	}
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details = %v", apiErr.Details)
	}
	if got := multi.Tags(); len(got) != 2 || got[0] != "category" || got[1] != "min" {
		t.Errorf("Tags() = %v", got)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	t.Parallel()

	ve := &RequestValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
	if ve.ToAPIError().Message != "Validation failed" {
		t.Error("unexpected message for empty error set")
	}
}

func ptr(f float64) *float64 { return &f }
