// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package registry is the static table of service categories shown on the map.
//
// Each category carries its display metadata (icon, colors, default zoom),
// the filter dimensions users can select for it, and the attribute defaults
// the marker pipeline substitutes for missing payload fields. Lookups never
// fail: unknown categories resolve to grooming so callers need no nil checks.
package registry

import (
	"strings"
)

// Category is the closed set of service kinds rendered on the map.
type Category string

const (
	Grooming Category = "grooming"
	Cafe     Category = "cafe"
	Hospital Category = "hospital"
	Hotel    Category = "hotel"
)

// DefaultCategory is returned for any unknown category.
const DefaultCategory = Grooming

var allCategories = []Category{Grooming, Cafe, Hospital, Hotel}

// All returns every known category in display order.
func All() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Parse normalizes s and reports whether it names a known category.
func Parse(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := configs[c]; ok {
		return c, true
	}
	return DefaultCategory, false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := configs[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// Config is the display metadata for one category.
type Config struct {
	Category        Category `json:"category"`
	DisplayName     string   `json:"display_name"`
	Icon            string   `json:"icon"`
	Color           string   `json:"color"`
	BackgroundColor string   `json:"background_color"`
	AccentColor     string   `json:"accent_color"`
	DefaultZoom     int      `json:"default_zoom"`
}

var configs = map[Category]Config{
	Grooming: {
		Category:        Grooming,
		DisplayName:     "Grooming",
		Icon:            "✂️",
		Color:           "#DB2777",
		BackgroundColor: "#FDF2F8",
		AccentColor:     "#F472B6",
		DefaultZoom:     14,
	},
	Cafe: {
		Category:        Cafe,
		DisplayName:     "Pet Cafe",
		Icon:            "☕",
		Color:           "#B45309",
		BackgroundColor: "#FFFBEB",
		AccentColor:     "#F59E0B",
		DefaultZoom:     15,
	},
	Hospital: {
		Category:        Hospital,
		DisplayName:     "Animal Hospital",
		Icon:            "🏥",
		Color:           "#DC2626",
		BackgroundColor: "#FEF2F2",
		AccentColor:     "#F87171",
		DefaultZoom:     13,
	},
	Hotel: {
		Category:        Hotel,
		DisplayName:     "Pet Hotel",
		Icon:            "🏨",
		Color:           "#2563EB",
		BackgroundColor: "#EFF6FF",
		AccentColor:     "#60A5FA",
		DefaultZoom:     13,
	},
}

// Get returns the display config for c, or the grooming config when c is unknown.
func Get(c Category) Config {
	if cfg, ok := configs[c]; ok {
		return cfg
	}
	return configs[DefaultCategory]
}
