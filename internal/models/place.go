// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// PlaceRecord is one raw place as delivered by the data backend.
//
// Only identity and coordinates are typed; everything category-specific stays
// in Payload until the marker pipeline extracts it. Coordinates that are
// absent or not JSON numbers decode to nil so validation can drop the record.
type PlaceRecord struct {
	ID        string         `json:"id" validate:"required"`
	Name      string         `json:"name" validate:"required"`
	Latitude  *float64       `json:"latitude" validate:"required,latitude"`
	Longitude *float64       `json:"longitude" validate:"required,longitude"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Coordinates returns the record position and whether both components are set.
func (r *PlaceRecord) Coordinates() (LatLng, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return LatLng{}, false
	}
	return LatLng{Lat: *r.Latitude, Lng: *r.Longitude}, true
}

var (
	latitudeKeys  = []string{"latitude", "lat"}
	longitudeKeys = []string{"longitude", "lng", "lon"}
)

// UnmarshalJSON accepts the loose shapes backends produce: numeric or string
// IDs, several coordinate key spellings, and category fields either at the top
// level or nested under "payload".
func (r *PlaceRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode place record: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("decode place record: expected object")
	}

	*r = PlaceRecord{
		ID:      identityString(raw["id"]),
		Name:    identityString(raw["name"]),
		Payload: make(map[string]any, len(raw)),
	}
	r.Latitude = firstNumber(raw, latitudeKeys)
	r.Longitude = firstNumber(raw, longitudeKeys)

	if nested, ok := raw["payload"].(map[string]any); ok {
		for k, v := range nested {
			r.Payload[k] = normalizeValue(v)
		}
	}
	for k, v := range raw {
		switch k {
		case "id", "name", "payload", "latitude", "lat", "longitude", "lng", "lon":
			continue
		}
		r.Payload[k] = normalizeValue(v)
	}
	return nil
}

func identityString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func firstNumber(raw map[string]any, keys []string) *float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case json.Number:
			f, err := t.Float64()
			if err != nil {
				return nil
			}
			return &f
		case float64:
			return &t
		default:
			return nil
		}
	}
	return nil
}

// normalizeValue converts json.Number leaves to float64 so the payload only
// holds the plain JSON value types.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeValue(t[k])
		}
		return t
	default:
		return v
	}
}

// Float64Ptr returns a pointer to f. Handy for building records in code.
func Float64Ptr(f float64) *float64 {
	return &f
}
