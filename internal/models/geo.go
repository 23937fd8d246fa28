// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package models

import (
	"fmt"
	"math"
)

// LatLng is a WGS84 coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Finite reports whether both components are finite numbers.
func (p LatLng) Finite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// InRange reports whether p is finite and within the valid latitude and
// longitude bounds.
func (p LatLng) InRange() bool {
	return p.Finite() && p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p LatLng) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lng)
}

// Size is a pixel dimension used for marker icons.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a pixel offset used for icon anchors.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}
