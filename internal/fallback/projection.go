// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package fallback

import (
	"math"

	"github.com/tomtom215/pawmap/internal/models"
)

// Web Mercator latitude limit; beyond it the projection diverges.
const maxMercatorLat = 85.05112878

// mercator projects p onto the unit square, x growing east and y growing south.
func mercator(p models.LatLng) (x, y float64) {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, p.Lat))
	x = (p.Lng + 180) / 360
	rad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(rad)+1/math.Cos(rad))/math.Pi) / 2
	return x, y
}

// plotter fits a set of coordinates into a width×height canvas with margin,
// preserving aspect ratio.
type plotter struct {
	width, height, margin float64
	minX, minY            float64
	scale                 float64
	offX, offY            float64
}

func newPlotter(points []models.LatLng, width, height, margin float64) *plotter {
	p := &plotter{width: width, height: height, margin: margin}
	if len(points) == 0 {
		return p
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range points {
		x, y := mercator(pt)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	p.minX, p.minY = minX, minY

	spanX, spanY := maxX-minX, maxY-minY
	innerW, innerH := width-2*margin, height-2*margin
	switch {
	case spanX == 0 && spanY == 0:
		p.scale = 0
	case spanX == 0:
		p.scale = innerH / spanY
	case spanY == 0:
		p.scale = innerW / spanX
	default:
		p.scale = math.Min(innerW/spanX, innerH/spanY)
	}
	p.offX = margin + (innerW-spanX*p.scale)/2
	p.offY = margin + (innerH-spanY*p.scale)/2
	return p
}

// project returns canvas coordinates rounded to one decimal place.
func (p *plotter) project(pt models.LatLng) (float64, float64) {
	x, y := mercator(pt)
	cx := p.offX + (x-p.minX)*p.scale
	cy := p.offY + (y-p.minY)*p.scale
	return math.Round(cx*10) / 10, math.Round(cy*10) / 10
}
