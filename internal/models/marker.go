// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package models

import (
	"github.com/tomtom215/pawmap/internal/registry"
)

// Popup is the content of a marker's info window.
type Popup struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Lines    []string `json:"lines"`
}

// Marker is one validated place, ready to be filtered and rendered.
//
// ID is stable across re-renders and is the reconciliation key. Attributes
// always matches Category.
type Marker struct {
	ID         string            `json:"id"`
	Position   LatLng            `json:"position"`
	Name       string            `json:"name"`
	Category   registry.Category `json:"category"`
	Attributes Attributes        `json:"attributes"`
	Priority   int               `json:"priority"`
	Popup      Popup             `json:"popup"`
}

// Clone returns a deep copy of m.
func (m Marker) Clone() Marker {
	c := m
	if m.Attributes != nil {
		c.Attributes = m.Attributes.cloneAttributes()
	}
	c.Popup.Lines = cloneStrings(m.Popup.Lines)
	return c
}

// CloneMarkers deep-copies a marker slice. A nil input yields nil.
func CloneMarkers(ms []Marker) []Marker {
	if ms == nil {
		return nil
	}
	out := make([]Marker, len(ms))
	for i := range ms {
		out[i] = ms[i].Clone()
	}
	return out
}
