// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package mapsdk describes the interactive map SDK capability the engine
// drives, and provides the single-flight loader that shares one SDK load
// between every map view of a page.
//
// The engine depends on nothing beyond these interfaces. Implementations are
// the websocket bridge to a browser page (internal/bridge) and the recording
// fake in mapsdk/sdktest.
package mapsdk

import (
	"context"
	"errors"

	"github.com/tomtom215/pawmap/internal/models"
)

// ErrCredentialMissing is returned by Load when no API key is configured.
// It is distinct from load failures because retrying cannot help.
var ErrCredentialMissing = errors.New("mapsdk: credential missing")

// Loader loads the SDK for one credential. Load blocks until the SDK signals
// ready, fails, or ctx ends.
type Loader interface {
	Load(ctx context.Context, credential string) (Handle, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, credential string) (Handle, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, credential string) (Handle, error) {
	return f(ctx, credential)
}

// Handle is a loaded SDK. Constructors may fail or panic; callers recover.
type Handle interface {
	NewMap(container Container, opts MapOptions) (Map, error)
	NewMarker(opts MarkerOptions) (Marker, error)
	NewInfoWindow(opts InfoWindowOptions) (InfoWindow, error)
	NewZoomControl() (Control, error)
	NewMapTypeControl() (Control, error)
	AddListener(target Marker, event Event, fn func()) (Listener, error)
}

// Map is one live map instance.
type Map interface {
	// SetCenter pans without changing zoom.
	SetCenter(center models.LatLng) error
	AddControl(c Control) error
	Destroy()
}

// Marker is one live marker instance. Remove detaches it from its map; the
// SDK does not collect markers on its own.
type Marker interface {
	Remove()
}

// InfoWindow is a popup anchored to a marker. Close hides it; Destroy
// releases it, and like markers it is never collected otherwise.
type InfoWindow interface {
	Open(m Map, anchor Marker) error
	Close()
	Destroy()
}

// ControlType names a map control.
type ControlType string

const (
	ControlZoom    ControlType = "zoom"
	ControlMapType ControlType = "map_type"
)

// Control is a map UI control.
type Control interface {
	Type() ControlType
}

// Listener is an event registration.
type Listener interface {
	Remove()
}

// Event names an SDK event.
type Event string

// EventClick fires when a marker is activated.
const EventClick Event = "click"

// Container is the host element a map or fallback renders into.
type Container interface {
	ID() string
	// Replace swaps the element contents for html.
	Replace(html string) error
}

// MapOptions configure NewMap.
type MapOptions struct {
	Center models.LatLng `json:"center"`
	Zoom   int           `json:"zoom"`
}

// Icon is a marker glyph.
type Icon struct {
	Glyph      string       `json:"glyph"`
	Color      string       `json:"color"`
	Background string       `json:"background"`
	Size       models.Size  `json:"size"`
	Anchor     models.Point `json:"anchor"`
}

// MarkerOptions configure NewMarker.
type MarkerOptions struct {
	Map      Map           `json:"-"`
	Position models.LatLng `json:"position"`
	Title    string        `json:"title"`
	Icon     Icon          `json:"icon"`
	ZIndex   int           `json:"z_index"`
}

// InfoWindowOptions configure NewInfoWindow.
type InfoWindowOptions struct {
	Popup models.Popup `json:"popup"`
}

// StaticMarker is one labelled pin on a static map image.
type StaticMarker struct {
	Position models.LatLng `json:"position"`
	Label    string        `json:"label"`
	Color    string        `json:"color"`
}

// StaticMapOptions configure a static map image.
type StaticMapOptions struct {
	Center  models.LatLng  `json:"center"`
	Zoom    int            `json:"zoom"`
	Size    models.Size    `json:"size"`
	Markers []StaticMarker `json:"markers"`
}

// StaticMapper is the lowest-common SDK primitive: a plain image URL with
// pins. Handles that support it implement this interface in addition to
// Handle; the fallback renderer uses it when available.
type StaticMapper interface {
	StaticMapURL(opts StaticMapOptions) (string, error)
}
