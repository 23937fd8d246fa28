// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package bridge

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/pawmap/internal/filter"
	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/models"
)

// Frame is one websocket text message in either direction.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Commands sent by the page.
const (
	TypeMount         = "mount"
	TypeFilters       = "filters"
	TypeLocation      = "location"
	TypeUnmount       = "unmount"
	TypeFallbackClick = "fallback_click"
	TypeSDKLoaded     = "sdk_loaded"
	TypeEvent         = "event"
	TypePing          = "ping"
)

// Commands sent to the page.
const (
	TypeLoadSDK           = "load_sdk"
	TypeCreateMap         = "create_map"
	TypeSetCenter         = "set_center"
	TypeAddControl        = "add_control"
	TypeDestroyMap        = "destroy_map"
	TypeCreateMarker      = "create_marker"
	TypeRemoveMarker      = "remove_marker"
	TypeCreateInfoWindow  = "create_info_window"
	TypeOpenInfoWindow    = "open_info_window"
	TypeCloseInfoWindow   = "close_info_window"
	TypeDestroyInfoWindow = "destroy_info_window"
	TypeAddListener       = "add_listener"
	TypeRemoveListener    = "remove_listener"
	TypeRender            = "render"
	TypeMarkerClick       = "marker_click"
	TypeViewState         = "view_state"
	TypeError             = "error"
	TypePong              = "pong"
)

// Error codes carried by TypeError frames.
const (
	CodeBadRequest  = "bad_request"
	CodeRateLimited = "rate_limited"
	CodeUnknownView = "unknown_view"
	CodeViewExists  = "view_exists"
	CodeMapFailed   = "map_failed"
	CodeLoadFailed  = "load_failed"
)

// MountCommand opens a category map in a page container. Location is the
// user's position when the page has one.
type MountCommand struct {
	View      string         `json:"view" validate:"required,max=64"`
	Category  string         `json:"category" validate:"required,category"`
	Container string         `json:"container" validate:"required,max=128"`
	Location  *models.LatLng `json:"location,omitempty"`
}

// FiltersCommand replaces the filter set of a view.
type FiltersCommand struct {
	View    string     `json:"view" validate:"required"`
	Filters filter.Set `json:"filters"`
}

// LocationCommand updates the user position. An empty View applies it to
// every view of the page.
type LocationCommand struct {
	View     string        `json:"view,omitempty"`
	Position models.LatLng `json:"position"`
}

// ViewCommand names a view.
type ViewCommand struct {
	View string `json:"view" validate:"required"`
}

// FallbackClickCommand activates a marker of a degraded view.
type FallbackClickCommand struct {
	View   string `json:"view" validate:"required"`
	Marker string `json:"marker" validate:"required"`
}

// SDKLoaded answers a load_sdk request. A non-empty Error means the page
// could not load the SDK. StaticBase, when set, is the static map endpoint
// the fallback renderer may use.
type SDKLoaded struct {
	Request    string `json:"request"`
	Error      string `json:"error,omitempty"`
	StaticBase string `json:"static_base,omitempty"`
}

// Event reports that a registered listener fired.
type Event struct {
	Listener string `json:"listener"`
}

type loadSDK struct {
	Request    string `json:"request"`
	Credential string `json:"credential"`
}

type createMap struct {
	Object    string `json:"object"`
	Container string `json:"container"`
	mapsdk.MapOptions
}

type setCenter struct {
	Object string        `json:"object"`
	Center models.LatLng `json:"center"`
}

type addControl struct {
	Map     string             `json:"map"`
	Control string             `json:"control"`
	Kind    mapsdk.ControlType `json:"kind"`
}

type objectRef struct {
	Object string `json:"object"`
}

type createMarker struct {
	Object   string        `json:"object"`
	Map      string        `json:"map"`
	Position models.LatLng `json:"position"`
	Title    string        `json:"title"`
	Icon     mapsdk.Icon   `json:"icon"`
	ZIndex   int           `json:"z_index"`
}

type createInfoWindow struct {
	Object string       `json:"object"`
	Popup  models.Popup `json:"popup"`
}

type openInfoWindow struct {
	Object string `json:"object"`
	Map    string `json:"map"`
	Anchor string `json:"anchor"`
}

type addListener struct {
	Listener string       `json:"listener"`
	Target   string       `json:"target"`
	Event    mapsdk.Event `json:"event"`
}

type render struct {
	Container string `json:"container"`
	HTML      string `json:"html"`
}

// MarkerClick carries the full marker of a click, live or fallback.
type MarkerClick struct {
	View   string        `json:"view"`
	Marker models.Marker `json:"marker"`
}

// ViewState summarizes a view after it changed.
type ViewState struct {
	View     string   `json:"view"`
	Category string   `json:"category"`
	Degraded bool     `json:"degraded"`
	Total    int      `json:"total"`
	Visible  []string `json:"visible"`
}

// ErrorMessage reports a rejected command.
type ErrorMessage struct {
	View    string `json:"view,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
