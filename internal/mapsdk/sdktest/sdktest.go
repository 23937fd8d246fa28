// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package sdktest provides an in-memory map SDK that records every call.
//
//	sdk := sdktest.New()
//	release := sdk.Gate()        // hold loads until release()
//	sdk.FailMarker("B", err)     // NewMarker for title "B" fails
//	...
//	sdk.LoadCalls()              // underlying loads observed
//	sdk.LiveMarkerTitles()       // markers not yet removed
//	sdk.LiveInfoWindows()        // info windows not yet destroyed
//	sdk.Click("A")               // fire A's click listeners
package sdktest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/models"
)

// SDK is a recording fake of the map SDK. It is safe for concurrent use.
type SDK struct {
	mu sync.Mutex

	loadCalls int
	gate      chan struct{}
	loadErr   error
	loadPanic any
	mapErr    error
	mapPanic  any
	failures  map[string]any
	static    bool

	maps        []*Map
	markers     []*Marker
	infoWindows []*InfoWindow
	listeners   []*Listener
	peakLive    int
}

// New returns an SDK whose loads succeed immediately.
func New() *SDK {
	return &SDK{failures: make(map[string]any)}
}

// WithStaticMaps makes loaded handles implement mapsdk.StaticMapper.
func (s *SDK) WithStaticMaps() *SDK {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.static = true
	return s
}

// Gate makes subsequent loads block until the returned release is called.
func (s *SDK) Gate() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gate = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// FailLoad makes loads return err. Pass nil to clear.
func (s *SDK) FailLoad(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// PanicLoad makes loads panic with v.
func (s *SDK) PanicLoad(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadPanic = v
}

// FailMap makes NewMap return err.
func (s *SDK) FailMap(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapErr = err
}

// PanicMap makes NewMap panic with v.
func (s *SDK) PanicMap(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapPanic = v
}

// FailMarker makes NewMarker for title return err.
func (s *SDK) FailMarker(title string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[title] = err
}

// PanicMarker makes NewMarker for title panic with v.
func (s *SDK) PanicMarker(title string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[title] = panicValue{v}
}

type panicValue struct{ v any }

// Load implements mapsdk.Loader.
func (s *SDK) Load(ctx context.Context, credential string) (mapsdk.Handle, error) {
	s.mu.Lock()
	s.loadCalls++
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	err, p, static := s.loadErr, s.loadPanic, s.static
	s.mu.Unlock()

	if p != nil {
		panic(p)
	}
	if err != nil {
		return nil, err
	}
	h := &handle{sdk: s, credential: credential}
	if static {
		return &staticHandle{handle: h}, nil
	}
	return h, nil
}

// LoadCalls returns the number of underlying loads observed.
func (s *SDK) LoadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCalls
}

// Maps returns every map created.
func (s *SDK) Maps() []*Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Map(nil), s.maps...)
}

// LiveMaps counts maps not yet destroyed.
func (s *SDK) LiveMaps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.maps {
		if !m.destroyed {
			n++
		}
	}
	return n
}

// MarkersCreated returns the total number of markers ever created.
func (s *SDK) MarkersCreated() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

// LiveMarkers returns markers not yet removed, in creation order.
func (s *SDK) LiveMarkers() []*Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Marker
	for _, m := range s.markers {
		if !m.removed {
			out = append(out, m)
		}
	}
	return out
}

// LiveMarkerTitles returns the titles of live markers, in creation order.
func (s *SDK) LiveMarkerTitles() []string {
	live := s.LiveMarkers()
	out := make([]string, len(live))
	for i, m := range live {
		out[i] = m.Options.Title
	}
	return out
}

// PeakLiveMarkers returns the largest number of markers alive at once.
func (s *SDK) PeakLiveMarkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peakLive
}

// LiveListeners counts listeners not yet removed.
func (s *SDK) LiveListeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.listeners {
		if !l.removed {
			n++
		}
	}
	return n
}

// OpenInfoWindows returns the info windows currently open.
func (s *SDK) OpenInfoWindows() []*InfoWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*InfoWindow
	for _, iw := range s.infoWindows {
		if iw.open {
			out = append(out, iw)
		}
	}
	return out
}

// LiveInfoWindows counts info windows not yet destroyed.
func (s *SDK) LiveInfoWindows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, iw := range s.infoWindows {
		if !iw.destroyed {
			n++
		}
	}
	return n
}

// ErrNoSuchMarker is returned by Click when no live marker has the title.
var ErrNoSuchMarker = errors.New("sdktest: no live marker with that title")

// Click fires the click listeners of the live marker titled title.
func (s *SDK) Click(title string) error {
	s.mu.Lock()
	var fns []func()
	found := false
	for _, m := range s.markers {
		if m.removed || m.Options.Title != title {
			continue
		}
		found = true
		for _, l := range s.listeners {
			if !l.removed && l.target == m && l.event == mapsdk.EventClick {
				fns = append(fns, l.fn)
			}
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %q", ErrNoSuchMarker, title)
	}
	for _, fn := range fns {
		fn()
	}
	return nil
}

func (s *SDK) liveMarkersLocked() int {
	n := 0
	for _, m := range s.markers {
		if !m.removed {
			n++
		}
	}
	return n
}

type handle struct {
	sdk        *SDK
	credential string
}

func (h *handle) NewMap(container mapsdk.Container, opts mapsdk.MapOptions) (mapsdk.Map, error) {
	s := h.sdk
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mapPanic != nil {
		panic(s.mapPanic)
	}
	if s.mapErr != nil {
		return nil, s.mapErr
	}
	m := &Map{sdk: s, ContainerID: container.ID(), center: opts.Center, zoom: opts.Zoom}
	s.maps = append(s.maps, m)
	return m, nil
}

func (h *handle) NewMarker(opts mapsdk.MarkerOptions) (mapsdk.Marker, error) {
	s := h.sdk
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.failures[opts.Title]; ok {
		switch v := f.(type) {
		case panicValue:
			panic(v.v)
		case error:
			return nil, v
		}
	}
	m := &Marker{sdk: s, Options: opts}
	s.markers = append(s.markers, m)
	if live := s.liveMarkersLocked(); live > s.peakLive {
		s.peakLive = live
	}
	return m, nil
}

func (h *handle) NewInfoWindow(opts mapsdk.InfoWindowOptions) (mapsdk.InfoWindow, error) {
	s := h.sdk
	s.mu.Lock()
	defer s.mu.Unlock()
	iw := &InfoWindow{sdk: s, Popup: opts.Popup}
	s.infoWindows = append(s.infoWindows, iw)
	return iw, nil
}

func (h *handle) NewZoomControl() (mapsdk.Control, error) {
	return control(mapsdk.ControlZoom), nil
}

func (h *handle) NewMapTypeControl() (mapsdk.Control, error) {
	return control(mapsdk.ControlMapType), nil
}

func (h *handle) AddListener(target mapsdk.Marker, event mapsdk.Event, fn func()) (mapsdk.Listener, error) {
	s := h.sdk
	m, ok := target.(*Marker)
	if !ok {
		return nil, fmt.Errorf("sdktest: unsupported listener target %T", target)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &Listener{sdk: s, target: m, event: event, fn: fn}
	s.listeners = append(s.listeners, l)
	return l, nil
}

type staticHandle struct {
	*handle
}

// StaticMapURL implements mapsdk.StaticMapper.
func (h *staticHandle) StaticMapURL(opts mapsdk.StaticMapOptions) (string, error) {
	return fmt.Sprintf("https://static.example.test/map?center=%.5f,%.5f&zoom=%d&markers=%d",
		opts.Center.Lat, opts.Center.Lng, opts.Zoom, len(opts.Markers)), nil
}

type control mapsdk.ControlType

func (c control) Type() mapsdk.ControlType { return mapsdk.ControlType(c) }

// Map is a recorded map instance.
type Map struct {
	sdk         *SDK
	ContainerID string
	center      models.LatLng
	zoom        int
	controls    []mapsdk.ControlType
	destroyed   bool
}

// SetCenter implements mapsdk.Map.
func (m *Map) SetCenter(center models.LatLng) error {
	m.sdk.mu.Lock()
	defer m.sdk.mu.Unlock()
	m.center = center
	return nil
}

// AddControl implements mapsdk.Map.
func (m *Map) AddControl(c mapsdk.Control) error {
	m.sdk.mu.Lock()
	defer m.sdk.mu.Unlock()
	m.controls = append(m.controls, c.Type())
	return nil
}

// Destroy implements mapsdk.Map.
func (m *Map) Destroy() {
	m.sdk.mu.Lock()
	defer m.sdk.mu.Unlock()
	m.destroyed = true
}

// Center returns the current center.
func (m *Map) Center() models.LatLng {
	m.sdk.mu.Lock()
	defer m.sdk.mu.Unlock()
	return m.center
}

// Zoom returns the current zoom level.
func (m *Map) Zoom() int {
	m.sdk.mu.Lock()
	defer m.sdk.mu.Unlock()
	return m.zoom
}

// Controls returns the control types added so far.
func (m *Map) Controls() []mapsdk.ControlType {
	m.sdk.mu.Lock()
	defer m.sdk.mu.Unlock()
	return append([]mapsdk.ControlType(nil), m.controls...)
}

// Destroyed reports whether Destroy was called.
func (m *Map) Destroyed() bool {
	m.sdk.mu.Lock()
	defer m.sdk.mu.Unlock()
	return m.destroyed
}

// Marker is a recorded marker instance.
type Marker struct {
	sdk     *SDK
	Options mapsdk.MarkerOptions
	removed bool
}

// Remove implements mapsdk.Marker.
func (m *Marker) Remove() {
	m.sdk.mu.Lock()
	defer m.sdk.mu.Unlock()
	m.removed = true
}

// InfoWindow is a recorded info window.
type InfoWindow struct {
	sdk       *SDK
	Popup     models.Popup
	open      bool
	destroyed bool
	anchor    *Marker
}

// Open implements mapsdk.InfoWindow.
func (iw *InfoWindow) Open(_ mapsdk.Map, anchor mapsdk.Marker) error {
	iw.sdk.mu.Lock()
	defer iw.sdk.mu.Unlock()
	iw.open = true
	iw.anchor, _ = anchor.(*Marker)
	return nil
}

// Close implements mapsdk.InfoWindow.
func (iw *InfoWindow) Close() {
	iw.sdk.mu.Lock()
	defer iw.sdk.mu.Unlock()
	iw.open = false
}

// Destroy implements mapsdk.InfoWindow.
func (iw *InfoWindow) Destroy() {
	iw.sdk.mu.Lock()
	defer iw.sdk.mu.Unlock()
	iw.open = false
	iw.destroyed = true
}

// AnchorTitle returns the title of the marker the window was opened on.
func (iw *InfoWindow) AnchorTitle() string {
	iw.sdk.mu.Lock()
	defer iw.sdk.mu.Unlock()
	if iw.anchor == nil {
		return ""
	}
	return iw.anchor.Options.Title
}

// Listener is a recorded event registration.
type Listener struct {
	sdk     *SDK
	target  *Marker
	event   mapsdk.Event
	fn      func()
	removed bool
}

// Remove implements mapsdk.Listener.
func (l *Listener) Remove() {
	l.sdk.mu.Lock()
	defer l.sdk.mu.Unlock()
	l.removed = true
}

// Container is an in-memory host element.
type Container struct {
	id       string
	mu       sync.Mutex
	html     string
	writes   int
	writeErr error
}

// NewContainer returns an empty container.
func NewContainer(id string) *Container {
	return &Container{id: id}
}

// ID implements mapsdk.Container.
func (c *Container) ID() string { return c.id }

// Replace implements mapsdk.Container.
func (c *Container) Replace(html string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		err := c.writeErr
		c.writeErr = nil
		return err
	}
	c.html = html
	c.writes++
	return nil
}

// FailNextWrite makes the next Replace fail with err.
func (c *Container) FailNextWrite(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// HTML returns the current contents.
func (c *Container) HTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html
}

// Writes counts successful Replace calls.
func (c *Container) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}
