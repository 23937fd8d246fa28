// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package bridge

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/models"
)

var (
	// ErrForeignObject is returned when an SDK object from another page or
	// implementation is passed to a remote handle.
	ErrForeignObject = errors.New("bridge: object does not belong to this page")
	// ErrNoStaticMaps is returned by StaticMapURL when the page did not
	// announce a static map endpoint.
	ErrNoStaticMaps = errors.New("bridge: static maps unavailable")
)

// remoteHandle is the SDK loaded in a browser page. Every constructor
// allocates an object ID and sends the matching command; the page creates
// the real object asynchronously.
type remoteHandle struct {
	page       *Page
	staticBase string
}

var (
	_ mapsdk.Handle       = (*remoteHandle)(nil)
	_ mapsdk.StaticMapper = (*remoteHandle)(nil)
)

func (h *remoteHandle) NewMap(container mapsdk.Container, opts mapsdk.MapOptions) (mapsdk.Map, error) {
	m := &remoteMap{page: h.page, id: h.page.newObjectID("map")}
	if err := h.page.emit(TypeCreateMap, createMap{Object: m.id, Container: container.ID(), MapOptions: opts}); err != nil {
		return nil, err
	}
	return m, nil
}

func (h *remoteHandle) NewMarker(opts mapsdk.MarkerOptions) (mapsdk.Marker, error) {
	m, ok := opts.Map.(*remoteMap)
	if !ok || m.page != h.page {
		return nil, ErrForeignObject
	}
	mk := &remoteMarker{page: h.page, id: h.page.newObjectID("marker")}
	err := h.page.emit(TypeCreateMarker, createMarker{
		Object:   mk.id,
		Map:      m.id,
		Position: opts.Position,
		Title:    opts.Title,
		Icon:     opts.Icon,
		ZIndex:   opts.ZIndex,
	})
	if err != nil {
		return nil, err
	}
	return mk, nil
}

func (h *remoteHandle) NewInfoWindow(opts mapsdk.InfoWindowOptions) (mapsdk.InfoWindow, error) {
	w := &remoteInfoWindow{page: h.page, id: h.page.newObjectID("window")}
	if err := h.page.emit(TypeCreateInfoWindow, createInfoWindow{Object: w.id, Popup: opts.Popup}); err != nil {
		return nil, err
	}
	return w, nil
}

func (h *remoteHandle) NewZoomControl() (mapsdk.Control, error) {
	return &remoteControl{id: h.page.newObjectID("control"), kind: mapsdk.ControlZoom}, nil
}

func (h *remoteHandle) NewMapTypeControl() (mapsdk.Control, error) {
	return &remoteControl{id: h.page.newObjectID("control"), kind: mapsdk.ControlMapType}, nil
}

func (h *remoteHandle) AddListener(target mapsdk.Marker, event mapsdk.Event, fn func()) (mapsdk.Listener, error) {
	mk, ok := target.(*remoteMarker)
	if !ok || mk.page != h.page {
		return nil, ErrForeignObject
	}
	l := &remoteListener{page: h.page, id: h.page.newObjectID("listener")}
	h.page.addListener(l.id, fn)
	if err := h.page.emit(TypeAddListener, addListener{Listener: l.id, Target: mk.id, Event: event}); err != nil {
		h.page.removeListener(l.id)
		return nil, err
	}
	return l, nil
}

// StaticMapURL builds a static image URL against the endpoint the page
// announced in its sdk_loaded reply.
func (h *remoteHandle) StaticMapURL(opts mapsdk.StaticMapOptions) (string, error) {
	if h.staticBase == "" {
		return "", ErrNoStaticMaps
	}
	u, err := url.Parse(h.staticBase)
	if err != nil {
		return "", fmt.Errorf("parse static base: %w", err)
	}

	q := u.Query()
	q.Set("center", latLngParam(opts.Center))
	q.Set("zoom", strconv.Itoa(opts.Zoom))
	q.Set("size", fmt.Sprintf("%dx%d", opts.Size.Width, opts.Size.Height))
	for _, m := range opts.Markers {
		parts := []string{latLngParam(m.Position)}
		if m.Label != "" {
			parts = append(parts, "label:"+m.Label)
		}
		if m.Color != "" {
			parts = append(parts, "color:"+m.Color)
		}
		q.Add("markers", strings.Join(parts, "|"))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func latLngParam(p models.LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}

type remoteMap struct {
	page *Page
	id   string
}

func (m *remoteMap) SetCenter(center models.LatLng) error {
	return m.page.emit(TypeSetCenter, setCenter{Object: m.id, Center: center})
}

func (m *remoteMap) AddControl(c mapsdk.Control) error {
	rc, ok := c.(*remoteControl)
	if !ok {
		return ErrForeignObject
	}
	return m.page.emit(TypeAddControl, addControl{Map: m.id, Control: rc.id, Kind: rc.kind})
}

func (m *remoteMap) Destroy() {
	_ = m.page.emit(TypeDestroyMap, objectRef{Object: m.id})
}

type remoteMarker struct {
	page *Page
	id   string
}

func (m *remoteMarker) Remove() {
	_ = m.page.emit(TypeRemoveMarker, objectRef{Object: m.id})
}

type remoteInfoWindow struct {
	page *Page
	id   string
}

func (w *remoteInfoWindow) Open(m mapsdk.Map, anchor mapsdk.Marker) error {
	rm, ok := m.(*remoteMap)
	if !ok {
		return ErrForeignObject
	}
	mk, ok := anchor.(*remoteMarker)
	if !ok {
		return ErrForeignObject
	}
	return w.page.emit(TypeOpenInfoWindow, openInfoWindow{Object: w.id, Map: rm.id, Anchor: mk.id})
}

func (w *remoteInfoWindow) Close() {
	_ = w.page.emit(TypeCloseInfoWindow, objectRef{Object: w.id})
}

func (w *remoteInfoWindow) Destroy() {
	_ = w.page.emit(TypeDestroyInfoWindow, objectRef{Object: w.id})
}

type remoteControl struct {
	id   string
	kind mapsdk.ControlType
}

func (c *remoteControl) Type() mapsdk.ControlType { return c.kind }

type remoteListener struct {
	page *Page
	id   string
}

func (l *remoteListener) Remove() {
	l.page.removeListener(l.id)
	_ = l.page.emit(TypeRemoveListener, objectRef{Object: l.id})
}

// remoteContainer is a page element addressed by its DOM id.
type remoteContainer struct {
	page *Page
	id   string
}

func (c *remoteContainer) ID() string { return c.id }

func (c *remoteContainer) Replace(html string) error {
	return c.page.emit(TypeRender, render{Container: c.id, HTML: html})
}
