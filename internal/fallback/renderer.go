// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package fallback renders markers without the interactive map SDK.
//
// It is the last line of defense after the primary renderer has failed, so
// Render never panics and never returns an error: anything that goes wrong
// while rendering is turned into a plain inline notice in the container.
//
// Render modes, in order of preference:
//
//	static  the SDK's static map image (when a StaticMapper is available)
//	plot    an SVG Web Mercator plot of numbered pins
//	notice  a plain informational panel
//
// Every mode except notice also lists the markers with matching numbers.
package fallback

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/metrics"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

// Render modes, used as the fallback_renders metric label.
const (
	ModeStatic = "static"
	ModePlot   = "plot"
	ModeNotice = "notice"
)

// DefaultNotice is shown above every fallback rendering.
const DefaultNotice = "The interactive map is unavailable right now. Showing a simplified map instead."

const (
	canvasWidth  = 640
	canvasHeight = 400
	canvasMargin = 24
)

// Renderer draws the degraded map for one view and remembers the markers it
// last drew so fallback pins can be activated.
type Renderer struct {
	tmpl    *template.Template
	onClick func(models.Marker)
	logger  zerolog.Logger

	mu   sync.Mutex
	last []models.Marker
	mode string
}

// NewRenderer returns a renderer that calls onClick when a fallback marker is
// activated. onClick may be nil.
func NewRenderer(onClick func(models.Marker)) *Renderer {
	return &Renderer{
		tmpl:    template.Must(template.New("fallback").Funcs(funcMap).Parse(fallbackTemplate)),
		onClick: onClick,
		logger:  logging.Component("fallback"),
	}
}

// WithLogger replaces the renderer logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (r *Renderer) WithLogger(logger zerolog.Logger) *Renderer {
	r.logger = logger
	return r
}

type renderOptions struct {
	static mapsdk.StaticMapper
	notice string
}

// RenderOption customizes one Render call.
type RenderOption func(*renderOptions)

// WithStaticMapper lets Render use the SDK's static map image.
func WithStaticMapper(sm mapsdk.StaticMapper) RenderOption {
	return func(o *renderOptions) { o.static = sm }
}

// WithNotice replaces DefaultNotice.
func WithNotice(msg string) RenderOption {
	return func(o *renderOptions) {
		if msg != "" {
			o.notice = msg
		}
	}
}

type pin struct {
	Number   int
	ID       string
	Name     string
	Lines    []string
	X, Y     float64
	Radius   int
	Priority int
}

type userPin struct {
	X, Y float64
}

type page struct {
	ContainerID string
	Notice      string
	Mode        string
	StaticURL   string
	Width       int
	Height      int
	Category    registry.Config
	Pins        []pin
	User        *userPin
}

// Render draws markers into container. userLocation may be nil.
func (r *Renderer) Render(container mapsdk.Container, userLocation *models.LatLng, markers []models.Marker, cfg registry.Config, opts ...RenderOption) {
	o := renderOptions{notice: DefaultNotice}
	for _, opt := range opts {
		opt(&o)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Msg("Fallback render panicked")
			r.renderNotice(container, o.notice)
		}
	}()

	kept := make([]models.Marker, 0, len(markers))
	for i := range markers {
		if markers[i].Position.InRange() {
			kept = append(kept, markers[i].Clone())
		}
	}

	p := r.buildPage(container, userLocation, kept, cfg, o)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, p); err != nil {
		r.logger.Error().Err(err).Msg("Fallback template failed")
		r.renderNotice(container, o.notice)
		return
	}
	if err := container.Replace(buf.String()); err != nil {
		r.logger.Error().Err(err).Str("container", container.ID()).Msg("Fallback write failed")
		r.renderNotice(container, o.notice)
		return
	}

	r.mu.Lock()
	r.last = kept
	r.mode = p.Mode
	r.mu.Unlock()
	metrics.FallbackRenders.WithLabelValues(p.Mode).Inc()
}

func (r *Renderer) buildPage(container mapsdk.Container, userLocation *models.LatLng, markers []models.Marker, cfg registry.Config, o renderOptions) page {
	p := page{
		ContainerID: container.ID(),
		Notice:      o.notice,
		Mode:        ModePlot,
		Width:       canvasWidth,
		Height:      canvasHeight,
		Category:    cfg,
	}

	points := make([]models.LatLng, 0, len(markers)+1)
	for i := range markers {
		points = append(points, markers[i].Position)
	}
	var user *models.LatLng
	if userLocation != nil && userLocation.InRange() {
		user = userLocation
		points = append(points, *user)
	}

	if o.static != nil && len(points) > 0 {
		if u, err := r.staticURL(o.static, markers, user, cfg, points); err != nil {
			r.logger.Warn().Err(err).Msg("Static map unavailable, plotting instead")
		} else {
			p.Mode = ModeStatic
			p.StaticURL = u
		}
	}

	pl := newPlotter(points, canvasWidth, canvasHeight, canvasMargin)
	p.Pins = make([]pin, len(markers))
	for i := range markers {
		m := &markers[i]
		x, y := pl.project(m.Position)
		p.Pins[i] = pin{
			Number:   i + 1,
			ID:       m.ID,
			Name:     m.Name,
			Lines:    m.Popup.Lines,
			X:        x,
			Y:        y,
			Radius:   10 + 2*m.Priority,
			Priority: m.Priority,
		}
	}
	if user != nil {
		x, y := pl.project(*user)
		p.User = &userPin{X: x, Y: y}
	}
	return p
}

func (r *Renderer) staticURL(sm mapsdk.StaticMapper, markers []models.Marker, user *models.LatLng, cfg registry.Config, points []models.LatLng) (u string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("static map panic: %v", rec)
		}
	}()

	center := points[0]
	if user != nil {
		center = *user
	}
	pins := make([]mapsdk.StaticMarker, len(markers))
	for i := range markers {
		pins[i] = mapsdk.StaticMarker{
			Position: markers[i].Position,
			Label:    strconv.Itoa(i + 1),
			Color:    cfg.Color,
		}
	}
	return sm.StaticMapURL(mapsdk.StaticMapOptions{
		Center:  center,
		Zoom:    cfg.DefaultZoom,
		Size:    models.Size{Width: canvasWidth, Height: canvasHeight},
		Markers: pins,
	})
}

// renderNotice writes a plain panel without the template engine.
func (r *Renderer) renderNotice(container mapsdk.Container, msg string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Msg("Fallback notice panicked")
		}
	}()

	r.mu.Lock()
	r.last = nil
	r.mode = ModeNotice
	r.mu.Unlock()
	metrics.FallbackRenders.WithLabelValues(ModeNotice).Inc()

	body := fmt.Sprintf(`<div class="pawmap-fallback pawmap-fallback--notice"><p class="pawmap-notice" role="alert">%s</p></div>`,
		html.EscapeString(msg))
	if err := container.Replace(body); err != nil {
		r.logger.Error().Err(err).Str("container", container.ID()).Msg("Fallback notice write failed")
	}
}

// Markers returns the markers drawn by the last successful render.
func (r *Renderer) Markers() []models.Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.CloneMarkers(r.last)
}

// Mode returns the mode of the last render, or "" before the first one.
func (r *Renderer) Mode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Activate notifies the click callback for the fallback marker with id. It
// reports whether such a marker was drawn.
func (r *Renderer) Activate(id string) bool {
	r.mu.Lock()
	var found *models.Marker
	for i := range r.last {
		if r.last[i].ID == id {
			m := r.last[i].Clone()
			found = &m
			break
		}
	}
	cb := r.onClick
	r.mu.Unlock()

	if found == nil {
		return false
	}
	if cb != nil {
		cb(*found)
	}
	return true
}
