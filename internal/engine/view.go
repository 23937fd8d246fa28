// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/fallback"
	"github.com/tomtom215/pawmap/internal/filter"
	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/maperr"
	"github.com/tomtom215/pawmap/internal/markers"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

// ErrViewClosed is returned by Open after Close.
var ErrViewClosed = errors.New("engine: view closed")

// Fallback notices per failure kind.
var fallbackNotices = map[maperr.Kind]string{
	maperr.CredentialMissing: "Map credentials are not configured. Showing a simplified map instead.",
	maperr.SdkLoadFailed:     "The map service could not be reached. Showing a simplified map instead.",
	maperr.MapCreationFailed: "The interactive map could not be created. Showing a simplified map instead.",
}

// FallbackNotice returns the notice shown when a view degrades because of
// kind.
func FallbackNotice(kind maperr.Kind) string {
	if msg, ok := fallbackNotices[kind]; ok {
		return msg
	}
	return fallback.DefaultNotice
}

// ViewConfig configures a View.
type ViewConfig struct {
	Loader     mapsdk.Loader
	Credential string
	Category   registry.Category
	Container  mapsdk.Container
	// Builder turns place records into markers. Defaults to a builder with
	// the built-in attribute defaults.
	Builder *markers.Builder
	Sink    maperr.Sink
	// OnClick receives the full marker for both live and fallback clicks.
	OnClick func(models.Marker)
	Logger  *zerolog.Logger
}

// View is one category map as seen by the host. It keeps every marker built
// so far, the active filter set and the user location, and re-renders the
// visible subset after each change.
type View struct {
	session   *Session
	fallback  *fallback.Renderer
	builder   *markers.Builder
	category  registry.Category
	container mapsdk.Container
	logger    zerolog.Logger

	mu       sync.Mutex
	all      []models.Marker
	index    map[string]int
	filters  filter.Set
	user     *models.LatLng
	degraded bool
	notice   string
	closed   bool
}

// NewView returns a view that has not been opened yet.
func NewView(cfg ViewConfig) *View {
	logger := logging.Component("view")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	category := registry.Get(cfg.Category).Category
	logger = logger.With().Str("category", string(category)).Logger()

	builder := cfg.Builder
	if builder == nil {
		builder = markers.NewBuilder(registry.DefaultAttributeDefaults(), logger)
	}

	return &View{
		session: NewSession(SessionConfig{
			Loader:     cfg.Loader,
			Credential: cfg.Credential,
			Sink:       cfg.Sink,
			OnClick:    cfg.OnClick,
			Logger:     &logger,
		}),
		fallback:  fallback.NewRenderer(cfg.OnClick).WithLogger(logger),
		builder:   builder,
		category:  category,
		container: cfg.Container,
		logger:    logger,
		index:     make(map[string]int),
	}
}

// Category returns the view's category.
func (v *View) Category() registry.Category { return v.category }

// Session returns the underlying map session.
func (v *View) Session() *Session { return v.session }

// Open mounts the live map centered on center. On a fatal failure the view
// degrades to the fallback renderer and the classified error is returned;
// the view keeps working in degraded mode.
func (v *View) Open(ctx context.Context, center models.LatLng) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	v.mu.Unlock()

	err := v.session.Mount(ctx, v.container, center, v.category)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewClosed
	}

	if err != nil {
		if e, ok := maperr.As(err); ok && e.Fatal() {
			v.degraded = true
			v.notice = FallbackNotice(e.Kind)
			v.logger.Warn().Err(err).Msg("Map unavailable, switching to fallback renderer")
			v.renderLocked()
		}
		return err
	}

	v.renderLocked()
	if v.user != nil {
		_ = v.session.SetUserLocation(*v.user)
	}
	return nil
}

// Load builds markers from a batch of place records and merges them into
// the view, replacing earlier markers with the same ID. It returns the
// number of markers built from the batch.
func (v *View) Load(records []models.PlaceRecord) int {
	built := v.builder.Build(records, v.category)

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range built {
		if at, ok := v.index[built[i].ID]; ok {
			v.all[at] = built[i]
			continue
		}
		v.index[built[i].ID] = len(v.all)
		v.all = append(v.all, built[i])
	}
	if !v.closed {
		v.renderLocked()
	}
	return len(built)
}

// SetFilters replaces the active filter set and re-renders.
func (v *View) SetFilters(set filter.Set) error {
	set = set.Normalize(v.category)
	if err := set.Validate(v.category); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters = set
	if !v.closed {
		v.renderLocked()
	}
	return nil
}

// Filters returns the active filter set.
func (v *View) Filters() filter.Set {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

// SetUserLocation records the user's position and shows it on whichever
// renderer is active. Invalid positions are ignored.
func (v *View) SetUserLocation(pos models.LatLng) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !pos.InRange() {
		v.logger.Warn().Str("position", pos.String()).Msg("Ignoring invalid user location")
		return
	}
	v.user = &pos
	if v.closed {
		return
	}
	if v.degraded {
		v.renderLocked()
		return
	}
	if err := v.session.SetUserLocation(pos); err != nil && !errors.Is(err, ErrNotReady) {
		v.logger.Warn().Err(err).Msg("Failed to show user location")
	}
}

// Visible returns the markers that pass the active filters, in arrival
// order.
func (v *View) Visible() []models.Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	return models.CloneMarkers(filter.Apply(v.all, v.filters, v.category))
}

// Markers returns every marker built so far.
func (v *View) Markers() []models.Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	return models.CloneMarkers(v.all)
}

// Degraded reports whether the view renders through the fallback.
func (v *View) Degraded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.degraded
}

// Fallback returns the view's fallback renderer.
func (v *View) Fallback() *fallback.Renderer { return v.fallback }

// ActivateFallback forwards a click on a fallback marker.
func (v *View) ActivateFallback(id string) bool {
	if !v.Degraded() {
		return false
	}
	return v.fallback.Activate(id)
}

// Close unmounts the live map. The view cannot be reopened.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.session.Unmount()
}

func (v *View) renderLocked() {
	visible := filter.Apply(v.all, v.filters, v.category)

	if v.degraded {
		opts := []fallback.RenderOption{fallback.WithNotice(v.notice)}
		if sm := v.session.StaticMapper(); sm != nil {
			opts = append(opts, fallback.WithStaticMapper(sm))
		}
		v.fallback.Render(v.container, v.user, visible, registry.Get(v.category), opts...)
		return
	}

	switch err := v.session.SetMarkers(visible); {
	case err == nil, errors.Is(err, ErrNotReady):
	default:
		v.logger.Warn().Err(err).Msg("Failed to render markers")
	}
}
