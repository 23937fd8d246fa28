// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/maperr"
	"github.com/tomtom215/pawmap/internal/metrics"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateLoadingSDK
	StateCreatingMap
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoadingSDK:
		return "loading-sdk"
	case StateCreatingMap:
		return "creating-map"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotReady is returned by operations that need a ready session.
	ErrNotReady = errors.New("engine: session not ready")
	// ErrUnmounted is returned by Mount when Unmount ran while the SDK was
	// still loading. The late load result is discarded.
	ErrUnmounted = errors.New("engine: session unmounted while mounting")
	// ErrAlreadyMounted is returned by Mount unless the session is uninitialized.
	ErrAlreadyMounted = errors.New("engine: session already mounted")
)

// Operation names used in classified errors.
const (
	opMount           = "mount"
	opSetMarkers      = "set_markers"
	opSetUserLocation = "set_user_location"
	opOpenPopup       = "open_popup"
)

// UserLocationIcon is the fixed glyph of the user-location marker. It shares
// no color with any category icon.
var UserLocationIcon = mapsdk.Icon{
	Glyph:      "●",
	Color:      "#FFFFFF",
	Background: "#0EA5E9",
	Size:       models.Size{Width: 18, Height: 18},
	Anchor:     models.Point{X: 9, Y: 9},
}

const userLocationZIndex = 1000

// SessionConfig configures a Session.
type SessionConfig struct {
	// Loader is normally the page's shared *mapsdk.CachedLoader.
	Loader     mapsdk.Loader
	Credential string
	// Sink receives every classified failure. Defaults to maperr.Discard.
	Sink maperr.Sink
	// OnClick is invoked with the full marker whenever a live marker is
	// activated. It runs outside the session lock.
	OnClick func(models.Marker)
	Logger  *zerolog.Logger
}

// Session owns one mounted map: the map instance, its live markers and info
// windows, and at most one user-location marker. The SDK handle is shared and
// never disposed by the session.
//
// All methods are safe for concurrent use. Mount blocks only while the SDK
// loads; every other operation runs to completion under the session lock.
type Session struct {
	loader     mapsdk.Loader
	credential string
	sink       maperr.Sink
	onClick    func(models.Marker)
	logger     zerolog.Logger

	mu sync.Mutex
	// generation changes on every Mount and Unmount; a mount whose
	// generation is stale when the SDK load returns is abandoned.
	generation uint64
	state      State
	reportCtx  context.Context
	category   registry.Category
	handle     mapsdk.Handle
	m          mapsdk.Map
	live       []*liveMarker
	user       mapsdk.Marker
	lastErr    *maperr.Error
}

type liveMarker struct {
	data     models.Marker
	marker   mapsdk.Marker
	listener mapsdk.Listener
	window   mapsdk.InfoWindow
	open     bool
	alive    bool
}

// NewSession returns an uninitialized session.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		loader:     cfg.Loader,
		credential: cfg.Credential,
		sink:       cfg.Sink,
		onClick:    cfg.OnClick,
		reportCtx:  context.Background(),
	}
	if s.sink == nil {
		s.sink = maperr.Discard
	}
	if cfg.Logger != nil {
		s.logger = *cfg.Logger
	} else {
		s.logger = logging.Component("engine")
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that failed the session, or nil.
func (s *Session) Err() *maperr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// StaticMapper returns the loaded SDK's static map primitive, if the SDK
// loaded and supports it. It stays available after a map creation failure.
func (s *Session) StaticMapper() mapsdk.StaticMapper {
	s.mu.Lock()
	defer s.mu.Unlock()
	sm, _ := s.handle.(mapsdk.StaticMapper)
	return sm
}

// LiveMarkers returns the number of live category markers.
func (s *Session) LiveMarkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Mount loads the SDK, creates the map in container centered on center at the
// category default zoom, and adds the zoom and map-type controls.
//
// Fatal failures move the session to StateFailed and return a *maperr.Error;
// the caller then renders the fallback. StateFailed is terminal until Unmount.
func (s *Session) Mount(ctx context.Context, container mapsdk.Container, center models.LatLng, category registry.Category) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return ErrAlreadyMounted
	}
	s.generation++
	gen := s.generation
	s.reportCtx = context.WithoutCancel(ctx)
	s.category = registry.Get(category).Category
	s.setStateLocked(StateLoadingSDK)
	s.mu.Unlock()

	h, err := s.loader.Load(ctx, s.credential)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.state != StateLoadingSDK {
		s.logger.Debug().Str("category", string(category)).Msg("Discarding stale SDK load completion")
		return ErrUnmounted
	}
	if err != nil {
		kind := maperr.SdkLoadFailed
		if errors.Is(err, mapsdk.ErrCredentialMissing) {
			kind = maperr.CredentialMissing
		}
		return s.failLocked(maperr.New(kind, opMount, err))
	}

	s.handle = h
	s.setStateLocked(StateCreatingMap)

	if !center.InRange() {
		return s.failLocked(maperr.New(maperr.MapCreationFailed, opMount, fmt.Errorf("invalid center %s", center)))
	}

	cfg := registry.Get(s.category)
	m, err := protect(func() (mapsdk.Map, error) {
		return h.NewMap(container, mapsdk.MapOptions{Center: center, Zoom: cfg.DefaultZoom})
	})
	if err == nil && m == nil {
		err = errors.New("sdk returned no map")
	}
	if err != nil {
		return s.failLocked(maperr.New(maperr.MapCreationFailed, opMount, err))
	}
	s.m = m

	for _, newControl := range []func() (mapsdk.Control, error){h.NewZoomControl, h.NewMapTypeControl} {
		if err := s.addControlLocked(newControl); err != nil {
			return s.failLocked(maperr.New(maperr.MapCreationFailed, opMount, err))
		}
	}

	s.setStateLocked(StateReady)
	s.logger.Info().
		Str("category", string(s.category)).
		Str("container", container.ID()).
		Int("zoom", cfg.DefaultZoom).
		Msg("Map session ready")
	return nil
}

func (s *Session) addControlLocked(newControl func() (mapsdk.Control, error)) error {
	c, err := protect(newControl)
	if err != nil {
		return fmt.Errorf("create control: %w", err)
	}
	return protectDo(func() error { return s.m.AddControl(c) })
}

// failLocked records a fatal failure, releases whatever the mount created so
// far, and reports it.
func (s *Session) failLocked(e *maperr.Error) error {
	if s.m != nil {
		m := s.m
		_ = protectDo(func() error { m.Destroy(); return nil })
		s.m = nil
	}
	s.lastErr = e
	s.setStateLocked(StateFailed)
	s.sink.Report(s.reportCtx, e)
	return e
}

// SetMarkers replaces every live marker with one per input marker. All
// previous markers, listeners and info windows are disposed before the first
// new marker is created. Markers with non-finite coordinates are skipped with
// a warning; markers the SDK fails to create are skipped and reported as
// MarkerCreationFailed. Neither changes the session state.
func (s *Session) SetMarkers(markers []models.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}

	s.disposeMarkersLocked()

	live := make([]*liveMarker, 0, len(markers))
	for i := range markers {
		mk := markers[i]
		if !mk.Position.Finite() {
			s.logger.Warn().Str("marker_id", mk.ID).Msg("Skipping marker with non-finite coordinates")
			continue
		}
		lm, err := s.createMarkerLocked(mk)
		if err != nil {
			s.sink.Report(s.reportCtx, maperr.ForMarker(opSetMarkers, mk.ID, err))
			continue
		}
		live = append(live, lm)
		metrics.MarkersCreated.WithLabelValues(string(mk.Category)).Inc()
	}
	s.live = live

	s.logger.Debug().
		Int("requested", len(markers)).
		Int("rendered", len(live)).
		Msg("Markers rendered")
	return nil
}

func (s *Session) createMarkerLocked(mk models.Marker) (*liveMarker, error) {
	h := s.handle
	lm := &liveMarker{data: mk.Clone()}

	marker, err := protect(func() (mapsdk.Marker, error) {
		return h.NewMarker(mapsdk.MarkerOptions{
			Map:      s.m,
			Position: mk.Position,
			Title:    mk.Name,
			Icon:     IconFor(mk),
			ZIndex:   mk.Priority,
		})
	})
	if err == nil && marker == nil {
		err = errors.New("sdk returned no marker")
	}
	if err != nil {
		return nil, err
	}
	lm.marker = marker

	listener, err := protect(func() (mapsdk.Listener, error) {
		return h.AddListener(marker, mapsdk.EventClick, func() { s.handleClick(lm) })
	})
	if err != nil {
		_ = protectDo(func() error { marker.Remove(); return nil })
		return nil, fmt.Errorf("register click listener: %w", err)
	}
	lm.listener = listener
	lm.alive = true
	return lm, nil
}

// handleClick closes every other open info window, opens this marker's
// window (creating it on first use) and notifies the host.
func (s *Session) handleClick(lm *liveMarker) {
	s.mu.Lock()
	if s.state != StateReady || !lm.alive {
		s.mu.Unlock()
		return
	}

	for _, other := range s.live {
		if other != lm && other.open {
			w := other.window
			_ = protectDo(func() error { w.Close(); return nil })
			other.open = false
		}
	}

	if lm.window == nil {
		w, err := protect(func() (mapsdk.InfoWindow, error) {
			return s.handle.NewInfoWindow(mapsdk.InfoWindowOptions{Popup: lm.data.Popup})
		})
		if err != nil {
			s.sink.Report(s.reportCtx, maperr.ForMarker(opOpenPopup, lm.data.ID, err))
		} else {
			lm.window = w
		}
	}
	if lm.window != nil {
		w, m, anchor := lm.window, s.m, lm.marker
		if err := protectDo(func() error { return w.Open(m, anchor) }); err != nil {
			s.sink.Report(s.reportCtx, maperr.ForMarker(opOpenPopup, lm.data.ID, err))
		} else {
			lm.open = true
		}
	}

	data := lm.data.Clone()
	cb := s.onClick
	s.mu.Unlock()

	if cb != nil {
		cb(data)
	}
}

func (s *Session) disposeMarkersLocked() {
	for _, lm := range s.live {
		disposeLive(lm)
		metrics.MarkersDisposed.Inc()
	}
	s.live = nil
}

func disposeLive(lm *liveMarker) {
	lm.alive = false
	if lm.listener != nil {
		l := lm.listener
		_ = protectDo(func() error { l.Remove(); return nil })
	}
	if lm.window != nil {
		w := lm.window
		_ = protectDo(func() error { w.Destroy(); return nil })
		lm.window = nil
	}
	if lm.marker != nil {
		mk := lm.marker
		_ = protectDo(func() error { mk.Remove(); return nil })
	}
	lm.open = false
}

// SetUserLocation pans to pos without changing zoom and replaces the
// user-location marker. Failures are logged and swallowed; the session state
// never changes.
func (s *Session) SetUserLocation(pos models.LatLng) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	if !pos.InRange() {
		s.logger.Warn().Str("position", pos.String()).Msg("Ignoring invalid user location")
		return nil
	}

	m := s.m
	if err := protectDo(func() error { return m.SetCenter(pos) }); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to re-center map on user location")
	}

	s.disposeUserLocked()

	h := s.handle
	marker, err := protect(func() (mapsdk.Marker, error) {
		return h.NewMarker(mapsdk.MarkerOptions{
			Map:      m,
			Position: pos,
			Title:    "You are here",
			Icon:     UserLocationIcon,
			ZIndex:   userLocationZIndex,
		})
	})
	if err != nil {
		s.sink.Report(s.reportCtx, maperr.ForMarker(opSetUserLocation, "user-location", err))
		return nil
	}
	s.user = marker
	return nil
}

func (s *Session) disposeUserLocked() {
	if s.user == nil {
		return
	}
	u := s.user
	_ = protectDo(func() error { u.Remove(); return nil })
	s.user = nil
}

// Unmount disposes the map and everything the session owns and returns it to
// StateUninitialized. A Mount still waiting for the SDK returns ErrUnmounted.
// Unmount is idempotent.
func (s *Session) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.disposeMarkersLocked()
	s.disposeUserLocked()
	if s.m != nil {
		m := s.m
		_ = protectDo(func() error { m.Destroy(); return nil })
		s.m = nil
	}
	s.handle = nil
	s.lastErr = nil
	if s.state != StateUninitialized {
		s.setStateLocked(StateUninitialized)
	}
}

func (s *Session) setStateLocked(state State) {
	s.state = state
	metrics.SessionTransitions.WithLabelValues(state.String()).Inc()
}

// IconFor returns the category glyph for m, sized by display priority.
func IconFor(m models.Marker) mapsdk.Icon {
	cfg := registry.Get(m.Category)
	size := 28 + 8*m.Priority
	return mapsdk.Icon{
		Glyph:      cfg.Icon,
		Color:      cfg.Color,
		Background: cfg.BackgroundColor,
		Size:       models.Size{Width: size, Height: size},
		Anchor:     models.Point{X: size / 2, Y: size},
	}
}

// protect runs an SDK call, converting a panic into an error.
func protect[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sdk panic: %v", r)
		}
	}()
	return fn()
}

func protectDo(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sdk panic: %v", r)
		}
	}()
	return fn()
}
