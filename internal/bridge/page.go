// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package bridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/pawmap/internal/engine"
	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/maperr"
	"github.com/tomtom215/pawmap/internal/metrics"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/places"
	"github.com/tomtom215/pawmap/internal/registry"
	"github.com/tomtom215/pawmap/internal/validation"
)

var (
	// ErrPageClosed is returned by SDK calls after the page disconnected.
	ErrPageClosed = errors.New("bridge: page closed")
	// ErrBackpressure is returned when the page stopped draining its
	// outbound queue. The page is disconnected when this happens.
	ErrBackpressure = errors.New("bridge: page stalled")
	// ErrSDKLoad wraps a load failure reported by the page.
	ErrSDKLoad = errors.New("bridge: page failed to load sdk")
)

const sendQueueSize = 256

// Page is one connected browser page. It acts as the SDK host for every
// map view the page mounts: SDK calls become outbound commands, and the
// page's listener events and commands arrive as inbound frames.
//
// The SDK is loaded at most once per page through the page's own
// CachedLoader; the circuit breaker is shared across pages.
type Page struct {
	id     string
	conn   *websocket.Conn
	cfg    Config
	source places.Source
	loader *mapsdk.CachedLoader
	sink   maperr.Sink
	logger zerolog.Logger

	limiter *rate.Limiter
	send    chan []byte
	done    chan struct{}
	quit    chan struct{}
	objects atomic.Uint64

	closeOnce sync.Once
	quitOnce  sync.Once

	mu        sync.Mutex
	ctx       context.Context
	views     map[string]*pageView
	pending   map[string]chan SDKLoaded
	listeners map[string]func()
}

type pageView struct {
	id     string
	view   *engine.View
	cancel context.CancelFunc
	done   chan struct{}
}

func newPage(conn *websocket.Conn, cfg Config, source places.Source) *Page {
	id := uuid.NewString()
	logger := cfg.logger().With().Str("page_id", id).Logger()

	p := &Page{
		id:        id,
		conn:      conn,
		cfg:       cfg,
		source:    source,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), cfg.Burst),
		send:      make(chan []byte, sendQueueSize),
		done:      make(chan struct{}),
		quit:      make(chan struct{}),
		ctx:       context.Background(),
		views:     make(map[string]*pageView),
		pending:   make(map[string]chan SDKLoaded),
		listeners: make(map[string]func()),
	}
	p.sink = cfg.Sink
	if p.sink == nil {
		p.sink = maperr.NewLogSink(logger)
	}

	opts := []mapsdk.Option{mapsdk.WithLogger(logger)}
	if cfg.Breaker != nil {
		opts = append(opts, mapsdk.WithBreaker(cfg.Breaker))
	}
	if cfg.LoadTimeout > 0 {
		opts = append(opts, mapsdk.WithLoadTimeout(cfg.LoadTimeout))
	}
	p.loader = mapsdk.NewCachedLoader(mapsdk.LoaderFunc(p.loadSDK), opts...)
	return p
}

// ID returns the page identifier.
func (p *Page) ID() string { return p.id }

// Close disconnects the page. It is safe to call more than once.
func (p *Page) Close() {
	p.quitOnce.Do(func() { close(p.quit) })
}

// Serve runs the page until the connection drops, ctx ends or Close is
// called. Every mounted view is closed before Serve returns. Only abnormal
// websocket closes are returned as errors.
func (p *Page) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(logging.ContextWithPageID(ctx, p.id))
	defer cancel()

	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()

	metrics.BridgePages.Inc()
	defer metrics.BridgePages.Dec()
	p.logger.Info().Msg("Map page connected")

	go func() {
		select {
		case <-p.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		p.writePump(ctx)
	}()

	err := p.readPump(ctx)
	cancel()
	<-writeDone
	p.shutdown()

	p.logger.Info().Msg("Map page disconnected")
	return err
}

func (p *Page) shutdown() {
	p.closeOnce.Do(func() { close(p.done) })

	p.mu.Lock()
	views := make([]*pageView, 0, len(p.views))
	for _, pv := range p.views {
		views = append(views, pv)
	}
	p.views = make(map[string]*pageView)
	p.listeners = make(map[string]func())
	p.mu.Unlock()

	for _, pv := range views {
		pv.cancel()
		pv.view.Close()
		<-pv.done
	}
}

func (p *Page) readPump(ctx context.Context) error {
	p.conn.SetReadLimit(p.cfg.MaxMessageBytes)
	if err := p.conn.SetReadDeadline(time.Now().Add(p.cfg.PongWait)); err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(p.cfg.PongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Warn().Err(err).Msg("Unexpected websocket close")
				return err
			}
			return nil
		}

		if !p.limiter.Allow() {
			metrics.RecordBridgeMessage("in", "rate_limited")
			p.emitError("", CodeRateLimited, "too many messages")
			continue
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			metrics.RecordBridgeMessage("in", "invalid")
			p.emitError("", CodeBadRequest, "malformed frame")
			continue
		}
		metrics.RecordBridgeMessage("in", f.Type)
		p.dispatch(ctx, f)
	}
}

func (p *Page) writePump(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
		p.closeOnce.Do(func() { close(p.done) })
	}()

	for {
		select {
		case <-ctx.Done():
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteWait))
			_ = p.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-p.send:
			if err := p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteWait)); err != nil {
				p.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				p.logger.Debug().Err(err).Msg("Failed to write frame")
				return
			}

		case <-ticker.C:
			if err := p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteWait)); err != nil {
				return
			}
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// emit queues an outbound command. Commands are never dropped: when the
// queue is full emit waits for the write pump. A page that accepts nothing
// for WriteWait is disconnected, so the page never keeps running with a
// partial set of SDK objects.
func (p *Page) emit(typ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", typ, err)
	}
	msg, err := json.Marshal(Frame{Type: typ, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", typ, err)
	}

	select {
	case <-p.done:
		return ErrPageClosed
	default:
	}

	select {
	case p.send <- msg:
		metrics.RecordBridgeMessage("out", typ)
		return nil
	default:
	}

	stall := time.NewTimer(p.cfg.WriteWait)
	defer stall.Stop()
	select {
	case p.send <- msg:
		metrics.RecordBridgeMessage("out", typ)
		return nil
	case <-p.done:
		return ErrPageClosed
	case <-stall.C:
		metrics.RecordBridgeMessage("out", "stalled")
		p.logger.Warn().Str("frame", typ).Dur("wait", p.cfg.WriteWait).Msg("Map page stopped reading; disconnecting")
		p.Close()
		return ErrBackpressure
	}
}

func (p *Page) emitError(view, code, message string) {
	_ = p.emit(TypeError, ErrorMessage{View: view, Code: code, Message: message})
}

func (p *Page) newObjectID(kind string) string {
	return kind + "-" + strconv.FormatUint(p.objects.Add(1), 10)
}

func (p *Page) addListener(id string, fn func()) {
	p.mu.Lock()
	p.listeners[id] = fn
	p.mu.Unlock()
}

func (p *Page) removeListener(id string) {
	p.mu.Lock()
	delete(p.listeners, id)
	p.mu.Unlock()
}

// loadSDK asks the page to load the SDK and waits for its sdk_loaded reply.
// Every failure after the credential check is the page's own and wraps
// mapsdk.ErrClientLoad.
func (p *Page) loadSDK(ctx context.Context, credential string) (h mapsdk.Handle, err error) {
	if credential == "" {
		return nil, mapsdk.ErrCredentialMissing
	}
	defer func() {
		if err != nil {
			err = fmt.Errorf("%w: %w", mapsdk.ErrClientLoad, err)
		}
	}()

	req := uuid.NewString()
	reply := make(chan SDKLoaded, 1)
	p.mu.Lock()
	p.pending[req] = reply
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, req)
		p.mu.Unlock()
	}()

	if err := p.emit(TypeLoadSDK, loadSDK{Request: req, Credential: credential}); err != nil {
		return nil, err
	}

	select {
	case r := <-reply:
		if r.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrSDKLoad, r.Error)
		}
		return &remoteHandle{page: p, staticBase: r.StaticBase}, nil
	case <-p.done:
		return nil, ErrPageClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Page) dispatch(ctx context.Context, f Frame) {
	switch f.Type {
	case TypePing:
		_ = p.emit(TypePong, struct{}{})
	case TypeSDKLoaded:
		var msg SDKLoaded
		if p.decode(f, &msg) {
			p.handleSDKLoaded(msg)
		}
	case TypeEvent:
		var msg Event
		if p.decode(f, &msg) {
			p.handleEvent(msg)
		}
	case TypeMount:
		var cmd MountCommand
		if p.decode(f, &cmd) {
			p.handleMount(ctx, cmd)
		}
	case TypeFilters:
		var cmd FiltersCommand
		if p.decode(f, &cmd) {
			p.handleFilters(cmd)
		}
	case TypeLocation:
		var cmd LocationCommand
		if p.decode(f, &cmd) {
			p.handleLocation(cmd)
		}
	case TypeUnmount:
		var cmd ViewCommand
		if p.decode(f, &cmd) {
			p.handleUnmount(cmd)
		}
	case TypeFallbackClick:
		var cmd FallbackClickCommand
		if p.decode(f, &cmd) {
			p.handleFallbackClick(cmd)
		}
	default:
		p.emitError("", CodeBadRequest, "unknown frame type "+strconv.Quote(f.Type))
	}
}

// decode unmarshals and validates a frame payload, reporting failures to
// the page.
func (p *Page) decode(f Frame, dst any) bool {
	if err := json.Unmarshal(f.Data, dst); err != nil {
		p.emitError("", CodeBadRequest, "malformed "+f.Type+" payload")
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		p.emitError("", CodeBadRequest, verr.Error())
		return false
	}
	return true
}

func (p *Page) handleSDKLoaded(msg SDKLoaded) {
	p.mu.Lock()
	reply, ok := p.pending[msg.Request]
	p.mu.Unlock()
	if !ok {
		p.logger.Debug().Str("request", msg.Request).Msg("Ignoring sdk_loaded for unknown request")
		return
	}
	select {
	case reply <- msg:
	default:
	}
}

func (p *Page) handleEvent(msg Event) {
	p.mu.Lock()
	fn := p.listeners[msg.Listener]
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *Page) handleMount(ctx context.Context, cmd MountCommand) {
	category, _ := registry.Parse(cmd.Category)

	p.mu.Lock()
	if _, exists := p.views[cmd.View]; exists {
		p.mu.Unlock()
		p.emitError(cmd.View, CodeViewExists, "view already mounted")
		return
	}

	viewID := cmd.View
	logger := p.logger.With().Str("view", viewID).Logger()
	view := engine.NewView(engine.ViewConfig{
		Loader:     p.loader,
		Credential: p.cfg.Credential,
		Category:   category,
		Container:  &remoteContainer{page: p, id: cmd.Container},
		Builder:    p.cfg.Builder,
		Sink:       p.sink,
		OnClick: func(m models.Marker) {
			_ = p.emit(TypeMarkerClick, MarkerClick{View: viewID, Marker: m})
		},
		Logger: &logger,
	})

	viewCtx, cancel := context.WithCancel(ctx)
	pv := &pageView{id: viewID, view: view, cancel: cancel, done: make(chan struct{})}
	p.views[viewID] = pv
	p.mu.Unlock()

	go p.runView(viewCtx, pv, cmd.Location)
}

// runView opens the map and streams the category's records into it batch
// by batch, so markers appear as data arrives.
func (p *Page) runView(ctx context.Context, pv *pageView, location *models.LatLng) {
	defer close(pv.done)
	v := pv.view

	var loc engine.Locator
	if location != nil {
		loc = &engine.FixedLocator{Position: *location}
	}
	center, fromUser := engine.ResolveCenter(ctx, loc, p.cfg.DefaultCenter, p.sink)
	if fromUser {
		v.SetUserLocation(center)
	}

	if err := v.Open(ctx, center); err != nil {
		if errors.Is(err, engine.ErrViewClosed) || errors.Is(err, engine.ErrUnmounted) || ctx.Err() != nil {
			return
		}
		if !v.Degraded() {
			p.emitError(pv.id, CodeMapFailed, err.Error())
		}
	}

	err := places.Stream(ctx, p.source, v.Category(), p.cfg.PageSize, func(pg places.Page) error {
		v.Load(pg.Records)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error().Err(err).Str("view", pv.id).Msg("Failed to stream place records")
		p.emitError(pv.id, CodeLoadFailed, "place data unavailable")
	}
	p.emitViewState(pv)
}

func (p *Page) lookup(id string) (*pageView, bool) {
	p.mu.Lock()
	pv, ok := p.views[id]
	p.mu.Unlock()
	if !ok {
		p.emitError(id, CodeUnknownView, "no such view")
	}
	return pv, ok
}

func (p *Page) handleFilters(cmd FiltersCommand) {
	pv, ok := p.lookup(cmd.View)
	if !ok {
		return
	}
	if err := pv.view.SetFilters(cmd.Filters); err != nil {
		p.emitError(cmd.View, CodeBadRequest, err.Error())
		return
	}
	p.emitViewState(pv)
}

func (p *Page) handleLocation(cmd LocationCommand) {
	if !cmd.Position.InRange() {
		p.sink.Report(p.ctx, maperr.New(maperr.GeolocationFailed, "bridge_location",
			fmt.Errorf("invalid position %s", cmd.Position)))
		p.emitError(cmd.View, CodeBadRequest, "invalid position")
		return
	}

	if cmd.View != "" {
		if pv, ok := p.lookup(cmd.View); ok {
			pv.view.SetUserLocation(cmd.Position)
		}
		return
	}

	p.mu.Lock()
	views := make([]*pageView, 0, len(p.views))
	for _, pv := range p.views {
		views = append(views, pv)
	}
	p.mu.Unlock()
	for _, pv := range views {
		pv.view.SetUserLocation(cmd.Position)
	}
}

func (p *Page) handleUnmount(cmd ViewCommand) {
	p.mu.Lock()
	pv, ok := p.views[cmd.View]
	delete(p.views, cmd.View)
	p.mu.Unlock()
	if !ok {
		p.emitError(cmd.View, CodeUnknownView, "no such view")
		return
	}

	pv.cancel()
	pv.view.Close()
	p.logger.Debug().Str("view", cmd.View).Msg("View unmounted")
}

func (p *Page) handleFallbackClick(cmd FallbackClickCommand) {
	pv, ok := p.lookup(cmd.View)
	if !ok {
		return
	}
	if !pv.view.ActivateFallback(cmd.Marker) {
		p.emitError(cmd.View, CodeBadRequest, "no such fallback marker")
	}
}

func (p *Page) emitViewState(pv *pageView) {
	visible := pv.view.Visible()
	ids := make([]string, len(visible))
	for i := range visible {
		ids[i] = visible[i].ID
	}
	_ = p.emit(TypeViewState, ViewState{
		View:     pv.id,
		Category: string(pv.view.Category()),
		Degraded: pv.view.Degraded(),
		Total:    len(pv.view.Markers()),
		Visible:  ids,
	})
}
