// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package bridge

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/maperr"
	"github.com/tomtom215/pawmap/internal/markers"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/places"
)

// Config configures the bridge server and every page it accepts.
type Config struct {
	// Credential is sent to pages in load_sdk. Empty means every view
	// renders through the fallback.
	Credential    string
	DefaultCenter models.LatLng
	PageSize      int
	LoadTimeout   time.Duration
	// Breaker is shared by every page's SDK loader.
	Breaker *mapsdk.Breaker
	Builder *markers.Builder
	// Sink receives classified map failures. Defaults to a LogSink per page.
	Sink maperr.Sink

	// AllowedOrigins lists accepted Origin headers; "*" accepts any.
	AllowedOrigins    []string
	MessagesPerSecond float64
	Burst             int
	MaxMessageBytes   int64
	PongWait          time.Duration
	WriteWait         time.Duration

	Logger *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if !c.DefaultCenter.InRange() {
		c.DefaultCenter = models.LatLng{Lat: 37.5665, Lng: 126.9780}
	}
	if c.MessagesPerSecond <= 0 {
		c.MessagesPerSecond = 20
	}
	if c.Burst <= 0 {
		c.Burst = 40
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = 64 << 10
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	return c
}

func (c Config) logger() zerolog.Logger {
	if c.Logger != nil {
		return *c.Logger
	}
	return logging.Component("bridge")
}

func (c Config) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

// Server upgrades HTTP requests to page websockets.
type Server struct {
	cfg      Config
	source   places.Source
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu      sync.Mutex
	pages   map[string]*Page
	closing bool
}

// NewServer returns a bridge server streaming records from source.
func NewServer(cfg Config, source places.Source) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:    cfg,
		source: source,
		logger: cfg.logger(),
		pages:  make(map[string]*Page),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      s.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return s
}

// ServeHTTP upgrades the request and serves the page until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closing := s.closing
	s.mu.Unlock()
	if closing {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	page := newPage(conn, s.cfg, s.source)
	s.mu.Lock()
	s.pages[page.ID()] = page
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pages, page.ID())
		s.mu.Unlock()
	}()

	if err := page.Serve(r.Context()); err != nil {
		s.logger.Warn().Err(err).Str("page_id", page.ID()).Msg("Map page ended with error")
	}
}

// Pages returns the number of connected pages.
func (s *Server) Pages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Close disconnects every page and rejects new ones. Hijacked websocket
// connections are not tracked by http.Server, so register Close with
// RegisterOnShutdown.
func (s *Server) Close() {
	s.mu.Lock()
	s.closing = true
	pages := make([]*Page, 0, len(s.pages))
	for _, p := range s.pages {
		pages = append(pages, p)
	}
	s.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
	if len(pages) > 0 {
		s.logger.Info().Int("pages", len(pages)).Msg("Disconnected map pages for shutdown")
	}
}

// checkOrigin rejects requests without an Origin header: browsers always
// send one on websocket handshakes.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		s.logger.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	s.logger.Warn().Str("origin", sanitizeOrigin(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

func sanitizeOrigin(origin string) string {
	origin = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, origin)
	if len(origin) > 200 {
		origin = origin[:200]
	}
	return origin
}
