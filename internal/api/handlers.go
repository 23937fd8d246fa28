// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/pawmap/internal/cache"
	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/markers"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/places"
	"github.com/tomtom215/pawmap/internal/registry"
)

// Store is the place data the API reads. *places.FileStore satisfies it.
type Store interface {
	places.Source
	Count(category registry.Category) int
	Version() uint64
	Nearby(ctx context.Context, category registry.Category, center models.LatLng, radiusKm float64, limit int) ([]places.Nearby, error)
}

// HandlerConfig holds the handler dependencies.
type HandlerConfig struct {
	Store   Store
	Builder *markers.Builder
	// Cache holds filtered marker lists. Nil disables caching.
	Cache *cache.Cache
	// Pages reports connected map pages for the health endpoints. Optional.
	Pages func() int
	// DefaultLimit is the markers page size when the request has no limit.
	DefaultLimit int
	// StreamPageSize is the batch size used when reading the store.
	StreamPageSize int
	Logger         *zerolog.Logger
}

// Handler serves the API routes.
type Handler struct {
	store        Store
	builder      *markers.Builder
	cache        *cache.Cache
	pages        func() int
	defaultLimit int
	streamSize   int
	started      time.Time
	logger       zerolog.Logger

	builds singleflight.Group
}

// NewHandler returns a Handler. A nil Builder uses the built-in attribute
// defaults.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		store:        cfg.Store,
		builder:      cfg.Builder,
		cache:        cfg.Cache,
		pages:        cfg.Pages,
		defaultLimit: cfg.DefaultLimit,
		streamSize:   cfg.StreamPageSize,
		started:      time.Now(),
	}
	if cfg.Logger != nil {
		h.logger = *cfg.Logger
	} else {
		h.logger = logging.Component("api")
	}
	if h.builder == nil {
		h.builder = markers.NewBuilder(registry.DefaultAttributeDefaults(), h.logger)
	}
	if h.defaultLimit <= 0 {
		h.defaultLimit = 50
	}
	if h.defaultLimit > maxLimit {
		h.defaultLimit = maxLimit
	}
	if h.streamSize <= 0 {
		h.streamSize = 200
	}
	return h
}

// categoryParam resolves the {category} URL parameter, writing a 404 when
// it names no category.
func categoryParam(w http.ResponseWriter, r *http.Request) (registry.Category, bool) {
	raw := chi.URLParam(r, "category")
	c, ok := registry.Parse(raw)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown category: "+sanitizeLogValue(raw), nil)
		return "", false
	}
	return c, true
}
