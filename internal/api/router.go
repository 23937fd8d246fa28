// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/pawmap/internal/middleware"
)

// Router wires the handlers, the map bridge and the middleware stack.
type Router struct {
	handler    *Handler
	middleware *ChiMiddleware
	bridge     http.Handler
}

// NewRouter returns a Router. bridge may be nil, in which case the
// websocket route is not mounted. A nil mw uses the defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware, bridge http.Handler) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, middleware: mw, bridge: bridge}
}

// SetupChi builds the chi handler.
//
// Global stack: request ID, real IP, panic recovery, Prometheus metrics,
// CORS. Health probes and /metrics skip the rate limiter; the JSON routes
// are gzip-compressed; the websocket route is rate limited on handshake
// only and never compressed.
func (rt *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(rt.middleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", rt.handler.Live)
		r.Get("/ready", rt.handler.Ready)
	})

	r.Group(func(r chi.Router) {
		r.Use(rt.middleware.RateLimit())

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compression)
			r.Get("/api/v1/categories", rt.handler.Categories)
			r.Get("/api/v1/categories/{category}", rt.handler.Category)
			r.Get("/api/v1/categories/{category}/markers", rt.handler.CategoryMarkers)
		})

		if rt.bridge != nil {
			r.Get("/api/v1/map/ws", rt.bridge.ServeHTTP)
		}
	})

	return r
}
