// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// ChiMiddlewareConfig holds configuration for the CORS and rate limit
// middleware.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc
}

// DefaultChiMiddlewareConfig returns the defaults for the read-only API.
// go-chi/cors treats an empty origin list as "*".
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{},
		CORSAllowedMethods:   []string{"GET", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		CORSExposedHeaders:   []string{"X-Request-ID", "ETag"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// NewChiMiddlewareFromSecurity builds the middleware config from the
// security settings, keeping the default methods and headers.
func NewChiMiddlewareFromSecurity(corsOrigins []string, rateLimitReqs int, rateLimitWindow time.Duration, rateLimitDisabled bool) *ChiMiddleware {
	config := DefaultChiMiddlewareConfig()
	config.CORSAllowedOrigins = corsOrigins
	config.RateLimitRequests = rateLimitReqs
	config.RateLimitWindow = rateLimitWindow
	config.RateLimitDisabled = rateLimitDisabled
	return NewChiMiddleware(config)
}

// ChiMiddleware provides chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates the factory. A nil config uses the defaults.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   config.CORSAllowedMethods,
		AllowedHeaders:   config.CORSAllowedHeaders,
		ExposedHeaders:   config.CORSExposedHeaders,
		AllowCredentials: config.CORSAllowCredentials,
		MaxAge:           config.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the go-chi/cors handler.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns a go-chi/httprate limiter keyed by client IP, or a
// no-op when rate limiting is disabled. Limited requests get a 429 in the
// standard error envelope.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	keyFunc := m.config.RateLimitKeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
		}),
	)
}
