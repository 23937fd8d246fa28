// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
	pageIDKey        contextKey = "page_id"
)

// GenerateCorrelationID returns the first 8 characters of a fresh UUID.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a full UUID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID returns a context carrying the correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context with a generated correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a context carrying the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithPageID returns a context carrying the map bridge page ID.
func ContextWithPageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, pageIDKey, id)
}

// PageIDFromContext returns the bridge page ID or "".
func PageIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(pageIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger enriched with the correlation, request and
// page IDs found in ctx.
//
//	logging.Ctx(ctx).Info().Str("category", "hotel").Msg("Markers rendered")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if id := PageIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("page_id", id)
	}
	l := logCtx.Logger()
	return &l
}
