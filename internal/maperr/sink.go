// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package maperr

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/metrics"
)

// Sink receives every classified failure the engine handles. Implementations
// must be safe for concurrent use and must not block.
type Sink interface {
	Report(ctx context.Context, err *Error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, err *Error)

// Report implements Sink.
func (f SinkFunc) Report(ctx context.Context, err *Error) {
	f(ctx, err)
}

type discardSink struct{}

func (discardSink) Report(context.Context, *Error) {}

// Discard drops every report.
var Discard Sink = discardSink{}

// LogSink logs reports through zerolog and counts them in the map_errors
// metric. Low severity reports log at warn, the rest at error.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink returns a sink writing to logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report implements Sink.
func (s *LogSink) Report(ctx context.Context, err *Error) {
	if err == nil {
		return
	}
	metrics.RecordMapError(err.Kind.String(), err.Severity().String())

	event := s.logger.Warn()
	if err.Severity() > SeverityLow {
		event = s.logger.Error()
	}
	event = event.
		Str("kind", err.Kind.String()).
		Str("severity", err.Severity().String()).
		Bool("fatal", err.Fatal())
	if err.Op != "" {
		event = event.Str("op", err.Op)
	}
	if err.MarkerID != "" {
		event = event.Str("marker_id", err.MarkerID)
	}
	if id := logging.PageIDFromContext(ctx); id != "" {
		event = event.Str("page_id", id)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		event = event.Str("correlation_id", id)
	}
	event.Err(err.Err).Msg("Map engine failure")
}

// Recorder keeps every report in memory. It is meant for tests and for hosts
// that surface recent failures in a diagnostics view.
type Recorder struct {
	mu      sync.Mutex
	reports []*Error
}

// Report implements Sink.
func (r *Recorder) Report(_ context.Context, err *Error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, err)
}

// Reports returns a copy of everything recorded so far.
func (r *Recorder) Reports() []*Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Error, len(r.reports))
	copy(out, r.reports)
	return out
}

// Kinds returns the kinds recorded so far, in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.reports))
	for i, e := range r.reports {
		out[i] = e.Kind
	}
	return out
}

// Multi fans a report out to several sinks.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, err *Error) {
		for _, s := range sinks {
			s.Report(ctx, err)
		}
	})
}
