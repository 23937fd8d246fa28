// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package mapsdk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/metrics"
)

// Load request outcomes, used as the sdk_load_requests label.
const (
	OutcomeCached    = "cached"
	OutcomeShared    = "shared"
	OutcomeInitiated = "initiated"
	OutcomeRejected  = "rejected"
)

// CachedLoader shares SDK loads between concurrent requesters.
//
// The first Load for a credential starts the underlying load; every Load for
// the same credential issued while it is in flight waits for that same
// result. Successful handles are kept for the lifetime of the loader, so the
// SDK is loaded at most once per page. Failures are not kept: the next Load
// after a failure starts a fresh attempt.
//
// A caller whose context ends stops waiting, but the shared load continues
// for the other waiters.
type CachedLoader struct {
	source  Loader
	breaker *Breaker
	timeout time.Duration
	logger  zerolog.Logger

	group singleflight.Group

	mu       sync.Mutex
	handles  map[string]Handle
	inflight map[string]bool
}

// Option configures a CachedLoader.
type Option func(*CachedLoader)

// WithBreaker routes underlying loads through b.
func WithBreaker(b *Breaker) Option {
	return func(l *CachedLoader) { l.breaker = b }
}

// WithLoadTimeout bounds each underlying load. Zero means no timeout: a load
// that never resolves keeps its waiters waiting until their own contexts end.
func WithLoadTimeout(d time.Duration) Option {
	return func(l *CachedLoader) { l.timeout = d }
}

// WithLogger sets the loader logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(l *CachedLoader) { l.logger = logger }
}

// NewCachedLoader wraps source.
func NewCachedLoader(source Loader, opts ...Option) *CachedLoader {
	l := &CachedLoader{
		source:   source,
		logger:   logging.Component("mapsdk"),
		handles:  make(map[string]Handle),
		inflight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the SDK handle for credential, loading it if needed.
// An empty credential fails with ErrCredentialMissing without a load attempt.
func (l *CachedLoader) Load(ctx context.Context, credential string) (Handle, error) {
	if credential == "" {
		return nil, ErrCredentialMissing
	}

	l.mu.Lock()
	if h, ok := l.handles[credential]; ok {
		l.mu.Unlock()
		metrics.SDKLoadRequests.WithLabelValues(OutcomeCached).Inc()
		return h, nil
	}
	outcome := OutcomeShared
	if !l.inflight[credential] {
		l.inflight[credential] = true
		outcome = OutcomeInitiated
	}
	l.mu.Unlock()
	metrics.SDKLoadRequests.WithLabelValues(outcome).Inc()

	// The shared load must outlive any single waiter.
	loadCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(credential, func() (interface{}, error) {
		return l.fetch(loadCtx, credential)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		h, _ := res.Val.(Handle)
		return h, nil
	case <-ctx.Done():
		l.logger.Debug().Msg("SDK load waiter detached")
		return nil, ctx.Err()
	}
}

// fetch runs one underlying load. It never panics: singleflight would
// re-raise the panic on a fresh goroutine and take the process down.
func (l *CachedLoader) fetch(ctx context.Context, credential string) (h Handle, err error) {
	defer func() {
		l.mu.Lock()
		delete(l.inflight, credential)
		if err == nil && h != nil {
			l.handles[credential] = h
		}
		l.mu.Unlock()
	}()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	load := func() (Handle, error) { return l.loadSource(ctx, credential) }
	if l.breaker != nil {
		h, err = l.breaker.Execute(load)
	} else {
		h, err = load()
	}
	if err == nil && h == nil {
		err = fmt.Errorf("mapsdk: loader returned no handle")
	}

	switch {
	case err == nil:
		metrics.RecordSDKFetch("success", time.Since(start))
		l.logger.Info().Dur("duration", time.Since(start)).Msg("Map SDK loaded")
	case Rejected(err):
		metrics.RecordSDKFetch(OutcomeRejected, 0)
		l.logger.Warn().Err(err).Msg("Map SDK load rejected by circuit breaker")
	default:
		metrics.RecordSDKFetch("failure", time.Since(start))
		l.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Map SDK load failed")
	}
	return h, err
}

func (l *CachedLoader) loadSource(ctx context.Context, credential string) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("mapsdk: load panicked: %v", r)
		}
	}()
	return l.source.Load(ctx, credential)
}

// Cached reports whether a handle for credential is already loaded.
func (l *CachedLoader) Cached(credential string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.handles[credential]
	return ok
}

// Forget drops the cached handle for credential. The next Load reloads.
func (l *CachedLoader) Forget(credential string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.handles, credential)
}
