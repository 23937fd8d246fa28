// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package mapsdk

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/metrics"
)

// BreakerConfig configures the SDK fetch circuit breaker.
type BreakerConfig struct {
	Name string
	// MaxRequests is the number of trial loads allowed while half-open.
	MaxRequests uint32
	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open before trying again.
	Timeout time.Duration
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns the production breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "map-sdk",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// ErrClientLoad marks a load failure attributable to one client, such as a
// browser page that could not fetch the SDK script or never answered. These
// failures neither trip nor reset a shared Breaker: one misbehaving client
// must not degrade every other client to the fallback.
var ErrClientLoad = errors.New("mapsdk: client failed to load sdk")

// Breaker stops issuing SDK loads after repeated failures, so pages degrade
// to the fallback renderer at once while the SDK host is down. One Breaker is
// normally shared by every page's CachedLoader.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[Handle]
	name string
}

// NewBreaker builds a breaker and publishes its initial state metric.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "map-sdk"
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	threshold := cfg.ConsecutiveFailures

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[Handle](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		IsExcluded: func(err error) bool {
			return errors.Is(err, ErrClientLoad)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().
					Str("breaker", cfg.Name).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("Opening SDK load circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
	return &Breaker{cb: cb, name: cfg.Name}
}

// Execute runs fn through the breaker.
func (b *Breaker) Execute(fn func() (Handle, error)) (Handle, error) {
	return b.cb.Execute(fn)
}

// State returns "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// Rejected reports whether err came from the breaker refusing a request.
func Rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
