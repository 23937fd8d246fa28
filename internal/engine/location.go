// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/pawmap/internal/maperr"
	"github.com/tomtom215/pawmap/internal/models"
)

// Locator looks up the user's position.
type Locator interface {
	Locate(ctx context.Context) (models.LatLng, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (models.LatLng, error)

// Locate implements Locator.
func (f LocatorFunc) Locate(ctx context.Context) (models.LatLng, error) {
	return f(ctx)
}

// ErrNoLocation is returned by locators that have nothing to report.
var ErrNoLocation = errors.New("engine: no location available")

// FixedLocator always reports the same position. A nil *FixedLocator has no
// position and fails with ErrNoLocation.
type FixedLocator struct {
	Position models.LatLng
}

// Locate implements Locator.
func (f *FixedLocator) Locate(context.Context) (models.LatLng, error) {
	if f == nil {
		return models.LatLng{}, ErrNoLocation
	}
	return f.Position, nil
}

// ResolveCenter returns the user's position when loc can provide a valid one,
// and fallback otherwise. A nil loc means geolocation is unavailable and is
// not an error. Lookup failures are reported as GeolocationFailed and never
// block rendering. The boolean is true when the user position was used.
func ResolveCenter(ctx context.Context, loc Locator, fallback models.LatLng, sink maperr.Sink) (models.LatLng, bool) {
	if loc == nil {
		return fallback, false
	}
	if sink == nil {
		sink = maperr.Discard
	}

	pos, err := locate(ctx, loc)
	if err == nil && !pos.InRange() {
		err = fmt.Errorf("invalid position %s", pos)
	}
	if err != nil {
		sink.Report(ctx, maperr.New(maperr.GeolocationFailed, "resolve_center", err))
		return fallback, false
	}
	return pos, true
}

func locate(ctx context.Context, loc Locator) (pos models.LatLng, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("locator panic: %v", r)
		}
	}()
	return loc.Locate(ctx)
}
