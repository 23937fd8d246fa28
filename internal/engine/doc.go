// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

/*
Package engine controls the lifecycle of interactive map views.

A Session owns one mounted map and everything created on it:

	uninitialized -> loading-sdk -> creating-map -> ready
	                      |               |
	                      +----> failed <-+

Failed is terminal until Unmount, which always returns the session to
uninitialized. Every SDK call is guarded so that a panicking or failing SDK
becomes a classified *maperr.Error reported to the session's Sink; the host
never observes a panic.

A View sits on top of a Session and is what hosts talk to. It accumulates
markers as place records arrive, applies the current filter set and renders
the visible markers either on the live map or, after a fatal failure,
through the fallback renderer. Both paths receive exactly the same marker
set.

Example:

	v := engine.NewView(engine.ViewConfig{
		Loader:     loader,
		Credential: cfg.Maps.APIKey,
		Category:   registry.Hospital,
		Container:  container,
		Sink:       maperr.NewLogSink(logging.Logger()),
	})
	center, _ := engine.ResolveCenter(ctx, locator, defaultCenter, sink)
	_ = v.Open(ctx, center)
	v.Load(records)
*/
package engine
