// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

/*
Package middleware provides the infrastructure HTTP middleware shared by the
API router.

  - RequestID: X-Request-ID propagation into chi and the logging context
  - PrometheusMetrics: request count, duration and in-flight gauge, labelled
    by chi route pattern; supports websocket hijacking
  - Compression: gzip for clients that accept it

All middleware use the func(http.Handler) http.Handler shape so they can be
passed straight to chi's Use.
*/
package middleware
