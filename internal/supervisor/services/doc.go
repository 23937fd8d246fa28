// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package services adapts long-running components to suture.Service.
//
// HTTPServerService runs the API and map bridge listener in the api layer.
// ConfigReloadService sits in the data layer next to places.Watcher, which
// already implements suture.Service itself.
package services
