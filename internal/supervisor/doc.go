// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

/*
Package supervisor provides process supervision for Pawmap using suture v4.

	pawmap
	├── data-layer
	│   ├── places-watcher   (places.Watcher, if PLACES_WATCH)
	│   └── config-watcher   (services.ConfigReloadService, if a config file is used)
	└── api-layer
	    └── http-server      (services.HTTPServerService)

Crashed services restart with suture's backoff. The layers restart
independently: a watcher that cannot watch its file backs off while the HTTP
server keeps serving the last loaded data.

Supervisor events are logged through sutureslog, fed by the zerolog-backed
slog handler from the logging package:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.AddDataService(places.NewWatcher(store, cfg.Places.WatchDebounce))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
