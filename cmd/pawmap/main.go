// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Command pawmap serves pet-care service maps.
//
// It loads place records from a JSON file, exposes filtered markers over a
// REST API and drives browser map pages over the map bridge websocket.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging
//  3. Place data and its spatial index
//  4. Marker builder, response cache and SDK circuit breaker
//  5. Map bridge and HTTP router
//  6. Supervisor tree: data layer (watchers) and api layer (HTTP server)
//
// SIGINT and SIGTERM cancel the tree; the HTTP server drains requests and
// disconnects map pages before the process exits.
//
//	MAPS_API_KEY=... PLACES_PATH=./places.json ./pawmap
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/pawmap/internal/api"
	"github.com/tomtom215/pawmap/internal/bridge"
	"github.com/tomtom215/pawmap/internal/cache"
	"github.com/tomtom215/pawmap/internal/config"
	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/markers"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/places"
	"github.com/tomtom215/pawmap/internal/registry"
	"github.com/tomtom215/pawmap/internal/supervisor"
	"github.com/tomtom215/pawmap/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Pawmap stopped with error")
	}
}

func run() error {
	configPath := config.FindConfigFile()
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("config_file", configPath).
		Str("places_path", cfg.Places.Path).
		Bool("maps_credential", cfg.Maps.APIKey != "").
		Msg("Starting Pawmap")

	if cfg.Maps.APIKey == "" {
		logging.Warn().Msg("MAPS_API_KEY is not set: every map view will render the fallback")
	}
	if len(cfg.Security.CORSOrigins) == 1 && cfg.Security.CORSOrigins[0] == "*" {
		logging.Warn().Msg("CORS_ORIGINS=* accepts map pages from any site; set explicit origins in production")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	store, err := places.OpenFile(cfg.Places.Path,
		places.WithCellSize(cfg.Places.CellSizeKm),
		places.WithStoreLogger(logging.Component("places")),
	)
	if err != nil {
		return err
	}

	builder := markers.NewBuilder(
		registry.DefaultAttributeDefaults().Merge(cfg.Defaults),
		logging.Component("markers"),
	)

	var markerCache *cache.Cache
	if cfg.Cache.Enabled {
		markerCache = cache.New("markers", cfg.Cache.TTL)
		defer markerCache.Close()
		store.OnReload(markerCache.Clear)
	}

	breaker := mapsdk.NewBreaker(mapsdk.BreakerConfig{
		Name:                "map-sdk",
		MaxRequests:         cfg.Maps.BreakerMaxRequests,
		Interval:            cfg.Maps.BreakerInterval,
		Timeout:             cfg.Maps.BreakerTimeout,
		ConsecutiveFailures: cfg.Maps.BreakerFailures,
	})

	bridgeLogger := logging.Component("bridge")
	bridgeServer := bridge.NewServer(bridge.Config{
		Credential:        cfg.Maps.APIKey,
		DefaultCenter:     models.LatLng{Lat: cfg.Maps.DefaultLatitude, Lng: cfg.Maps.DefaultLongitude},
		PageSize:          cfg.Places.PageSize,
		LoadTimeout:       cfg.Maps.LoadTimeout,
		Breaker:           breaker,
		Builder:           builder,
		AllowedOrigins:    cfg.Security.CORSOrigins,
		MessagesPerSecond: cfg.Bridge.MessagesPerSecond,
		Burst:             cfg.Bridge.Burst,
		MaxMessageBytes:   cfg.Bridge.MaxMessageBytes,
		PongWait:          cfg.Bridge.PongWait,
		WriteWait:         cfg.Bridge.WriteWait,
		Logger:            &bridgeLogger,
	}, store)

	apiLogger := logging.Component("api")
	handler := api.NewHandler(api.HandlerConfig{
		Store:          store,
		Builder:        builder,
		Cache:          markerCache,
		Pages:          bridgeServer.Pages,
		DefaultLimit:   cfg.Places.PageSize,
		StreamPageSize: cfg.Places.PageSize,
		Logger:         &apiLogger,
	})
	mw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, mw, bridgeServer)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	server.RegisterOnShutdown(bridgeServer.Close)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	if cfg.Places.Watch {
		tree.AddDataService(places.NewWatcher(store, cfg.Places.WatchDebounce))
	}
	if configPath != "" {
		tree.AddDataService(services.NewConfigReloadService(configPath, applyRuntimeConfig))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Pawmap stopped")
	return nil
}

// applyRuntimeConfig applies the settings that can change without a restart.
func applyRuntimeConfig(cfg *config.Config) {
	logging.SetLevelString(cfg.Logging.Level)
	logging.Info().Str("level", cfg.Logging.Level).Msg("Log level updated from config file")
}
