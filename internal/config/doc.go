// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

/*
Package config loads and validates Pawmap configuration.

Values are layered with koanf: built-in defaults, then an optional YAML file,
then environment variables. Only the variables listed below are read; any
other environment is ignored.

# Config File

The file is taken from CONFIG_PATH, or the first of config.yaml, config.yml,
/etc/pawmap/config.yaml and /etc/pawmap/config.yml that exists:

	maps:
	  api_key: "..."
	  load_timeout: 10s
	places:
	  path: /data/places.json
	  page_size: 50
	defaults:
	  hospital_specialties: [general, surgery]
	server:
	  port: 8080

# Environment Variables

Maps:
  - MAPS_API_KEY: SDK credential. Empty means every map renders in fallback mode.
  - MAPS_LOAD_TIMEOUT: SDK load timeout (default: 10s)
  - MAPS_DEFAULT_LATITUDE, MAPS_DEFAULT_LONGITUDE: center used when the
    user location is unavailable (default: Seoul City Hall)
  - MAPS_BREAKER_FAILURES, MAPS_BREAKER_TIMEOUT, MAPS_BREAKER_INTERVAL,
    MAPS_BREAKER_MAX_REQUESTS: SDK fetch circuit breaker

Places:
  - PLACES_PATH: place data file (default: /data/places.json)
  - PLACES_PAGE_SIZE: records per batch (default: 50)
  - PLACES_WATCH, PLACES_WATCH_DEBOUNCE: reload the file on change
  - PLACES_CELL_SIZE_KM: spatial index cell size (default: 2)

Attribute defaults (comma-separated lists):
  - DEFAULT_GROOMING_SERVICES, DEFAULT_GROOMING_PET_TYPES,
    DEFAULT_GROOMING_PRICE_RANGE, DEFAULT_CAFE_AMENITIES,
    DEFAULT_HOSPITAL_SPECIALTIES, DEFAULT_HOTEL_PET_AMENITIES,
    DEFAULT_HOTEL_PRICE_RANGE

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT,
    HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - CACHE_ENABLED, CACHE_TTL: marker response cache
  - CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - BRIDGE_MESSAGES_PER_SECOND, BRIDGE_BURST, BRIDGE_MAX_MESSAGE_BYTES,
    BRIDGE_PONG_WAIT, BRIDGE_WRITE_WAIT: page websocket limits

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
