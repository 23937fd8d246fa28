// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/pawmap/internal/registry"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pawmap/config.yaml",
	"/etc/pawmap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	return &Config{
		Maps: MapsConfig{
			LoadTimeout: 10 * time.Second,
			// Seoul City Hall
			DefaultLatitude:    37.5665,
			DefaultLongitude:   126.9780,
			BreakerMaxRequests: 1,
			BreakerInterval:    time.Minute,
			BreakerTimeout:     30 * time.Second,
			BreakerFailures:    3,
		},
		Places: PlacesConfig{
			Path:          "/data/places.json",
			PageSize:      50,
			Watch:         true,
			WatchDebounce: 250 * time.Millisecond,
			CellSizeKm:    2,
		},
		Defaults: registry.DefaultAttributeDefaults(),
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Bridge: BridgeConfig{
			MessagesPerSecond: 20,
			Burst:             40,
			MaxMessageBytes:   64 << 10,
			PongWait:          60 * time.Second,
			WriteWait:         10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the optional config file and the
// environment, in that order of precedence (ENV > File > Defaults), and
// validates the result.
func Load() (*Config, error) {
	return LoadFile(FindConfigFile())
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MAPS_API_KEY -> maps.api_key, PLACES_PAGE_SIZE -> places.page_size
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// FindConfigFile returns CONFIG_PATH if it exists, else the first existing
// entry of DefaultConfigPaths, else "".
func FindConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as
// strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"defaults.grooming_services",
	"defaults.grooming_pet_types",
	"defaults.cafe_amenities",
	"defaults.hospital_specialties",
	"defaults.hotel_pet_amenities",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		// An explicitly empty variable clears the list.
		trimmed := []string{}
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	"maps_api_key":              "maps.api_key",
	"maps_load_timeout":         "maps.load_timeout",
	"maps_default_latitude":     "maps.default_latitude",
	"maps_default_longitude":    "maps.default_longitude",
	"maps_breaker_max_requests": "maps.breaker_max_requests",
	"maps_breaker_interval":     "maps.breaker_interval",
	"maps_breaker_timeout":      "maps.breaker_timeout",
	"maps_breaker_failures":     "maps.breaker_failures",

	"places_path":           "places.path",
	"places_page_size":      "places.page_size",
	"places_watch":          "places.watch",
	"places_watch_debounce": "places.watch_debounce",
	"places_cell_size_km":   "places.cell_size_km",

	"default_grooming_services":    "defaults.grooming_services",
	"default_grooming_pet_types":   "defaults.grooming_pet_types",
	"default_grooming_price_range": "defaults.grooming_price_range",
	"default_cafe_amenities":       "defaults.cafe_amenities",
	"default_hospital_specialties": "defaults.hospital_specialties",
	"default_hotel_pet_amenities":  "defaults.hotel_pet_amenities",
	"default_hotel_price_range":    "defaults.hotel_price_range",

	"cache_enabled": "cache.enabled",
	"cache_ttl":     "cache.ttl",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"bridge_messages_per_second": "bridge.messages_per_second",
	"bridge_burst":               "bridge.burst",
	"bridge_max_message_bytes":   "bridge.max_message_bytes",
	"bridge_pong_wait":           "bridge.pong_wait",
	"bridge_write_wait":          "bridge.write_wait",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are ignored, so unrelated environment
// does not leak into the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchFile calls callback whenever the file at path changes. Watch errors
// are dropped; the callback only fires on successful change events.
func WatchFile(path string, callback func()) (unwatch func() error, err error) {
	provider := file.Provider(path)

	err = provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
	if err != nil {
		return nil, err
	}
	return provider.Unwatch, nil
}
