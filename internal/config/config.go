// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/pawmap/internal/registry"
)

// Config holds all application configuration.
//
// Configuration is loaded in three layers, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file (CONFIG_PATH or one of DefaultConfigPaths)
//  3. Environment variables listed in envTransformFunc
//
// The maps credential is deliberately not required: a missing key is a
// runtime condition that sends every view to the fallback renderer, not a
// startup error.
type Config struct {
	Maps     MapsConfig                  `koanf:"maps"`
	Places   PlacesConfig                `koanf:"places"`
	Defaults registry.AttributeDefaults `koanf:"defaults"`
	Cache    CacheConfig                 `koanf:"cache"`
	Server   ServerConfig                `koanf:"server"`
	Bridge   BridgeConfig                `koanf:"bridge"`
	Security SecurityConfig              `koanf:"security"`
	Logging  LoggingConfig               `koanf:"logging"`
}

// MapsConfig configures the interactive map SDK.
type MapsConfig struct {
	APIKey           string        `koanf:"api_key"`
	LoadTimeout      time.Duration `koanf:"load_timeout"`
	DefaultLatitude  float64       `koanf:"default_latitude"`
	DefaultLongitude float64       `koanf:"default_longitude"`

	// Circuit breaker around SDK fetches. The breaker is shared by every
	// page so a dead SDK host is not retried once per visitor.
	BreakerMaxRequests uint32        `koanf:"breaker_max_requests"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerFailures    uint32        `koanf:"breaker_failures"`
}

// PlacesConfig configures the place data source.
type PlacesConfig struct {
	Path          string        `koanf:"path"`
	PageSize      int           `koanf:"page_size"`
	Watch         bool          `koanf:"watch"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
	CellSizeKm    float64       `koanf:"cell_size_km"`
}

// CacheConfig configures the marker response cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// BridgeConfig holds settings for the page websocket.
type BridgeConfig struct {
	MessagesPerSecond float64       `koanf:"messages_per_second"`
	Burst             int           `koanf:"burst"`
	MaxMessageBytes   int64         `koanf:"max_message_bytes"`
	PongWait          time.Duration `koanf:"pong_wait"`
	WriteWait         time.Duration `koanf:"write_wait"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error (default: info)
	Level string `koanf:"level"`
	// Format: json or console (default: json)
	Format string `koanf:"format"`
	// Caller adds file:line to log entries.
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
