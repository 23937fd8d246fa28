// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/pawmap/internal/registry"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMaps(); err != nil {
		return err
	}

	if err := c.validatePlaces(); err != nil {
		return err
	}

	if err := c.validateDefaults(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateBridge(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateMaps() error {
	lat, lng := c.Maps.DefaultLatitude, c.Maps.DefaultLongitude
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("MAPS_DEFAULT_LATITUDE must be between -90 and 90, got %v", lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("MAPS_DEFAULT_LONGITUDE must be between -180 and 180, got %v", lng)
	}
	if c.Maps.LoadTimeout <= 0 {
		return fmt.Errorf("MAPS_LOAD_TIMEOUT must be positive")
	}
	if c.Maps.BreakerFailures == 0 {
		return fmt.Errorf("MAPS_BREAKER_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validatePlaces() error {
	if c.Places.Path == "" {
		return fmt.Errorf("PLACES_PATH is required")
	}
	if c.Places.PageSize < 1 || c.Places.PageSize > 1000 {
		return fmt.Errorf("PLACES_PAGE_SIZE must be between 1 and 1000, got %d", c.Places.PageSize)
	}
	if c.Places.CellSizeKm < 0 {
		return fmt.Errorf("PLACES_CELL_SIZE_KM must not be negative")
	}
	return nil
}

// validateDefaults rejects substitution values outside the filter domains,
// since a record defaulted to such a value could never be matched by a filter.
func (c *Config) validateDefaults() error {
	d := c.Defaults
	checks := []struct {
		env    string
		values []string
		domain []string
	}{
		{"DEFAULT_GROOMING_SERVICES", d.GroomingServices, registry.GroomingServiceValues},
		{"DEFAULT_GROOMING_PET_TYPES", d.GroomingPetTypes, registry.PetTypeValues},
		{"DEFAULT_GROOMING_PRICE_RANGE", nonEmpty(d.GroomingPriceRange), registry.PriceRangeValues},
		{"DEFAULT_CAFE_AMENITIES", d.CafeAmenities, registry.CafeAmenityValues},
		{"DEFAULT_HOSPITAL_SPECIALTIES", d.HospitalSpecialties, registry.HospitalSpecialtyValues},
		{"DEFAULT_HOTEL_PET_AMENITIES", d.HotelPetAmenities, registry.HotelPetAmenityValues},
		{"DEFAULT_HOTEL_PRICE_RANGE", nonEmpty(d.HotelPriceRange), registry.PriceRangeValues},
	}
	for _, chk := range checks {
		for _, v := range chk.values {
			if !contains(chk.domain, v) {
				return fmt.Errorf("%s: unknown value %q (valid: %s)", chk.env, v, strings.Join(chk.domain, ", "))
			}
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateBridge() error {
	if c.Bridge.MessagesPerSecond <= 0 {
		return fmt.Errorf("BRIDGE_MESSAGES_PER_SECOND must be positive")
	}
	if c.Bridge.Burst < 1 {
		return fmt.Errorf("BRIDGE_BURST must be at least 1")
	}
	if c.Bridge.MaxMessageBytes < 1024 {
		return fmt.Errorf("BRIDGE_MAX_MESSAGE_BYTES must be at least 1024")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 when rate limiting is enabled")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

func (c *Config) validateLogLevel() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error (got %q)", c.Logging.Level)
}

func (c *Config) validateLogFormat() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	}
	return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
