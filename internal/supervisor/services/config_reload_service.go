// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/config"
	"github.com/tomtom215/pawmap/internal/logging"
)

// ConfigReloadService re-reads the config file when it changes and hands
// the validated result to apply. Invalid files are logged and skipped so
// the running settings stay in effect.
//
// Only settings that can change at runtime should be applied; listeners,
// timeouts and the places path need a restart.
type ConfigReloadService struct {
	path   string
	apply  func(*config.Config)
	load   func(string) (*config.Config, error)
	watch  func(string, func()) (func() error, error)
	logger zerolog.Logger
	name   string
}

// NewConfigReloadService watches path.
func NewConfigReloadService(path string, apply func(*config.Config)) *ConfigReloadService {
	return &ConfigReloadService{
		path:   path,
		apply:  apply,
		load:   config.LoadFile,
		watch:  config.WatchFile,
		logger: logging.Component("config"),
		name:   "config-watcher",
	}
}

// Serve implements suture.Service.
func (s *ConfigReloadService) Serve(ctx context.Context) error {
	changed := make(chan struct{}, 1)
	unwatch, err := s.watch(s.path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	defer func() { _ = unwatch() }()

	s.logger.Info().Str("path", s.path).Msg("Watching config file for changes")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
			cfg, err := s.load(s.path)
			if err != nil {
				s.logger.Error().Err(err).Msg("Config reload rejected, keeping current settings")
				continue
			}
			s.apply(cfg)
			s.logger.Info().Str("path", s.path).Msg("Config reloaded")
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (s *ConfigReloadService) String() string {
	return s.name
}
