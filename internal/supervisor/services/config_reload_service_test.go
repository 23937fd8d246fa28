// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/config"
)

// fakeWatch lets a test trigger change events by hand.
type fakeWatch struct {
	mu       sync.Mutex
	callback func()
	unwatch  int
}

func (f *fakeWatch) watch(_ string, cb func()) (func() error, error) {
	f.mu.Lock()
	f.callback = cb
	f.mu.Unlock()
	return func() error {
		f.mu.Lock()
		f.unwatch++
		f.mu.Unlock()
		return nil
	}, nil
}

func (f *fakeWatch) fire() {
	f.mu.Lock()
	cb := f.callback
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (f *fakeWatch) ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callback != nil
}

func TestConfigReloadService(t *testing.T) {
	t.Parallel()

	fw := &fakeWatch{}
	applied := make(chan string, 4)
	attempts := 0

	svc := NewConfigReloadService("config.yaml", func(c *config.Config) {
		applied <- c.Logging.Level
	})
	svc.logger = zerolog.Nop()
	svc.watch = fw.watch
	svc.load = func(string) (*config.Config, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("logging.level: invalid")
		}
		return &config.Config{Logging: config.LoggingConfig{Level: "debug"}}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for !fw.ready() {
		time.Sleep(5 * time.Millisecond)
	}

	// The first change fails to load and must not be applied.
	fw.fire()
	select {
	case level := <-applied:
		t.Fatalf("invalid config applied: %q", level)
	case <-time.After(100 * time.Millisecond):
	}

	fw.fire()
	select {
	case level := <-applied:
		if level != "debug" {
			t.Errorf("applied level = %q", level)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid config was not applied")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.unwatch != 1 {
		t.Errorf("unwatch calls = %d, want 1", fw.unwatch)
	}
}

func TestConfigReloadService_WatchError(t *testing.T) {
	t.Parallel()

	svc := NewConfigReloadService("missing.yaml", func(*config.Config) {})
	svc.logger = zerolog.Nop()
	svc.watch = func(string, func()) (func() error, error) {
		return nil, errors.New("no such file")
	}

	if err := svc.Serve(context.Background()); err == nil {
		t.Error("Serve() should fail when the file cannot be watched")
	}
}
