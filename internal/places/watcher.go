// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package places

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/providers/file"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a FileStore whenever its file changes. It implements
// suture.Service and belongs in the data layer of the supervisor tree.
type Watcher struct {
	store    *FileStore
	debounce time.Duration
	name     string
}

// NewWatcher returns a watcher for store. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(store *FileStore, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{store: store, debounce: debounce, name: "places-watcher"}
}

// Serve implements suture.Service. It returns when ctx is canceled or the
// file can no longer be watched.
func (w *Watcher) Serve(ctx context.Context) error {
	provider := file.Provider(w.store.Path())
	changed := make(chan struct{}, 1)
	failed := make(chan error, 1)

	err := provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			select {
			case failed <- err:
			default:
			}
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("watch places file: %w", err)
	}
	defer func() { _ = provider.Unwatch() }()

	logger := w.store.logger
	logger.Info().Str("path", w.store.Path()).Msg("Watching place data for changes")

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case err := <-failed:
			return fmt.Errorf("watch places file: %w", err)
		case <-changed:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.store.Reload(); err != nil {
				logger.Error().Err(err).Msg("Place data reload failed, keeping previous data")
			}
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (w *Watcher) String() string {
	return w.name
}
