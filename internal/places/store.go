// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package places serves raw place records to the map engine.
//
// Records are delivered in pages so views can render progressively as data
// arrives. Records are passed through untouched: validation and attribute
// extraction belong to the marker pipeline.
package places

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/cache"
	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/metrics"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

// ErrInvalidPage is returned for negative offsets or non-positive limits.
var ErrInvalidPage = errors.New("places: invalid page")

// Page is one batch of records for a category.
type Page struct {
	Category registry.Category    `json:"category"`
	Records  []models.PlaceRecord `json:"records"`
	Offset   int                  `json:"offset"`
	Total    int                  `json:"total"`
	// Next is the offset of the following page, or -1 after the last one.
	Next int `json:"next"`
}

// Nearby is a record with its distance from a query point.
type Nearby struct {
	Record     models.PlaceRecord `json:"record"`
	DistanceKm float64            `json:"distanceKm"`
}

// Source supplies place records.
type Source interface {
	Page(ctx context.Context, category registry.Category, offset, limit int) (Page, error)
}

// Stream calls fn with successive pages of category until the source is
// exhausted, fn returns an error, or ctx is done.
func Stream(ctx context.Context, src Source, category registry.Category, pageSize int, fn func(Page) error) error {
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := src.Page(ctx, category, offset, pageSize)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if p.Next < 0 {
			return nil
		}
		offset = p.Next
	}
}

type snapshot struct {
	records map[registry.Category][]models.PlaceRecord
	grids   map[registry.Category]*cache.SpatialGrid
}

// FileStore serves records from a JSON document of the form
//
//	{"grooming": [...], "cafe": [...], "hospital": [...], "hotel": [...]}
//
// Unknown category keys are skipped with a warning. Reload swaps the data
// atomically; readers never see a half-loaded document.
type FileStore struct {
	path       string
	cellSizeKm float64
	logger     zerolog.Logger

	mu       sync.RWMutex
	snap     snapshot
	version  uint64
	onReload []func()
}

// StoreOption configures a FileStore.
type StoreOption func(*FileStore)

// WithCellSize sets the spatial index cell size used by Nearby.
func WithCellSize(km float64) StoreOption {
	return func(s *FileStore) { s.cellSizeKm = km }
}

// WithStoreLogger replaces the store logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithStoreLogger(logger zerolog.Logger) StoreOption {
	return func(s *FileStore) { s.logger = logger }
}

// OpenFile reads path and returns a store serving its records.
func OpenFile(path string, opts ...StoreOption) (*FileStore, error) {
	s := &FileStore{
		path:       path,
		cellSizeKm: 2,
		logger:     logging.Component("places"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Reload re-reads the backing file. On failure the previous data stays in
// place and the error is returned.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read places file: %w", err)
	}
	snap, err := s.parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = snap
	s.version++
	hooks := append([]func(){}, s.onReload...)
	s.mu.Unlock()

	total := 0
	for _, c := range registry.All() {
		n := len(snap.records[c])
		total += n
		metrics.PlacesLoaded.WithLabelValues(string(c)).Set(float64(n))
	}
	s.logger.Info().Str("path", s.path).Int("records", total).Msg("Place data loaded")

	for _, fn := range hooks {
		fn()
	}
	return nil
}

func (s *FileStore) parse(data []byte) (snapshot, error) {
	var doc map[string][]models.PlaceRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return snapshot{}, fmt.Errorf("decode places file: %w", err)
	}

	snap := snapshot{
		records: make(map[registry.Category][]models.PlaceRecord, len(doc)),
		grids:   make(map[registry.Category]*cache.SpatialGrid, len(doc)),
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		c, ok := registry.Parse(key)
		if !ok {
			s.logger.Warn().Str("key", key).Msg("Skipping unknown place category")
			continue
		}
		recs := append(snap.records[c], doc[key]...)
		snap.records[c] = recs

		grid := cache.NewSpatialGrid(s.cellSizeKm)
		for i := range recs {
			if pos, ok := recs[i].Coordinates(); ok && recs[i].ID != "" {
				grid.Insert(recs[i].ID, pos, i)
			}
		}
		snap.grids[c] = grid
	}
	return snap, nil
}

// OnReload registers fn to run after every successful Reload.
func (s *FileStore) OnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Version increases on every successful Reload.
func (s *FileStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Count returns the number of records for category.
func (s *FileStore) Count(category registry.Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.records[registry.Get(category).Category])
}

// Page implements Source.
func (s *FileStore) Page(ctx context.Context, category registry.Category, offset, limit int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if offset < 0 || limit <= 0 {
		return Page{}, fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidPage, offset, limit)
	}
	category = registry.Get(category).Category

	s.mu.RLock()
	all := s.snap.records[category]
	s.mu.RUnlock()

	p := Page{Category: category, Offset: offset, Total: len(all), Next: -1}
	if offset >= len(all) {
		p.Records = []models.PlaceRecord{}
		return p, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	p.Records = append([]models.PlaceRecord(nil), all[offset:end]...)
	if end < len(all) {
		p.Next = end
	}
	return p, nil
}

// Nearby returns up to limit records of category within radiusKm of center,
// closest first. A non-positive limit means no limit.
func (s *FileStore) Nearby(ctx context.Context, category registry.Category, center models.LatLng, radiusKm float64, limit int) ([]Nearby, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	category = registry.Get(category).Category

	s.mu.RLock()
	grid := s.snap.grids[category]
	recs := s.snap.records[category]
	s.mu.RUnlock()

	out := []Nearby{}
	if grid == nil {
		return out, nil
	}
	for _, e := range grid.Nearby(center, radiusKm) {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, Nearby{Record: recs[e.Data.(int)], DistanceKm: e.DistanceKm})
	}
	return out, nil
}
