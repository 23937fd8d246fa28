// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package places

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

const sampleDoc = `{
  "cafe": [
    {"id": "c1", "name": "Bark Brew", "lat": 37.5563, "lng": 126.9236, "isOpen": true},
    {"id": "c2", "name": "Meow Latte", "latitude": 37.4979, "longitude": 127.0276},
    {"id": "c3", "name": "Nowhere Cafe", "lat": "north", "lng": 127.0},
    {"id": 4, "name": "Numbered Cafe", "lat": 35.1796, "lng": 129.0756}
  ],
  "Hospital": [
    {"id": "h1", "name": "Seoul Animal Medical Center", "lat": 37.5665, "lng": 126.978, "payload": {"isEmergency": true}}
  ],
  "aquarium": [
    {"id": "a1", "name": "Fish World", "lat": 37.5, "lng": 127.0}
  ]
}`

func writeDoc(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "places.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	s, err := OpenFile(writeDoc(t, t.TempDir(), sampleDoc))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		category registry.Category
		want     int
	}{
		{registry.Cafe, 4},
		{registry.Hospital, 1},
		{registry.Grooming, 0},
		{registry.Hotel, 0},
	}
	for _, tt := range tests {
		if got := s.Count(tt.category); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.category, got, tt.want)
		}
	}

	p, err := s.Page(context.Background(), registry.Hospital, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if p.Records[0].Payload["isEmergency"] != true {
		t.Errorf("payload = %v", p.Records[0].Payload)
	}
}

func TestOpenFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := OpenFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := OpenFile(writeDoc(t, dir, `{"cafe": {`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestFileStore_Page(t *testing.T) {
	t.Parallel()

	s, err := OpenFile(writeDoc(t, t.TempDir(), sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		name     string
		offset   int
		limit    int
		wantIDs  []string
		wantNext int
	}{
		{"first page", 0, 2, []string{"c1", "c2"}, 2},
		{"last page", 2, 2, []string{"c3", "4"}, -1},
		{"short tail", 3, 10, []string{"4"}, -1},
		{"past the end", 9, 2, []string{}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Page(ctx, registry.Cafe, tt.offset, tt.limit)
			if err != nil {
				t.Fatal(err)
			}
			if p.Total != 4 || p.Next != tt.wantNext {
				t.Errorf("Total = %d, Next = %d, want 4, %d", p.Total, p.Next, tt.wantNext)
			}
			if len(p.Records) != len(tt.wantIDs) {
				t.Fatalf("records = %d, want %d", len(p.Records), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if p.Records[i].ID != id {
					t.Errorf("record %d = %q, want %q", i, p.Records[i].ID, id)
				}
			}
		})
	}

	if _, err := s.Page(ctx, registry.Cafe, -1, 2); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("negative offset err = %v", err)
	}
	if _, err := s.Page(ctx, registry.Cafe, 0, 0); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("zero limit err = %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Page(canceled, registry.Cafe, 0, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled err = %v", err)
	}
}

func TestStream(t *testing.T) {
	t.Parallel()

	s, err := OpenFile(writeDoc(t, t.TempDir(), sampleDoc))
	if err != nil {
		t.Fatal(err)
	}

	var batches [][]string
	err = Stream(context.Background(), s, registry.Cafe, 3, func(p Page) error {
		ids := make([]string, len(p.Records))
		for i := range p.Records {
			ids[i] = p.Records[i].ID
		}
		batches = append(batches, ids)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 2 || len(batches[0]) != 3 || len(batches[1]) != 1 {
		t.Errorf("batches = %v", batches)
	}

	stop := errors.New("stop")
	calls := 0
	err = Stream(context.Background(), s, registry.Cafe, 1, func(Page) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestFileStore_Nearby(t *testing.T) {
	t.Parallel()

	s, err := OpenFile(writeDoc(t, t.TempDir(), sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	center := models.LatLng{Lat: 37.5665, Lng: 126.9780}

	near, err := s.Nearby(context.Background(), registry.Cafe, center, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(near) != 2 || near[0].Record.ID != "c1" || near[1].Record.ID != "c2" {
		t.Fatalf("Nearby = %+v", near)
	}

	limited, _ := s.Nearby(context.Background(), registry.Cafe, center, 500, 1)
	if len(limited) != 1 || limited[0].Record.ID != "c1" {
		t.Errorf("limited = %+v", limited)
	}

	none, _ := s.Nearby(context.Background(), registry.Hotel, center, 10, 0)
	if none == nil || len(none) != 0 {
		t.Errorf("empty category = %v, want empty non-nil", none)
	}
}

func TestFileStore_Reload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDoc(t, dir, sampleDoc)
	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var hooks atomic.Int32
	s.OnReload(func() { hooks.Add(1) })
	v := s.Version()

	writeDoc(t, dir, `{"hotel": [{"id": "t1", "name": "Paw Inn", "lat": 33.5, "lng": 126.5}]}`)
	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if s.Count(registry.Hotel) != 1 || s.Count(registry.Cafe) != 0 {
		t.Errorf("counts after reload: hotel=%d cafe=%d", s.Count(registry.Hotel), s.Count(registry.Cafe))
	}
	if s.Version() != v+1 || hooks.Load() != 1 {
		t.Errorf("version = %d (was %d), hooks = %d", s.Version(), v, hooks.Load())
	}

	writeDoc(t, dir, `not json`)
	if err := s.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if s.Count(registry.Hotel) != 1 || hooks.Load() != 1 {
		t.Error("failed reload replaced data or ran hooks")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDoc(t, dir, sampleDoc)
	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	v := s.Version()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := NewWatcher(s, 10*time.Millisecond)
	go func() { done <- w.Serve(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeDoc(t, dir, `{"grooming": [{"id": "g1", "name": "Fluffy Cuts", "lat": 37.5, "lng": 127.0}]}`)

	deadline := time.Now().Add(5 * time.Second)
	for s.Version() == v {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not reload the store")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if s.Count(registry.Grooming) != 1 {
		t.Errorf("grooming count = %d, want 1", s.Count(registry.Grooming))
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if w.String() != "places-watcher" {
		t.Errorf("String() = %q", w.String())
	}
}
