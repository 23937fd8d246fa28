// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/cache"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/places"
)

const placesDoc = `{
  "cafe": [
    {"id": "c1", "name": "Bark Brew", "lat": 37.5563, "lng": 126.9236, "isOpen": true, "amenities": ["wifi"]},
    {"id": "c2", "name": "Meow Latte", "lat": 37.5446, "lng": 127.0557, "isOpen": true, "amenities": ["parking"]},
    {"id": "c3", "name": "Closed Paws", "lat": 37.5133, "lng": 127.1001, "isOpen": false, "amenities": ["wifi", "pet-menu"]},
    {"id": "c4", "name": "Lost Cafe", "lat": 95.0, "lng": 127.0}
  ],
  "hospital": [
    {"id": "h1", "name": "Seoul Animal Medical Center", "lat": 37.5665, "lng": 126.978, "isEmergency": true}
  ]
}`

// envelope is models.APIResponse with Data left raw for per-test decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

type markerRow struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	DistanceKm *float64 `json:"distanceKm"`
}

type markersBody struct {
	Category   string                `json:"category"`
	Markers    []markerRow           `json:"markers"`
	Pagination models.PaginationInfo `json:"pagination"`
}

func (b markersBody) ids() []string {
	out := make([]string, len(b.Markers))
	for i, m := range b.Markers {
		out[i] = m.ID
	}
	return out
}

func openStore(t *testing.T, doc string) (*places.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := places.OpenFile(path, places.WithStoreLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	return s, path
}

func newTestHandler(t *testing.T, store Store) *Handler {
	t.Helper()
	nop := zerolog.Nop()
	c := cache.NewWithCleanup("markers_test", time.Minute, 0)
	t.Cleanup(c.Close)
	return NewHandler(HandlerConfig{
		Store:          store,
		Cache:          c,
		StreamPageSize: 2,
		Logger:         &nop,
	})
}

func newTestRouter(t *testing.T, h *Handler, mw *ChiMiddlewareConfig, bridge http.Handler) http.Handler {
	t.Helper()
	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.RateLimitDisabled = true
	}
	return NewRouter(h, NewChiMiddleware(mw), bridge).SetupChi()
}

func get(t *testing.T, h http.Handler, target string, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Code != http.StatusNotModified && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("GET %s: decode body %q: %v", target, rec.Body.String(), err)
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}
