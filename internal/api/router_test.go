// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/bridge"
)

func TestRouter_NotFoundEnvelope(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, newTestHandler(t, nil), nil, nil)
	rec, env := get(t, r, "/api/v1/nothing-here", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v", env.Error)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, newTestHandler(t, nil), nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitWindow = time.Minute
	r := newTestRouter(t, newTestHandler(t, store), cfg, nil)

	rec, _ := get(t, r, "/api/v1/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request = %d", rec.Code)
	}

	rec, env := get(t, r, "/api/v1/categories/cafe", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "RATE_LIMITED" {
		t.Errorf("error = %+v", env.Error)
	}

	// Probes are exempt.
	for i := 0; i < 3; i++ {
		rec, _ = get(t, r, "/api/v1/health/live", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("health probe %d = %d", i, rec.Code)
		}
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://pawmap.test"}
	cfg.RateLimitDisabled = true
	r := newTestRouter(t, newTestHandler(t, nil), cfg, nil)

	tests := []struct {
		origin string
		want   string
	}{
		{"https://pawmap.test", "https://pawmap.test"},
		{"https://evil.test", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/categories", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %s: allow-origin = %q, want %q", tt.origin, got, tt.want)
		}
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, newTestHandler(t, nil), nil, nil)
	get(t, r, "/api/v1/health/live", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `pawmap_api_requests_total{endpoint="/api/v1/health/live"`) {
		t.Error("metrics output is missing the health request series")
	}
}

func TestRouter_GzipJSON(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, newTestHandler(t, nil), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", got)
	}
}

func TestRouter_MapBridgeThroughMiddleware(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)
	nop := zerolog.Nop()
	bs := bridge.NewServer(bridge.Config{
		AllowedOrigins: []string{"https://pawmap.test"},
		Logger:         &nop,
	}, store)

	hs := httptest.NewServer(newTestRouter(t, newTestHandler(t, store), nil, bs))
	t.Cleanup(func() {
		bs.Close()
		hs.Close()
	})

	url := "ws" + strings.TrimPrefix(hs.URL, "http") + "/api/v1/map/ws"
	header := http.Header{"Origin": {"https://pawmap.test"}, "Accept-Encoding": {"gzip"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("handshake status = %d", resp.StatusCode)
	}

	if err := conn.WriteJSON(bridge.Frame{Type: bridge.TypePing}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var f bridge.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatal(err)
	}
	if f.Type != bridge.TypePong {
		t.Errorf("frame type = %q, want pong", f.Type)
	}
}
