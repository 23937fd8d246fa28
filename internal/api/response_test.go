// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
		{"카페", "카페"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	a := generateETag([]byte(`{"a":1}`))
	if a != generateETag([]byte(`{"a":1}`)) {
		t.Error("ETag is not deterministic")
	}
	if a == generateETag([]byte(`{"a":2}`)) {
		t.Error("different bodies share an ETag")
	}
	if a[0] != '"' || a[len(a)-1] != '"' {
		t.Errorf("ETag %s is not quoted", a)
	}
}

func TestRespondError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondError(rec, http.StatusBadGateway, "UPSTREAM", "Upstream failed", errors.New("dial tcp: refused"))
	_, env := get(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusBadGateway, "UPSTREAM", "Upstream failed", errors.New("dial tcp: refused"))
	}), "/", nil)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}
	if env.Status != "error" || env.Error.Code != "UPSTREAM" || env.Error.Message != "Upstream failed" {
		t.Errorf("envelope = %+v / %+v", env, env.Error)
	}
	if string(env.Data) != "null" {
		t.Errorf("data = %s, want null", env.Data)
	}
}

func TestRespondSuccess_UnencodableData(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	respondSuccess(rec, req, map[string]float64{"x": math.NaN()}, time.Now(), false)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
