// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"net/http"
	"os"
	"reflect"
	"testing"
)

func TestHealth(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)

	t.Run("live", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t, newTestHandler(t, nil), nil, nil)
		rec, env := get(t, r, "/api/v1/health/live", nil)
		if rec.Code != http.StatusOK || env.Status != "success" {
			t.Fatalf("live = %d %q", rec.Code, env.Status)
		}
	})

	t.Run("ready with data", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t, newTestHandler(t, store), nil, nil)
		rec, env := get(t, r, "/api/v1/health/ready", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("ready = %d", rec.Code)
		}
		var hs HealthStatus
		decodeData(t, env, &hs)
		if hs.Status != "ready" || hs.DataVersion != 1 {
			t.Errorf("health = %+v", hs)
		}
		if hs.Places["cafe"] != 4 || hs.Places["hospital"] != 1 || hs.Places["hotel"] != 0 {
			t.Errorf("places = %v", hs.Places)
		}
	})

	t.Run("not ready without store", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t, newTestHandler(t, nil), nil, nil)
		rec, env := get(t, r, "/api/v1/health/ready", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("ready = %d, want 503", rec.Code)
		}
		if env.Error == nil || env.Error.Code != "SERVICE_UNAVAILABLE" {
			t.Errorf("error = %+v", env.Error)
		}
	})
}

func TestCategories(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)
	r := newTestRouter(t, newTestHandler(t, store), nil, nil)

	rec, env := get(t, r, "/api/v1/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var infos []struct {
		Category    string `json:"category"`
		DisplayName string `json:"display_name"`
		Places      int    `json:"places"`
		Filters     struct {
			Dimensions []struct {
				Name string `json:"name"`
			} `json:"dimensions"`
		} `json:"filters"`
	}
	decodeData(t, env, &infos)

	if len(infos) != 4 {
		t.Fatalf("categories = %d, want 4", len(infos))
	}
	for _, info := range infos {
		if info.DisplayName == "" || len(info.Filters.Dimensions) == 0 {
			t.Errorf("incomplete category %+v", info)
		}
		if info.Category == "cafe" && info.Places != 4 {
			t.Errorf("cafe places = %d, want 4", info.Places)
		}
	}
}

func TestCategory(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)
	r := newTestRouter(t, newTestHandler(t, store), nil, nil)

	tests := []struct {
		path     string
		wantCode int
		wantName string
	}{
		{"/api/v1/categories/hospital", http.StatusOK, "Animal Hospital"},
		{"/api/v1/categories/HOTEL", http.StatusOK, "Pet Hotel"},
		{"/api/v1/categories/aquarium", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			rec, env := get(t, r, tt.path, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				if env.Error == nil || env.Error.Code != "NOT_FOUND" {
					t.Errorf("error = %+v", env.Error)
				}
				return
			}
			var info struct {
				DisplayName string `json:"display_name"`
			}
			decodeData(t, env, &info)
			if info.DisplayName != tt.wantName {
				t.Errorf("display_name = %q, want %q", info.DisplayName, tt.wantName)
			}
		})
	}
}

func TestCategoryMarkers(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)
	r := newTestRouter(t, newTestHandler(t, store), nil, nil)

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantTotal int
		wantNext  int
	}{
		{"neutral filter drops invalid records", "", []string{"c1", "c2", "c3"}, 3, -1},
		{"open now", "?openNowOnly=true", []string{"c1", "c2"}, 2, -1},
		{"open now false is neutral", "?openNowOnly=false", []string{"c1", "c2", "c3"}, 3, -1},
		{"amenity any-of", "?amenities=wifi", []string{"c1", "c3"}, 2, -1},
		{"amenity list", "?amenities=parking,pet-menu", []string{"c2", "c3"}, 2, -1},
		{"combined", "?amenities=wifi&openNowOnly=1", []string{"c1"}, 1, -1},
		{"first page", "?limit=2", []string{"c1", "c2"}, 3, 2},
		{"second page", "?limit=2&offset=2", []string{"c3"}, 3, -1},
		{"past the end", "?offset=10", []string{}, 3, -1},
		{"other category params ignored", "?services=bath", []string{"c1", "c2", "c3"}, 3, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, env := get(t, r, "/api/v1/categories/cafe/markers"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
			}
			var body markersBody
			decodeData(t, env, &body)

			if got := body.ids(); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", got, tt.wantIDs)
			}
			if body.Pagination.Total != tt.wantTotal || body.Pagination.Next != tt.wantNext {
				t.Errorf("pagination = %+v, want total %d next %d", body.Pagination, tt.wantTotal, tt.wantNext)
			}
			if body.Category != "cafe" {
				t.Errorf("category = %q", body.Category)
			}
		})
	}
}

func TestCategoryMarkers_BadRequests(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)
	r := newTestRouter(t, newTestHandler(t, store), nil, nil)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantErr  string
	}{
		{"unknown amenity", "/api/v1/categories/cafe/markers?amenities=jacuzzi", http.StatusBadRequest, "INVALID_FILTER"},
		{"bad toggle", "/api/v1/categories/cafe/markers?openNowOnly=sometimes", http.StatusBadRequest, "INVALID_FILTER"},
		{"zero limit", "/api/v1/categories/cafe/markers?limit=0", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"huge limit", "/api/v1/categories/cafe/markers?limit=5000", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"negative offset", "/api/v1/categories/cafe/markers?offset=-1", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"non-numeric limit", "/api/v1/categories/cafe/markers?limit=ten", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"latitude out of range", "/api/v1/categories/cafe/markers?near=91,0", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed near", "/api/v1/categories/cafe/markers?near=seoul", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"radius without near", "/api/v1/categories/cafe/markers?radius_km=3", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"radius too large", "/api/v1/categories/cafe/markers?near=37.5,127&radius_km=500", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown category", "/api/v1/categories/aquarium/markers", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, env := get(t, r, tt.path, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.wantErr {
				t.Errorf("envelope = %+v error = %+v", env, env.Error)
			}
		})
	}
}

func TestCategoryMarkers_Near(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)
	r := newTestRouter(t, newTestHandler(t, store), nil, nil)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"tight radius", "?near=37.5563,126.9236&radius_km=1", []string{"c1"}},
		{"default radius", "?near=37.5446,127.0557", []string{"c2"}},
		{"radius just past neighbour", "?near=37.5446,127.0557&radius_km=6", []string{"c2", "c3"}},
		{"wide radius closest first", "?near=37.5446,127.0557&radius_km=20", []string{"c2", "c3", "c1"}},
		{"filtered", "?near=37.5446,127.0557&radius_km=20&amenities=wifi", []string{"c3", "c1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, env := get(t, r, "/api/v1/categories/cafe/markers"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
			}
			var body markersBody
			decodeData(t, env, &body)
			if got := body.ids(); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", got, tt.wantIDs)
			}
			prev := -1.0
			for _, m := range body.Markers {
				if m.DistanceKm == nil {
					t.Fatalf("%s: missing distance", m.ID)
				}
				if *m.DistanceKm < prev {
					t.Errorf("%s: distance %.3f after %.3f", m.ID, *m.DistanceKm, prev)
				}
				prev = *m.DistanceKm
			}
		})
	}
}

func TestCategoryMarkers_CacheFollowsDataVersion(t *testing.T) {
	t.Parallel()

	store, path := openStore(t, placesDoc)
	r := newTestRouter(t, newTestHandler(t, store), nil, nil)
	const target = "/api/v1/categories/hospital/markers"

	_, first := get(t, r, target, nil)
	if first.Metadata.Cached {
		t.Fatal("first response should not be cached")
	}
	_, second := get(t, r, target, nil)
	if !second.Metadata.Cached {
		t.Fatal("second response should be cached")
	}

	updated := `{"hospital": [
	  {"id": "h1", "name": "Seoul Animal Medical Center", "lat": 37.5665, "lng": 126.978},
	  {"id": "h2", "name": "Gangnam 24h Vet", "lat": 37.4979, "lng": 127.0276, "is24Hours": true}
	]}`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatal(err)
	}

	_, third := get(t, r, target, nil)
	if third.Metadata.Cached {
		t.Error("response after reload should not be cached")
	}
	var body markersBody
	decodeData(t, third, &body)
	if got := body.ids(); !reflect.DeepEqual(got, []string{"h1", "h2"}) {
		t.Errorf("ids after reload = %v", got)
	}
}

func TestCategoryMarkers_ETag(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t, placesDoc)
	r := newTestRouter(t, newTestHandler(t, store), nil, nil)
	const target = "/api/v1/categories/cafe/markers?openNowOnly=true"

	rec, _ := get(t, r, target, nil)
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	rec, _ = get(t, r, target, map[string]string{"If-None-Match": etag})
	if rec.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("304 body = %q", rec.Body.String())
	}

	rec, _ = get(t, r, "/api/v1/categories/cafe/markers", map[string]string{"If-None-Match": etag})
	if rec.Code != http.StatusOK {
		t.Errorf("different result set: status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("ETag") == etag {
		t.Error("different result sets share an ETag")
	}
}
