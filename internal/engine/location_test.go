// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/pawmap/internal/engine"
	"github.com/tomtom215/pawmap/internal/maperr"
	"github.com/tomtom215/pawmap/internal/models"
)

func TestResolveCenter(t *testing.T) {
	t.Parallel()

	fallback := models.LatLng{Lat: 37.5665, Lng: 126.9780}
	user := models.LatLng{Lat: 35.1796, Lng: 129.0756}

	tests := []struct {
		name     string
		loc      engine.Locator
		want     models.LatLng
		wantUser bool
		reported bool
	}{
		{name: "no locator", loc: nil, want: fallback},
		{name: "fixed", loc: &engine.FixedLocator{Position: user}, want: user, wantUser: true},
		{name: "nil fixed", loc: (*engine.FixedLocator)(nil), want: fallback, reported: true},
		{
			name: "permission denied",
			loc: engine.LocatorFunc(func(context.Context) (models.LatLng, error) {
				return models.LatLng{}, errors.New("permission denied")
			}),
			want:     fallback,
			reported: true,
		},
		{
			name: "out of range",
			loc: engine.LocatorFunc(func(context.Context) (models.LatLng, error) {
				return models.LatLng{Lat: 91, Lng: 0}, nil
			}),
			want:     fallback,
			reported: true,
		},
		{
			name: "panic",
			loc: engine.LocatorFunc(func(context.Context) (models.LatLng, error) {
				panic("sensor gone")
			}),
			want:     fallback,
			reported: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &maperr.Recorder{}
			got, usedUser := engine.ResolveCenter(context.Background(), tt.loc, fallback, rec)
			if got != tt.want || usedUser != tt.wantUser {
				t.Errorf("ResolveCenter = (%v, %v), want (%v, %v)", got, usedUser, tt.want, tt.wantUser)
			}

			kinds := rec.Kinds()
			if tt.reported {
				if len(kinds) != 1 || kinds[0] != maperr.GeolocationFailed {
					t.Errorf("reported = %v, want [geolocation_failed]", kinds)
				}
			} else if len(kinds) != 0 {
				t.Errorf("unexpected reports %v", kinds)
			}
		})
	}
}

func TestResolveCenter_NilSink(t *testing.T) {
	t.Parallel()

	fallback := models.LatLng{Lat: 1, Lng: 2}
	got, _ := engine.ResolveCenter(context.Background(), (*engine.FixedLocator)(nil), fallback, nil)
	if got != fallback {
		t.Errorf("got %v, want %v", got, fallback)
	}
}
