// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package cache

import (
	"math"
	"testing"

	"github.com/tomtom215/pawmap/internal/models"
)

var (
	cityHall = models.LatLng{Lat: 37.5665, Lng: 126.9780}
	gangnam  = models.LatLng{Lat: 37.4979, Lng: 127.0276} // ~8.8 km from city hall
	hongdae  = models.LatLng{Lat: 37.5563, Lng: 126.9236} // ~4.9 km
	busan    = models.LatLng{Lat: 35.1796, Lng: 129.0756} // ~325 km
)

func TestHaversine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     models.LatLng
		min, max float64
	}{
		{"same point", cityHall, cityHall, 0, 0.001},
		{"seoul to busan", cityHall, busan, 320, 330},
		{"city hall to gangnam", cityHall, gangnam, 8, 10},
	}
	for _, tt := range tests {
		if d := Haversine(tt.a, tt.b); d < tt.min || d > tt.max {
			t.Errorf("%s: Haversine = %.2f, want [%v, %v]", tt.name, d, tt.min, tt.max)
		}
	}
}

func TestSpatialGrid_Nearby(t *testing.T) {
	t.Parallel()

	g := NewSpatialGrid(2)
	g.Insert("gangnam", gangnam, "g")
	g.Insert("hongdae", hongdae, "h")
	g.Insert("busan", busan, "b")
	if g.Insert("bad", models.LatLng{Lat: math.NaN()}, nil) {
		t.Error("Insert accepted NaN position")
	}
	if g.Size() != 3 {
		t.Fatalf("Size = %d, want 3", g.Size())
	}

	near := g.Nearby(cityHall, 10)
	if len(near) != 2 {
		t.Fatalf("Nearby(10km) = %d entries, want 2", len(near))
	}
	if near[0].ID != "hongdae" || near[1].ID != "gangnam" {
		t.Errorf("order = [%s %s], want closest first", near[0].ID, near[1].ID)
	}
	if near[0].DistanceKm <= 0 || near[0].DistanceKm > near[1].DistanceKm {
		t.Errorf("distances = %v, %v", near[0].DistanceKm, near[1].DistanceKm)
	}
	if near[0].Data != "h" {
		t.Errorf("Data = %v", near[0].Data)
	}

	if got := len(g.Nearby(cityHall, 6)); got != 1 {
		t.Errorf("Nearby(6km) = %d, want 1", got)
	}
	if got := len(g.Nearby(cityHall, 400)); got != 3 {
		t.Errorf("Nearby(400km) = %d, want 3", got)
	}
	if got := g.Nearby(models.LatLng{Lat: 100}, 10); got != nil {
		t.Errorf("Nearby(invalid center) = %v, want nil", got)
	}
}

func TestSpatialGrid_MoveAndRemove(t *testing.T) {
	t.Parallel()

	g := NewSpatialGrid(1)
	g.Insert("p", gangnam, nil)
	g.Insert("p", hongdae, nil)

	if g.Size() != 1 {
		t.Fatalf("Size = %d, want 1", g.Size())
	}
	near := g.Nearby(hongdae, 0.5)
	if len(near) != 1 || near[0].Position != hongdae {
		t.Errorf("moved entry not found at new position: %v", near)
	}
	if len(g.Nearby(gangnam, 0.5)) != 0 {
		t.Error("entry still indexed at old position")
	}

	if !g.Remove("p") || g.Remove("p") {
		t.Error("Remove should succeed once")
	}
	g.Insert("q", busan, nil)
	g.Clear()
	if g.Size() != 0 || len(g.Nearby(busan, 1)) != 0 {
		t.Error("Clear left entries behind")
	}
}
