// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package cache

import (
	"math"
	"sort"
	"sync"

	"github.com/tomtom215/pawmap/internal/models"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.0
)

// SpatialGrid buckets points into fixed-size lat/lng cells so radius queries
// only look at nearby cells instead of every point.
//
//	Insert: O(1)
//	Nearby: O(k), k = points in the cells overlapping the radius
type SpatialGrid struct {
	mu       sync.RWMutex
	cells    map[cellKey][]*SpatialEntry
	cellSize float64
	entries  map[string]*SpatialEntry
}

type cellKey struct {
	X, Y int
}

// SpatialEntry is one indexed point.
type SpatialEntry struct {
	ID       string
	Position models.LatLng
	Data     any
	// DistanceKm is filled in by Nearby.
	DistanceKm float64
	cell       cellKey
}

// NewSpatialGrid returns a grid with cells of roughly cellSizeKm. Place
// lookups work well with 1-5 km cells; non-positive sizes default to 2 km.
func NewSpatialGrid(cellSizeKm float64) *SpatialGrid {
	if cellSizeKm <= 0 {
		cellSizeKm = 2
	}
	return &SpatialGrid{
		cells:    make(map[cellKey][]*SpatialEntry),
		cellSize: cellSizeKm / kmPerDegree,
		entries:  make(map[string]*SpatialEntry),
	}
}

func (g *SpatialGrid) keyFor(p models.LatLng) cellKey {
	lng := p.Lng
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return cellKey{
		X: int(math.Floor(lng / g.cellSize)),
		Y: int(math.Floor(p.Lat / g.cellSize)),
	}
}

// Insert adds or moves the entry with id. Out-of-range positions are
// ignored and reported as false.
func (g *SpatialGrid) Insert(id string, pos models.LatLng, data any) bool {
	if !pos.InRange() {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[id]; ok {
		g.removeFromCellLocked(existing)
	}

	e := &SpatialEntry{ID: id, Position: pos, Data: data, cell: g.keyFor(pos)}
	g.cells[e.cell] = append(g.cells[e.cell], e)
	g.entries[id] = e
	return true
}

// Remove deletes the entry with id.
func (g *SpatialGrid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[id]
	if !ok {
		return false
	}
	g.removeFromCellLocked(e)
	delete(g.entries, id)
	return true
}

func (g *SpatialGrid) removeFromCellLocked(e *SpatialEntry) {
	cell := g.cells[e.cell]
	for i, other := range cell {
		if other.ID == e.ID {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, e.cell)
		return
	}
	g.cells[e.cell] = cell
}

// Nearby returns copies of the entries within radiusKm of center, closest
// first. Ties keep ID order.
func (g *SpatialGrid) Nearby(center models.LatLng, radiusKm float64) []SpatialEntry {
	if !center.InRange() || radiusKm < 0 || math.IsNaN(radiusKm) {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	// Longitude cells shrink towards the poles.
	spanY := int(math.Ceil(radiusKm/kmPerDegree/g.cellSize)) + 1
	cosLat := math.Max(math.Cos(center.Lat*math.Pi/180), 0.01)
	spanX := int(math.Ceil(radiusKm/(kmPerDegree*cosLat)/g.cellSize)) + 1
	maxX := int(math.Ceil(360 / g.cellSize))
	if spanX > maxX {
		spanX = maxX
	}
	origin := g.keyFor(center)

	var out []SpatialEntry
	seen := make(map[cellKey]bool)
	for dx := -spanX; dx <= spanX; dx++ {
		for dy := -spanY; dy <= spanY; dy++ {
			k := cellKey{X: origin.X + dx, Y: origin.Y + dy}
			if seen[k] {
				continue
			}
			seen[k] = true
			for _, e := range g.cells[k] {
				d := Haversine(center, e.Position)
				if d <= radiusKm {
					c := *e
					c.DistanceKm = d
					out = append(out, c)
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Size returns the number of indexed entries.
func (g *SpatialGrid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Clear removes every entry.
func (g *SpatialGrid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells = make(map[cellKey][]*SpatialEntry)
	g.entries = make(map[string]*SpatialEntry)
}

// Haversine returns the great-circle distance between a and b in km.
func Haversine(a, b models.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
