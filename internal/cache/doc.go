// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

/*
Package cache provides the in-memory structures behind the HTTP surface.

# TTL cache

Cache stores filtered marker pages so repeated map requests with the same
category, filters and page skip the marker pipeline:

	c := cache.New("markers", 30*time.Second)
	defer c.Close()

	key := cache.GenerateKey("markers", params)
	if v, ok := c.Get(key); ok {
	    return v.(*MarkerPage), nil
	}

Expiry is checked lazily on Get and by a background sweep. Every Get is
counted in the cache_hits_total and cache_misses_total metrics under the
cache name. Clear is called whenever the place data is reloaded.

# Spatial grid

SpatialGrid answers "which places are within r km of here" without scanning
every place. Points are bucketed into fixed-size lat/lng cells; a query
checks only the cells overlapping the radius and then applies the haversine
distance:

	g := cache.NewSpatialGrid(2)
	g.Insert("h1", models.LatLng{Lat: 37.5665, Lng: 126.9780}, nil)
	near := g.Nearby(center, 5) // closest first
*/
package cache
