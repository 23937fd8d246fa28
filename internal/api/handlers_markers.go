// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/pawmap/internal/cache"
	"github.com/tomtom215/pawmap/internal/filter"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/places"
	"github.com/tomtom215/pawmap/internal/registry"
	"github.com/tomtom215/pawmap/internal/validation"
)

const (
	maxLimit         = 500
	defaultRadiusKm  = 5.0
	markersCacheName = "markers"
)

// markersQuery holds the non-filter query parameters of the markers endpoint.
type markersQuery struct {
	Offset   int            `json:"offset" validate:"gte=0"`
	Limit    int            `json:"limit" validate:"gte=1,lte=500"`
	Near     *models.LatLng `json:"near"`
	RadiusKm float64        `json:"radius_km" validate:"finite,gte=0,lte=100"`
}

// MarkerResult is a marker with its distance from the near point, when one
// was given.
type MarkerResult struct {
	models.Marker
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// MarkersPage is the body of the markers endpoint.
type MarkersPage struct {
	Category   registry.Category     `json:"category"`
	Filters    filter.Set            `json:"filters"`
	Markers    []MarkerResult        `json:"markers"`
	Pagination models.PaginationInfo `json:"pagination"`
}

// markersKey identifies one cached filtered marker list.
type markersKey struct {
	Category registry.Category `json:"c"`
	Filters  filter.Set        `json:"f"`
	Near     *models.LatLng    `json:"n,omitempty"`
	RadiusKm float64           `json:"r,omitempty"`
	Version  uint64            `json:"v"`
}

// CategoryMarkers builds, filters and pages the markers of a category.
func (h *Handler) CategoryMarkers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Place data not loaded", nil)
		return
	}

	query := r.URL.Query()
	q, err := parseMarkersQuery(query, h.defaultLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidationError(w, verr)
		return
	}
	if q.Near != nil && q.RadiusKm == 0 {
		q.RadiusKm = defaultRadiusKm
	}

	set, err := filter.FromQuery(category, query)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error(), nil)
		return
	}

	results, cached, err := h.filteredMarkers(r.Context(), markersKey{
		Category: category,
		Filters:  set,
		Near:     q.Near,
		RadiusKm: q.RadiusKm,
		Version:  h.store.Version(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build markers", err)
		return
	}

	page := MarkersPage{
		Category: category,
		Filters:  set,
		Markers:  paginate(results, q.Offset, q.Limit),
		Pagination: models.PaginationInfo{
			Offset: q.Offset,
			Limit:  q.Limit,
			Total:  len(results),
			Next:   -1,
		},
	}
	if end := q.Offset + q.Limit; end < len(results) {
		page.Pagination.Next = end
	}
	respondSuccess(w, r, page, start, cached)
}

// filteredMarkers returns the cached list for key, building it at most once
// across concurrent requests.
func (h *Handler) filteredMarkers(ctx context.Context, key markersKey) ([]MarkerResult, bool, error) {
	cacheKey := cache.GenerateKey(markersCacheName, key)
	if h.cache != nil {
		if v, ok := h.cache.Get(cacheKey); ok {
			if results, ok := v.([]MarkerResult); ok {
				return results, true, nil
			}
		}
	}

	v, err, _ := h.builds.Do(cacheKey, func() (interface{}, error) {
		// Detached so one caller going away does not fail the others.
		results, err := h.buildMarkers(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		if h.cache != nil {
			h.cache.Set(cacheKey, results)
		}
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]MarkerResult), false, nil
}

func (h *Handler) buildMarkers(ctx context.Context, key markersKey) ([]MarkerResult, error) {
	if key.Near != nil {
		return h.buildNearby(ctx, key)
	}

	var built []models.Marker
	err := places.Stream(ctx, h.store, key.Category, h.streamSize, func(p places.Page) error {
		built = append(built, h.builder.Build(p.Records, key.Category)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stream %s records: %w", key.Category, err)
	}

	filtered := filter.Apply(built, key.Filters, key.Category)
	out := make([]MarkerResult, len(filtered))
	for i := range filtered {
		out[i] = MarkerResult{Marker: filtered[i]}
	}
	return out, nil
}

func (h *Handler) buildNearby(ctx context.Context, key markersKey) ([]MarkerResult, error) {
	near, err := h.store.Nearby(ctx, key.Category, *key.Near, key.RadiusKm, 0)
	if err != nil {
		return nil, fmt.Errorf("nearby %s records: %w", key.Category, err)
	}

	records := make([]models.PlaceRecord, len(near))
	distances := make(map[string]float64, len(near))
	for i := range near {
		records[i] = near[i].Record
		distances[near[i].Record.ID] = near[i].DistanceKm
	}

	filtered := filter.Apply(h.builder.Build(records, key.Category), key.Filters, key.Category)
	out := make([]MarkerResult, len(filtered))
	for i := range filtered {
		d := distances[filtered[i].ID]
		out[i] = MarkerResult{Marker: filtered[i], DistanceKm: &d}
	}
	return out, nil
}

func paginate(results []MarkerResult, offset, limit int) []MarkerResult {
	if offset >= len(results) {
		return []MarkerResult{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

// parseMarkersQuery reads offset, limit, near and radius_km. Range checks
// are left to the validator.
func parseMarkersQuery(q url.Values, defaultLimit int) (markersQuery, error) {
	out := markersQuery{Limit: defaultLimit}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return out, errors.New("offset must be an integer")
		}
		out.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return out, errors.New("limit must be an integer")
		}
		out.Limit = n
	}
	if v := q.Get("near"); v != "" {
		p, err := parseLatLng(v)
		if err != nil {
			return out, err
		}
		out.Near = &p
	}
	if v := q.Get("radius_km"); v != "" {
		if out.Near == nil {
			return out, errors.New("radius_km requires near")
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return out, errors.New("radius_km must be a number")
		}
		out.RadiusKm = f
	}
	return out, nil
}

func parseLatLng(s string) (models.LatLng, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return models.LatLng{}, errors.New("near must be lat,lng")
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return models.LatLng{}, errors.New("near latitude must be a number")
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return models.LatLng{}, errors.New("near longitude must be a number")
	}
	return models.LatLng{Lat: la, Lng: ln}, nil
}
