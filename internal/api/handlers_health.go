// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status        string                    `json:"status"`
	DataVersion   uint64                    `json:"data_version"`
	Places        map[registry.Category]int `json:"places,omitempty"`
	MapPages      int                       `json:"map_pages"`
	UptimeSeconds float64                   `json:"uptime_seconds"`
}

// Live reports that the process is serving requests.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     HealthStatus{Status: "alive", MapPages: h.mapPages(), UptimeSeconds: time.Since(h.started).Seconds()},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// Ready reports whether place data has been loaded.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.store.Version() == 0 {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Place data not loaded", nil)
		return
	}

	counts := make(map[registry.Category]int, len(registry.All()))
	for _, c := range registry.All() {
		counts[c] = h.store.Count(c)
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: HealthStatus{
			Status:        "ready",
			DataVersion:   h.store.Version(),
			Places:        counts,
			MapPages:      h.mapPages(),
			UptimeSeconds: time.Since(h.started).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

func (h *Handler) mapPages() int {
	if h.pages == nil {
		return 0
	}
	return h.pages()
}
