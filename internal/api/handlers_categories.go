// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/pawmap/internal/registry"
)

// CategoryInfo is a category's display config with its filter schema and
// the number of raw records loaded for it.
type CategoryInfo struct {
	registry.Config
	Filters registry.Schema `json:"filters"`
	Places  int             `json:"places"`
}

func (h *Handler) categoryInfo(c registry.Category) CategoryInfo {
	info := CategoryInfo{
		Config:  registry.Get(c),
		Filters: registry.FilterSchema(c),
	}
	if h.store != nil {
		info.Places = h.store.Count(c)
	}
	return info
}

// Categories lists every category in display order.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	all := registry.All()
	out := make([]CategoryInfo, 0, len(all))
	for _, c := range all {
		out = append(out, h.categoryInfo(c))
	}
	respondSuccess(w, r, out, start, false)
}

// Category returns one category.
func (h *Handler) Category(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c, ok := categoryParam(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, h.categoryInfo(c), start, false)
}
