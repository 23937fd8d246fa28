// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/validation"
)

// sanitizeLogValue escapes control characters so request-derived values
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes response. An ETag already set by the caller is kept;
// otherwise one is derived from the body.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if w.Header().Get("ETag") == "" {
		w.Header().Set("ETag", generateETag(data))
	}
	if status == http.StatusOK {
		w.Header().Set("Cache-Control", "public, max-age=30")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess writes a success envelope. The ETag covers data only, so
// it is stable across responses whose metadata differs; a matching
// If-None-Match gets 304.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, start time.Time, cached bool) {
	payload, err := json.Marshal(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode response", err)
		return
	}

	etag := generateETag(payload)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "public, max-age=30")
		w.WriteHeader(http.StatusNotModified)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   json.RawMessage(payload),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// generateETag hashes data with FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondError writes an error envelope. err is logged, never sent.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondValidationError writes a 400 with the per-field details.
func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}
