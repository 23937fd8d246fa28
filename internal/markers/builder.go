// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package markers turns raw place records into validated, typed markers.
//
// The pipeline runs four steps per record:
//
//  1. Validation: records without an id, a name, or finite in-range numeric
//     coordinates are discarded with one warning each. A bad record never
//     aborts the batch.
//  2. Attribute extraction: category fields are read from the payload with
//     total defaulting, so every attribute is present afterwards.
//  3. Priority assignment (see Priority).
//  4. Popup generation (see BuildPopup).
//
// Output order equals the input order of the surviving records, and the
// pipeline can be rerun on every new batch of a paginated source.
package markers

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/pawmap/internal/logging"
	"github.com/tomtom215/pawmap/internal/metrics"
	"github.com/tomtom215/pawmap/internal/models"
	"github.com/tomtom215/pawmap/internal/registry"
	"github.com/tomtom215/pawmap/internal/validation"
)

// Discard reasons, used as the metric label and log field.
const (
	ReasonMissingID          = "missing_id"
	ReasonMissingName        = "missing_name"
	ReasonInvalidCoordinates = "invalid_coordinates"
)

// Builder runs the transform pipeline with a fixed set of attribute defaults.
// It holds no per-batch state and is safe for concurrent use.
type Builder struct {
	defaults registry.AttributeDefaults
	logger   zerolog.Logger
}

// NewBuilder returns a Builder using defaults for missing payload fields.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBuilder(defaults registry.AttributeDefaults, logger zerolog.Logger) *Builder {
	return &Builder{defaults: defaults, logger: logger}
}

// Build runs the pipeline with the built-in defaults and the global logger.
func Build(records []models.PlaceRecord, category registry.Category) []models.Marker {
	return NewBuilder(registry.DefaultAttributeDefaults(), logging.Component("markers")).Build(records, category)
}

// Build converts records into markers of category. Unknown categories are
// treated as grooming. The result is never nil.
func (b *Builder) Build(records []models.PlaceRecord, category registry.Category) []models.Marker {
	category = registry.Get(category).Category
	out := make([]models.Marker, 0, len(records))

	for i := range records {
		rec := &records[i]
		pos, reason := b.validate(rec)
		if reason != "" {
			metrics.RecordDroppedRecord(string(category), reason)
			b.logger.Warn().
				Str("category", string(category)).
				Str("record_id", rec.ID).
				Int("index", i).
				Str("reason", reason).
				Msg("Discarding place record")
			continue
		}

		attrs := extractAttributes(payload(rec.Payload), category, b.defaults)
		out = append(out, models.Marker{
			ID:         rec.ID,
			Position:   pos,
			Name:       rec.Name,
			Category:   category,
			Attributes: attrs,
			Priority:   Priority(attrs),
			Popup:      BuildPopup(rec.Name, attrs),
		})
	}

	if len(out) > 0 {
		metrics.MarkersBuilt.WithLabelValues(string(category)).Add(float64(len(out)))
	}
	return out
}

// validate returns the record position, or the discard reason of the first
// failing field.
func (b *Builder) validate(rec *models.PlaceRecord) (models.LatLng, string) {
	if verr := validation.ValidateStruct(rec); verr != nil {
		switch verr.Errors()[0].Field() {
		case "id":
			return models.LatLng{}, ReasonMissingID
		case "name":
			return models.LatLng{}, ReasonMissingName
		default:
			return models.LatLng{}, ReasonInvalidCoordinates
		}
	}
	pos, ok := rec.Coordinates()
	if !ok || !pos.InRange() {
		return models.LatLng{}, ReasonInvalidCoordinates
	}
	return pos, ""
}
