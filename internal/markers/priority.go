// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package markers

import (
	"github.com/tomtom215/pawmap/internal/models"
)

// Display priorities. Higher values render larger and above lower ones.
const (
	PriorityDefault   = 0
	PriorityElevated  = 1
	PriorityEmergency = 2
)

// Priority computes the display priority from category attributes alone.
//
//	hospital  emergency → 2, 24h → 1
//	cafe      open now → 1
//	hotel     pets allowed → 1
//	grooming  always 0
func Priority(attrs models.Attributes) int {
	switch a := attrs.(type) {
	case *models.HospitalAttributes:
		switch {
		case a.IsEmergency:
			return PriorityEmergency
		case a.Is24Hours:
			return PriorityElevated
		}
	case *models.CafeAttributes:
		if a.IsOpen {
			return PriorityElevated
		}
	case *models.HotelAttributes:
		if a.PetPolicy.Allowed {
			return PriorityElevated
		}
	}
	return PriorityDefault
}
