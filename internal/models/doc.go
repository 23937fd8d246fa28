// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

/*
Package models defines the data structures that flow through the map engine.

Key Components:

  - PlaceRecord: raw place data as delivered by the data backend. Identity,
    optional coordinates and a free-form payload blob.
  - Marker: the normalized, immutable representation of one place after
    validation and attribute defaulting.
  - Attributes: the closed set of category-specific attribute shapes
    (GroomingAttributes, CafeAttributes, HospitalAttributes, HotelAttributes).
  - LatLng, Size, Point: geometry value types shared with the mapping SDK.

Markers are created fresh on every data or filter pass and are never mutated
in place; a changed place produces a new Marker that replaces the old one by ID.
*/
package models
