// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

/*
Package api exposes the marker pipeline and the map bridge over HTTP.

Routes:

	GET /api/v1/health/live                         process is up
	GET /api/v1/health/ready                        place data is loaded
	GET /api/v1/categories                          display config, filter schema, counts
	GET /api/v1/categories/{category}               one category
	GET /api/v1/categories/{category}/markers       filtered, paginated markers
	GET /api/v1/map/ws                              map bridge websocket
	GET /metrics                                    Prometheus metrics

The markers endpoint accepts the category's filter dimensions as query
parameters (services, petTypes, priceRanges, amenities, openNowOnly,
specialties, emergencyOnly, available24hOnly, petFriendly, petAmenities),
plus offset, limit, and optionally near=lat,lng with radius_km to restrict
results to a circle, closest first. Filtered marker lists are cached per
(category, filters, area, data version) for the configured TTL.

Every JSON response uses the models.APIResponse envelope.
*/
package api
