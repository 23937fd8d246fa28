// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

/*
Package bridge hosts the map engine for browser pages over a websocket.

The interactive map SDK runs in the browser. Each connected page gets a Page
that implements mapsdk.Handle remotely: creating a map, marker, info window
or listener allocates an object ID on the server and sends a command frame;
the page script mirrors those objects onto the real SDK. Listener events and
user commands travel the other way.

# Frames

Every message is a JSON object {"type": "...", "data": {...}}.

Page to server:

	mount           {view, category, container, location?}
	filters         {view, filters}
	location        {view?, position}
	unmount         {view}
	fallback_click  {view, marker}
	sdk_loaded      {request, error?, static_base?}
	event           {listener}
	ping            {}

Server to page:

	load_sdk, create_map, set_center, add_control, destroy_map,
	create_marker, remove_marker, create_info_window, open_info_window,
	close_info_window, destroy_info_window, add_listener, remove_listener, render,
	marker_click, view_state, error, pong

# Loading

The SDK is requested from a page at most once: every view of the page shares
the page's mapsdk.CachedLoader, and all pages share one circuit breaker. When
no credential is configured, or the page reports a load failure, views render
through the fallback renderer and the resulting HTML is sent in render frames.

Records for a mounted view are streamed from the places source page by page,
so markers appear while data is still arriving.
*/
package bridge
