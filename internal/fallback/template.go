// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package fallback

import (
	"html/template"
	"strconv"
)

var funcMap = template.FuncMap{
	"coord": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 1, 64)
	},
	"half": func(v int) int { return v / 2 },
}

const fallbackTemplate = `<div class="pawmap-fallback pawmap-fallback--{{.Mode}}" data-container="{{.ContainerID}}" data-category="{{.Category.Category}}">
<p class="pawmap-notice" role="alert">{{.Notice}}</p>
{{- if eq .Mode "static"}}
<img class="pawmap-static" src="{{.StaticURL}}" width="{{.Width}}" height="{{.Height}}" alt="{{.Category.DisplayName}} map">
{{- else}}
<svg class="pawmap-plot" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{.Width}} {{.Height}}" width="{{.Width}}" height="{{.Height}}" role="img" aria-label="{{.Category.DisplayName}} map">
<rect width="{{.Width}}" height="{{.Height}}" fill="{{.Category.BackgroundColor}}"/>
{{- range .Pins}}
<g class="pawmap-pin" data-marker-id="{{.ID}}" data-priority="{{.Priority}}">
<circle cx="{{coord .X}}" cy="{{coord .Y}}" r="{{.Radius}}" fill="{{$.Category.Color}}" stroke="{{$.Category.AccentColor}}" stroke-width="2"/>
<text x="{{coord .X}}" y="{{coord .Y}}" dy="{{half .Radius}}" text-anchor="middle" fill="#FFFFFF" font-size="11">{{.Number}}</text>
<title>{{.Name}}</title>
</g>
{{- end}}
{{- with .User}}
<circle class="pawmap-user" cx="{{coord .X}}" cy="{{coord .Y}}" r="7" fill="#0EA5E9" stroke="#FFFFFF" stroke-width="2"/>
{{- end}}
</svg>
{{- end}}
<ol class="pawmap-list">
{{- range .Pins}}
<li value="{{.Number}}"><button type="button" data-marker-id="{{.ID}}">{{$.Category.Icon}} {{.Name}}</button>
{{- if .Lines}}<ul>{{range .Lines}}<li>{{.}}</li>{{end}}</ul>{{end}}</li>
{{- end}}
</ol>
</div>`
