// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package markers

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// payload reads loosely typed fields out of a record payload. Every key is
// tried in its camelCase spelling first and then in snake_case.
type payload map[string]any

func (p payload) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			return v, true
		}
		if s := snakeCase(k); s != k {
			if v, ok := p[s]; ok && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

func (p payload) str(keys ...string) string {
	v, ok := p.lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// list accepts a JSON array or a comma-separated string. Items are trimmed
// and empty items dropped.
func (p payload) list(keys ...string) []string {
	v, ok := p.lookup(keys...)
	if !ok {
		return nil
	}
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = t
	case string:
		raw = strings.Split(t, ",")
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// slugList is list with every item normalized to the lowercase, hyphenated
// form used by the filter schemas. Duplicates are removed.
func (p payload) slugList(keys ...string) []string {
	items := p.list(keys...)
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		s := slug(item)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (p payload) boolean(keys ...string) bool {
	v, ok := p.lookup(keys...)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "on":
			return true
		}
	}
	return false
}

// number returns 0 for absent, non-numeric or non-finite values.
func (p payload) number(keys ...string) float64 {
	v, ok := p.lookup(keys...)
	if !ok {
		return 0
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (p payload) object(keys ...string) (payload, bool) {
	v, ok := p.lookup(keys...)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return payload(m), ok
}

func snakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' {
			return '-'
		}
		return r
	}, s)
}

var priceAliases = map[string]string{
	"budget":   "budget",
	"low":      "budget",
	"cheap":    "budget",
	"$":        "budget",
	"standard": "standard",
	"mid":      "standard",
	"medium":   "standard",
	"moderate": "standard",
	"$$":       "standard",
	"premium":  "premium",
	"high":     "premium",
	"luxury":   "premium",
	"$$$":      "premium",
}

// priceRange maps common price labels onto the registry domain, falling back
// to def for anything unrecognized.
func (p payload) priceRange(def string, keys ...string) string {
	if v, ok := priceAliases[slug(p.str(keys...))]; ok {
		return v
	}
	return def
}

func rating(p payload) float64 {
	r := p.number("rating", "score")
	if r < 0 {
		return 0
	}
	return r
}
