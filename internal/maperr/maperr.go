// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

// Package maperr classifies map engine failures.
//
// Every failure the engine surfaces is an *Error carrying one Kind. The kind
// fixes the severity and whether the failure is fatal to the map session:
//
//	Kind                  Severity  Fatal  Handling
//	CredentialMissing     high      yes    fallback immediately, no retry
//	SdkLoadFailed         high      yes    fallback, remount may retry
//	MapCreationFailed     medium    yes    fallback
//	MarkerCreationFailed  low       no     marker skipped
//	GeolocationFailed     low       no     default center used
//
// Reporting goes through an injected Sink rather than a package-level log.
package maperr

import (
	"errors"
	"fmt"
)

// Kind enumerates map engine failure classes.
type Kind int

const (
	// KindUnknown is never produced by the engine; KindOf returns it for
	// errors that are not *Error.
	KindUnknown Kind = iota
	CredentialMissing
	SdkLoadFailed
	MapCreationFailed
	MarkerCreationFailed
	GeolocationFailed
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	CredentialMissing:    "credential_missing",
	SdkLoadFailed:        "sdk_load_failed",
	MapCreationFailed:    "map_creation_failed",
	MarkerCreationFailed: "marker_creation_failed",
	GeolocationFailed:    "geolocation_failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Severity ranks how visible a failure is to the user.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Severity returns the fixed severity of k.
func (k Kind) Severity() Severity {
	switch k {
	case CredentialMissing, SdkLoadFailed:
		return SeverityHigh
	case MapCreationFailed:
		return SeverityMedium
	case MarkerCreationFailed, GeolocationFailed:
		return SeverityLow
	default:
		return SeverityHigh
	}
}

// Fatal reports whether failures of kind k end the map session.
func (k Kind) Fatal() bool {
	switch k {
	case CredentialMissing, SdkLoadFailed, MapCreationFailed:
		return true
	default:
		return false
	}
}

// Retryable reports whether remounting can help.
func (k Kind) Retryable() bool {
	return k == SdkLoadFailed || k == MapCreationFailed
}

// Error is a classified map engine failure.
type Error struct {
	Kind Kind
	// Op names the engine operation that failed, e.g. "mount" or "set_markers".
	Op string
	// MarkerID is set for MarkerCreationFailed.
	MarkerID string
	Err      error
}

// New returns a classified error wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// ForMarker returns a MarkerCreationFailed error for one marker.
func ForMarker(op, markerID string, err error) *Error {
	return &Error{Kind: MarkerCreationFailed, Op: op, MarkerID: markerID, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.MarkerID != "" {
		msg += " (marker " + e.MarkerID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Severity returns the severity of the error's kind.
func (e *Error) Severity() Severity {
	return e.Kind.Severity()
}

// Fatal reports whether the error ends the map session.
func (e *Error) Fatal() bool {
	return e.Kind.Fatal()
}

// Is matches another *Error with the same kind, so callers can write
// errors.Is(err, &maperr.Error{Kind: maperr.SdkLoadFailed}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
