package domain

import "errors"

// Failure classes. Callers wrap them with context and match with errors.Is.
var (
	// ErrValidation: bad input or coordinates outside the service area.
	// Detected before any network call.
	ErrValidation = errors.New("validation failure")

	// ErrDecode: a route geometry could not be decoded, or decoded empty.
	ErrDecode = errors.New("decode failure")

	// ErrUpstream: non-success status, malformed payload or transport error
	// from the remote geocoding/directions service.
	ErrUpstream = errors.New("upstream failure")

	// ErrNoResults: well-formed answer without usable places or routes.
	ErrNoResults = errors.New("no results")
)
