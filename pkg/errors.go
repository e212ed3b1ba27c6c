// Package pkg holds utilities shared across the project.
// This file defines the domain-level error sentinels.
//
// Errors are plain values created once with errors.New, so callers compare
// by identity through the wrap chain instead of matching strings:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import "errors"

// Domain-level errors.
// Services return these (usually wrapped with %w); the handler layer maps
// them to HTTP status codes.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")

	// ErrMalformedInput marks a programming error in an event producer, such
	// as a bound merge with neither bound set. It is never recovered locally.
	ErrMalformedInput = errors.New("malformed input")
)
