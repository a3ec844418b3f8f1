package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoDevice is returned when no HAL device or queue is supplied.
	ErrNoDevice = errors.New("native: no device")

	// ErrNoAdapter is returned when the HAL reports no adapter.
	ErrNoAdapter = errors.New("native: no GPU adapter available")

	// ErrShader is returned when the composite shader fails to build.
	ErrShader = errors.New("native: composite shader")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrClosed is returned by operations on a closed output or cache.
	ErrClosed = errors.New("native: closed")
)
