package backend

import (
	"errors"
	"image"
	"image/color"

	"github.com/gogpu/compositor/scene"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrEmptyDisplay is returned for a zero sized output.
	ErrEmptyDisplay = errors.New("backend: empty display")
)

// Backend is the interface for compositing backends.
// It combines the hooks the scene draws through with the output swap
// chain the frame loop drives, allowing the compositor to run on
// multiple implementations (CPU raster, GPU upload, etc.).
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	scene.Backend
	scene.FrameTarget

	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Resize changes the output rectangle. Buffer contents are lost.
	Resize(display image.Rectangle)

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()
}

// Config describes the output a backend is created for.
type Config struct {
	Display image.Rectangle
	// Buffers is the swap chain length. Zero selects the backend default.
	Buffers int
	// Background fills areas no window covers. The zero value selects the
	// backend default.
	Background color.RGBA
	// DisableBufferAge makes every frame start from undefined back buffer
	// contents.
	DisableBufferAge bool
}
