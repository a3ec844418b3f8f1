// Package backend provides a pluggable compositing backend abstraction.
//
// A backend draws what the scene hands it (window quads, the background)
// and owns the output buffers frames are presented from. The software
// backend rasterizes on the CPU and is always available; the native
// backend in backend/native adds GPU presentation through gogpu/wgpu.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is automatically registered on import:
//
//	import _ "github.com/gogpu/compositor/backend"
//
// The native backend registers itself when its package is imported:
//
//	import _ "github.com/gogpu/compositor/backend/native"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	cfg := backend.Config{Display: image.Rect(0, 0, 1920, 1080)}
//
//	// Get the default (best available) backend
//	b, err := backend.Default(cfg)
//
//	// Or request a specific backend
//	b, err := backend.Get("software", cfg)
//
// # Available Backends
//
//   - "software": CPU quad rasterizer with a buffer-age swap chain (always available)
//   - "native": software composition presented through a GPU texture
package backend
