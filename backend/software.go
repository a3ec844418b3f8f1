package backend

import (
	"github.com/gogpu/compositor/backend/software"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU compositing backend.
	BackendSoftware = "software"
	// BackendNative is the name of the GPU output backend (gogpu/wgpu HAL).
	BackendNative = "native"
)

var _ Backend = (*software.Backend)(nil)

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func(cfg Config) (Backend, error) {
		return software.New(cfg.Display, SoftwareOptions(cfg)...), nil
	})
}

// SoftwareOptions translates cfg into software backend options.
// Backends that draw through the software rasterizer share it.
func SoftwareOptions(cfg Config) []software.Option {
	var opts []software.Option
	if cfg.Buffers > 0 {
		opts = append(opts, software.WithBuffers(cfg.Buffers))
	}
	if cfg.Background.A != 0 {
		opts = append(opts, software.WithBackground(cfg.Background))
	}
	if cfg.DisableBufferAge {
		opts = append(opts, software.WithoutBufferAge())
	}
	return opts
}
