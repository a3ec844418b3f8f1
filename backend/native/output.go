package native

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/backend/software"
	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/region"
)

// Name is the registered backend name.
const Name = backend.BackendNative

// DefaultFenceTimeout bounds how long a thumbnail read waits for its
// upload.
const DefaultFenceTimeout = 4 * time.Millisecond

// DefaultThumbnailLimit is the number of thumbnails kept on the GPU.
const DefaultThumbnailLimit = 32

type options struct {
	software       []software.Option
	fenceTimeout   time.Duration
	thumbnailLimit int
}

// Option configures an Output.
type Option func(*options)

// WithSoftware passes options to the software rasterizer.
func WithSoftware(opts ...software.Option) Option {
	return func(o *options) { o.software = append(o.software, opts...) }
}

// WithFenceTimeout sets the bounded wait of thumbnail reads.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fenceTimeout = d
		}
	}
}

// WithThumbnailLimit sets how many thumbnails stay on the GPU.
func WithThumbnailLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.thumbnailLimit = n
		}
	}
}

func init() {
	backend.Register(Name, func(cfg backend.Config) (backend.Backend, error) {
		dev, err := OpenHeadless()
		if err != nil {
			return nil, err
		}
		out, err := NewOutput(dev.Device, dev.Queue, cfg.Display, WithSoftware(backend.SoftwareOptions(cfg)...))
		if err != nil {
			dev.Close()
			return nil, err
		}
		out.owned = dev
		return out, nil
	})
}

// Output is a backend whose frames end up in a GPU texture.
type Output struct {
	*software.Backend

	device hal.Device
	queue  hal.Queue
	opts   options
	shader hal.ShaderModule
	target *texture
	owned  *Device
	caches []*ThumbnailCache

	uploads  int
	uploaded int
	closed   bool
}

var _ backend.Backend = (*Output)(nil)

// NewOutput creates an output of the given size on device.
func NewOutput(device hal.Device, queue hal.Queue, display image.Rectangle, opts ...Option) (*Output, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	o := options{fenceTimeout: DefaultFenceTimeout, thumbnailLimit: DefaultThumbnailLimit}
	for _, opt := range opts {
		opt(&o)
	}

	shader, err := createCompositeShader(device)
	if err != nil {
		return nil, err
	}
	target, err := newTexture(device, "output", display.Size())
	if err != nil {
		device.DestroyShaderModule(shader)
		return nil, err
	}
	return &Output{
		Backend: software.New(display, o.software...),
		device:  device,
		queue:   queue,
		opts:    o,
		shader:  shader,
		target:  target,
	}, nil
}

// Name returns the backend identifier.
func (o *Output) Name() string { return Name }

// Texture returns the output texture.
func (o *Output) Texture() hal.Texture { return o.target.tex }

// View returns the sampling view of the output texture.
func (o *Output) View() hal.TextureView { return o.target.view }

// Shader returns the composite shader module. Entry points are vs_main
// and fs_main.
func (o *Output) Shader() hal.ShaderModule { return o.shader }

// Stats returns the number of uploads and bytes uploaded so far.
func (o *Output) Stats() (uploads, bytes int) { return o.uploads, o.uploaded }

// Resize recreates the swap chain and the output texture.
func (o *Output) Resize(display image.Rectangle) {
	o.Backend.Resize(display)
	if o.target != nil && o.target.size == display.Size() {
		return
	}
	t, err := newTexture(o.device, "output", display.Size())
	if err != nil {
		logging.Logger().Error("native: resize output", "display", display, "err", err)
		return
	}
	if o.target != nil {
		o.target.destroy()
	}
	o.target = t
}

// EndFrame presents the frame and uploads its damage.
func (o *Output) EndFrame(damaged region.Region) {
	o.Backend.EndFrame(damaged)
	if o.closed || o.target == nil || damaged.IsEmpty() {
		return
	}
	front := o.Backend.Target().Front()
	if n := o.target.write(o.queue, front, damaged.Bounds()); n > 0 {
		o.uploads++
		o.uploaded += n
	}
}

// NewThumbnailCache returns a thumbnail cache sharing the output's device.
// It is closed together with the output.
func (o *Output) NewThumbnailCache(r Renderer) (*ThumbnailCache, error) {
	if o.closed {
		return nil, ErrClosed
	}
	c, err := NewThumbnailCache(o.device, o.queue, r, o.opts.thumbnailLimit, o.opts.fenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("native: thumbnails: %w", err)
	}
	o.caches = append(o.caches, c)
	return c, nil
}

// Close releases the GPU resources, then the rasterizer.
func (o *Output) Close() {
	if o.closed {
		return
	}
	o.closed = true
	for _, c := range o.caches {
		c.Destroy()
	}
	o.caches = nil
	if o.target != nil {
		o.target.destroy()
		o.target = nil
	}
	if o.shader != nil {
		o.device.DestroyShaderModule(o.shader)
		o.shader = nil
	}
	o.Backend.Close()
	if o.owned != nil {
		o.owned.Close()
		o.owned = nil
	}
}
