package software

import (
	"errors"
	"image"
	"image/color"

	"github.com/gogpu/compositor/internal/blend"
	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/scene"
)

// Name is the registry name of the software backend.
const Name = "software"

// ErrEmptyTarget is returned when an offscreen target has no area.
var ErrEmptyTarget = errors.New("software: empty offscreen target")

// DefaultBackground is the colour painted where no window is.
var DefaultBackground = color.RGBA{R: 0x1e, G: 0x1f, B: 0x24, A: 0xff}

// Option configures a Backend.
type Option func(*Backend)

// WithBuffers sets the swap chain length. The default is 2.
func WithBuffers(n int) Option {
	return func(b *Backend) { b.nbuffers = n }
}

// WithBackground sets the background colour.
func WithBackground(c color.RGBA) Option {
	return func(b *Backend) { b.background = c }
}

// WithoutBufferAge makes the backend behave like an output whose buffer
// age is unknown: large damage is widened to a full repaint.
func WithoutBufferAge() Option {
	return func(b *Backend) { b.bufferAge = false }
}

// Backend composites windows on the CPU.
type Backend struct {
	target     *Target
	nbuffers   int
	bufferAge  bool
	background color.RGBA

	offscreen []*image.RGBA
	buffers   map[*Buffer]struct{}
	decos     *decorations
}

var (
	_ scene.Backend             = (*Backend)(nil)
	_ scene.PaintRegionExtender = (*Backend)(nil)
	_ scene.OffscreenRenderer   = (*Backend)(nil)
	_ scene.FrameTarget         = (*Backend)(nil)
)

// New returns a backend drawing an output covering display.
func New(display image.Rectangle, opts ...Option) *Backend {
	b := &Backend{
		nbuffers:   2,
		bufferAge:  true,
		background: DefaultBackground,
		buffers:    make(map[*Buffer]struct{}),
		decos:      newDecorations(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.target = NewTarget(display, b.nbuffers)
	return b
}

func (b *Backend) Name() string { return Name }

// Target returns the output swap chain.
func (b *Backend) Target() *Target { return b.target }

// Resize replaces the swap chain with one covering display.
func (b *Backend) Resize(display image.Rectangle) {
	if display == b.target.Rect() {
		return
	}
	logging.Logger().Debug("software: resizing output", "display", display)
	b.target = NewTarget(display, b.nbuffers)
}

// Close drops cached decorations. Window buffers stay with their windows.
func (b *Backend) Close() {
	b.decos.atlases.Clear()
	b.decos.faces.Clear()
	b.offscreen = nil
}

// LiveBuffers returns the number of buffers set up and not yet released.
func (b *Backend) LiveBuffers() int { return len(b.buffers) }

func (b *Backend) CreateBuffer(w *scene.Window) scene.Buffer {
	return &Buffer{owner: b, w: w}
}

func (b *Backend) SetupBuffer(sb scene.Buffer) {
	if buf, ok := sb.(*Buffer); ok {
		b.buffers[buf] = struct{}{}
	}
}

func (b *Backend) forget(buf *Buffer) { delete(b.buffers, buf) }

// dst returns the image being drawn: the innermost offscreen target or
// the back buffer.
func (b *Backend) dst() *image.RGBA {
	if n := len(b.offscreen); n > 0 {
		return b.offscreen[n-1]
	}
	return b.target.Back()
}

func (b *Backend) PaintBackground(r region.Region) {
	dst := b.dst()
	for _, rect := range r.IntersectRect(dst.Rect).Rects() {
		blend.Fill(blend.Source, dst, rect, b.background, 255)
	}
}

// ExtendPaintRegion widens r to the whole output when the output has no
// buffer age and a single rectangle covers most of it. Copying the whole
// frame is then cheaper than tracking the pieces. An opaque fullscreen
// window lowers the threshold.
func (b *Backend) ExtendPaintRegion(r *region.Region, opaqueFullscreen bool) {
	if b.bufferAge {
		return
	}
	display := b.target.Rect()
	area := float64(display.Dx() * display.Dy())
	limit := 0.748 * area
	if opaqueFullscreen {
		limit = 0.49 * area
	}
	for _, rect := range r.Rects() {
		if float64(rect.Dx()*rect.Dy()) > limit {
			*r = region.Rect(display)
			return
		}
	}
}

func (b *Backend) BeginFrame(damage region.Region) region.Region {
	return b.target.BeginFrame(damage)
}

func (b *Backend) EndFrame(damaged region.Region) { b.target.EndFrame(damaged) }

func (b *Backend) Front() image.Image { return b.target.Front() }

// PushTarget redirects drawing into a transparent image covering bounds.
func (b *Backend) PushTarget(bounds image.Rectangle) error {
	if bounds.Empty() {
		return ErrEmptyTarget
	}
	b.offscreen = append(b.offscreen, image.NewRGBA(bounds))
	return nil
}

// PopTarget returns the innermost offscreen image. Its bounds are in
// screen coordinates.
func (b *Backend) PopTarget() image.Image {
	n := len(b.offscreen)
	if n == 0 {
		return nil
	}
	img := b.offscreen[n-1]
	b.offscreen = b.offscreen[:n-1]
	return img
}
