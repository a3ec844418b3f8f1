package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/backend/native"
	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/effect/builtin"
	"github.com/gogpu/compositor/event"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/scene"
	"github.com/gogpu/compositor/win"
)

// Compositor drives frames: it owns the window space, the scene, the
// effect chain, the backend and the presenters.
//
// Windows, AddRepaint and AddRepaintFull may be used from any goroutine.
// Composite, Resize and the accessors of the frame state run on a single
// frame goroutine, usually the one calling Run.
type Compositor struct {
	opts    options
	space   *win.Space
	queue   *event.Queue
	scene   *scene.Scene
	effects *effect.Handler
	backend backend.Backend
	thumbs  *native.ThumbnailCache

	start   time.Time
	wake    chan struct{}
	running atomic.Bool
	last    time.Time
	frames  atomic.Uint64

	mu      sync.Mutex
	pending region.Region
	full    bool
	closed  bool
}

// New returns a compositor for an output covering display.
func New(display image.Rectangle, opts ...Option) (*Compositor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if display.Empty() {
		return nil, backend.ErrEmptyDisplay
	}

	b, err := openBackend(display, &o)
	if err != nil {
		return nil, err
	}

	reg := o.registry
	if reg == nil {
		reg = effect.NewRegistry()
	}
	if _, ok := reg.Lookup(builtin.FadeName); !ok {
		if err := builtin.Register(reg, o.builtin); err != nil {
			b.Close()
			return nil, fmt.Errorf("compositor: register effects: %w", err)
		}
	}

	q := event.NewQueue()
	c := &Compositor{
		opts:    o,
		queue:   q,
		space:   win.NewSpace(q),
		effects: effect.NewHandler(reg, o.input),
		backend: b,
		start:   time.Now(),
		wake:    make(chan struct{}, 1),
	}
	c.scene = scene.New(scene.Config{
		Backend: b,
		Effects: c.effects,
		Stack:   c.space,
		Queue:   q,
		Display: display,
	})
	c.scene.SetRepaintTrigger(c.trigger)
	c.space.SetNotify(c.trigger)

	if out, ok := b.(*native.Output); ok {
		c.loadThumbnails(out)
	}
	if err := c.loadEffects(reg); err != nil {
		b.Close()
		return nil, err
	}

	Logger().Info("compositor: started",
		"backend", b.Name(),
		"display", display,
		"effects", c.effects.Loaded())
	c.scene.AddRepaintFull()
	return c, nil
}

func openBackend(display image.Rectangle, o *options) (backend.Backend, error) {
	if o.backend != nil {
		return o.backend, nil
	}
	cfg := backend.Config{
		Display:          display,
		Buffers:          o.buffers,
		Background:       o.background,
		DisableBufferAge: o.noBufferAge,
	}
	var (
		b   backend.Backend
		err error
	)
	if o.backendName != "" {
		b, err = backend.Get(o.backendName, cfg)
	} else {
		b, err = backend.Default(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("compositor: open backend: %w", err)
	}
	return b, nil
}

func (c *Compositor) loadThumbnails(out *native.Output) {
	cache, err := out.NewThumbnailCache(c.scene)
	if err != nil {
		Logger().Warn("compositor: thumbnails unavailable", "err", err)
		return
	}
	if err := c.effects.Load(native.ThumbnailEffectName, cache); err != nil {
		Logger().Warn("compositor: thumbnails unavailable", "err", err)
		return
	}
	c.thumbs = cache
}

// loadEffects loads the default effects, then the requested ones. An
// explicit position for a default effect reloads it there.
func (c *Compositor) loadEffects(reg *effect.Registry) error {
	var order []EffectPosition
	if c.opts.defaults {
		for _, name := range reg.Defaults() {
			order = append(order, EffectPosition{Name: name, Position: -1})
		}
	}
	for _, e := range c.opts.effects {
		i := indexOf(order, e.Name)
		switch {
		case i < 0:
			order = append(order, e)
		case e.Position >= 0:
			order[i].Position = e.Position
		}
	}
	for _, e := range order {
		var lo []effect.LoadOption
		if e.Position >= 0 {
			lo = append(lo, effect.AtPosition(e.Position))
		}
		if err := c.effects.LoadByName(e.Name, lo...); err != nil {
			return fmt.Errorf("compositor: load effect: %w", err)
		}
	}
	return nil
}

func indexOf(order []EffectPosition, name string) int {
	for i, e := range order {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Space returns the window space. Windows created in it are composited.
func (c *Compositor) Space() *win.Space { return c.space }

// Scene returns the scene.
func (c *Compositor) Scene() *scene.Scene { return c.scene }

// Effects returns the effect handler.
func (c *Compositor) Effects() *effect.Handler { return c.effects }

// Backend returns the output backend.
func (c *Compositor) Backend() backend.Backend { return c.backend }

// Thumbnails returns the GPU thumbnail cache, or nil when the backend
// has no device.
func (c *Compositor) Thumbnails() *native.ThumbnailCache { return c.thumbs }

// Frames returns the number of frames painted.
func (c *Compositor) Frames() uint64 { return c.frames.Load() }

// AddRepaint schedules a repaint of r, in screen coordinates.
func (c *Compositor) AddRepaint(r region.Region) {
	c.mu.Lock()
	c.pending = c.pending.Union(r)
	c.mu.Unlock()
	c.trigger()
}

// AddRepaintFull schedules a repaint of the whole output.
func (c *Compositor) AddRepaintFull() {
	c.mu.Lock()
	c.full = true
	c.mu.Unlock()
	c.trigger()
}

// trigger wakes the frame loop. It never blocks.
func (c *Compositor) trigger() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Compositor) now() time.Duration {
	if c.opts.clock != nil {
		return c.opts.clock()
	}
	return time.Since(c.start)
}

func (c *Compositor) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Composite paints one frame if anything needs painting and shows it on
// every presenter. It reports whether a frame was painted.
func (c *Compositor) Composite() (scene.FrameResult, bool) {
	if c.isClosed() {
		return scene.FrameResult{}, false
	}
	c.scene.ProcessEvents()

	c.mu.Lock()
	pending, full := c.pending, c.full
	c.pending, c.full = region.Region{}, false
	c.mu.Unlock()
	if full {
		c.scene.AddRepaintFull()
	} else if !pending.IsEmpty() {
		c.scene.AddRepaint(pending)
	}

	if !c.scene.HasPendingRepaints() && !c.effects.HasActiveEffects() {
		c.scene.Idle()
		Logger().Debug("compositor: idle frame")
		return scene.FrameResult{}, false
	}

	damage := c.scene.TakeRepaints()
	repaint := c.backend.BeginFrame(damage)
	res := c.scene.PaintScreen(damage, repaint, c.now())
	c.backend.EndFrame(res.Damaged)
	n := c.frames.Add(1)
	Logger().Debug("compositor: frame",
		"n", n,
		"path", res.Path,
		"damaged", res.Damaged.Bounds())

	if !res.Damaged.IsEmpty() {
		c.present(res.Damaged)
	}
	return res, true
}

func (c *Compositor) present(damaged region.Region) {
	if len(c.opts.presenters) == 0 {
		return
	}
	front := c.backend.Front()
	for _, p := range c.opts.presenters {
		if err := p.Present(front, damaged); err != nil {
			Logger().Warn("compositor: present failed", "err", err)
		}
	}
}

// Run composites frames until ctx is done or the compositor is closed.
// A frame starts when something schedules a repaint, but no sooner than
// the frame interval after the previous one; without repaints the loop
// still wakes after the maximum frame delay.
func (c *Compositor) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer c.running.Store(false)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wake:
		case <-timer.C:
		}
		if c.isClosed() {
			return ErrClosed
		}
		if wait := c.opts.frameInterval - time.Since(c.last); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		c.last = time.Now()
		c.Composite()
		timer.Reset(c.opts.maxFrameDelay)
	}
}

// Resize changes the output rectangle and repaints everything.
func (c *Compositor) Resize(display image.Rectangle) {
	if display.Empty() || c.isClosed() {
		return
	}
	c.backend.Resize(display)
	c.scene.SetDisplay(display)
}

// Close releases the backend and closes presenters implementing
// io.Closer. It must not run concurrently with Composite: cancel Run
// first. Close is idempotent.
func (c *Compositor) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	c.trigger()

	var errs []error
	for _, p := range c.opts.presenters {
		if cl, ok := p.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	c.backend.Close()
	c.thumbs = nil
	return errors.Join(errs...)
}
