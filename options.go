package compositor

import (
	"image/color"
	"time"

	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/effect/builtin"
)

// Default frame pacing.
const (
	// DefaultFrameInterval is the minimum time between two frames.
	DefaultFrameInterval = 16 * time.Millisecond
	// DefaultMaxFrameDelay is the longest the frame loop sleeps without
	// being woken.
	DefaultMaxFrameDelay = 250 * time.Millisecond
)

// Option configures a Compositor during creation.
//
// Example:
//
//	// Software output with the fade and glow effects
//	c, err := compositor.New(display,
//	    compositor.WithBackendName(backend.BackendSoftware),
//	    compositor.WithEffects(builtin.FadeName, builtin.GlowName),
//	)
type Option func(*options)

// EffectPosition requests a chain position for a named effect.
type EffectPosition struct {
	Name     string
	Position int
}

type options struct {
	backend       backend.Backend
	backendName   string
	buffers       int
	background    color.RGBA
	noBufferAge   bool
	registry      *effect.Registry
	builtin       builtin.Options
	effects       []EffectPosition
	defaults      bool
	input         effect.Input
	presenters    []Presenter
	frameInterval time.Duration
	maxFrameDelay time.Duration
	clock         func() time.Duration
}

func defaultOptions() options {
	return options{
		builtin:       builtin.DefaultOptions(),
		defaults:      true,
		frameInterval: DefaultFrameInterval,
		maxFrameDelay: DefaultMaxFrameDelay,
	}
}

// WithBackend uses b instead of a registered backend. The compositor
// takes ownership and closes it.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name. Without it the
// highest priority available backend is used.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithBuffers sets the swap chain length of the backend.
func WithBuffers(n int) Option {
	return func(o *options) {
		o.buffers = n
	}
}

// WithBackground sets the colour painted where no window is.
func WithBackground(c color.RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithoutBufferAge makes every frame repaint the full damage history.
func WithoutBufferAge() Option {
	return func(o *options) {
		o.noBufferAge = true
	}
}

// WithRegistry uses r to resolve effect names. The built-in effects are
// added to it.
func WithRegistry(r *effect.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithBuiltinOptions tunes the built-in effects.
func WithBuiltinOptions(b builtin.Options) Option {
	return func(o *options) {
		o.builtin = b
	}
}

// WithEffects loads the named effects in addition to the defaults.
func WithEffects(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.effects = append(o.effects, EffectPosition{Name: n, Position: -1})
		}
	}
}

// WithEffectAt loads the named effect at a chain position.
func WithEffectAt(name string, position int) Option {
	return func(o *options) {
		o.effects = append(o.effects, EffectPosition{Name: name, Position: position})
	}
}

// WithoutDefaultEffects skips the effects enabled by default.
func WithoutDefaultEffects() Option {
	return func(o *options) {
		o.defaults = false
	}
}

// WithInput routes effect keyboard and pointer grabs to in.
func WithInput(in effect.Input) Option {
	return func(o *options) {
		o.input = in
	}
}

// WithPresenter adds p to the presenters shown every frame.
func WithPresenter(p Presenter) Option {
	return func(o *options) {
		o.presenters = append(o.presenters, p)
	}
}

// WithFrameInterval sets the minimum time between frames.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		o.frameInterval = d
	}
}

// WithMaxFrameDelay sets the longest the frame loop sleeps unwoken.
func WithMaxFrameDelay(d time.Duration) Option {
	return func(o *options) {
		o.maxFrameDelay = d
	}
}

// WithClock replaces the presentation clock. It returns the time since
// an arbitrary fixed origin.
func WithClock(now func() time.Duration) Option {
	return func(o *options) {
		o.clock = now
	}
}
