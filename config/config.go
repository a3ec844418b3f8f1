// Package config loads the demo compositor configuration from YAML.
package config

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/effect/builtin"
)

// Config is the top-level configuration document.
type Config struct {
	Output   Output         `yaml:"output"`
	Frame    Frame          `yaml:"frame"`
	Effects  Effects        `yaml:"effects"`
	Windows  []WindowConfig `yaml:"windows"`
	LogLevel string         `yaml:"log_level"`
}

// Output describes the composited screen.
type Output struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Backend is a registered backend name. Empty picks the best one.
	Backend    string `yaml:"backend"`
	Buffers    int    `yaml:"buffers"`
	Background Color  `yaml:"background"`
	// BufferAge defaults to true.
	BufferAge *bool `yaml:"buffer_age"`
}

// Frame tunes the frame loop.
type Frame struct {
	Interval time.Duration `yaml:"interval"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// Effects selects and tunes effects.
type Effects struct {
	// Defaults loads the effects enabled by default. Defaults to true.
	Defaults    *bool       `yaml:"defaults"`
	Load        EffectList  `yaml:"load,omitempty"`
	Fade        Fade        `yaml:"fade"`
	CrossFade   Fade        `yaml:"crossfade"`
	DimInactive DimInactive `yaml:"dim_inactive"`
	Zoom        Zoom        `yaml:"zoom"`
	Glow        Glow        `yaml:"glow"`
}

type Fade struct {
	Duration time.Duration `yaml:"duration"`
}

type DimInactive struct {
	Strength float64 `yaml:"strength"`
}

type Zoom struct {
	Rate float64 `yaml:"rate"`
}

type Glow struct {
	Color Color `yaml:"color"`
	Width int   `yaml:"width"`
}

// EffectEntry is one effect to load. A negative position appends.
type EffectEntry struct {
	Name     string `yaml:"name"`
	Position *int   `yaml:"position,omitempty"`
}

// EffectList supports either:
//
//	load:
//	  - zoom
//	  - glow
//
// or:
//
//	load:
//	  - name: zoom
//	    position: 10
type EffectList []EffectEntry

func (l *EffectList) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*l = nil
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("effects.load must be a list")
	}
	out := make(EffectList, 0, len(value.Content))
	for _, item := range value.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, EffectEntry{Name: strings.TrimSpace(item.Value)})
		case yaml.MappingNode:
			var e EffectEntry
			if err := item.Decode(&e); err != nil {
				return err
			}
			e.Name = strings.TrimSpace(e.Name)
			out = append(out, e)
		default:
			return fmt.Errorf("effects.load entries must be names or mappings")
		}
	}
	*l = out
	return nil
}

// WindowConfig is a demo window.
type WindowConfig struct {
	Title    string  `yaml:"title"`
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Color    Color   `yaml:"color"`
	Opacity  float64 `yaml:"opacity"`
	Decorate bool    `yaml:"decorate"`
	Active   bool    `yaml:"active"`
}

// Geometry returns the window frame.
func (w WindowConfig) Geometry() image.Rectangle {
	return image.Rect(w.X, w.Y, w.X+w.Width, w.Y+w.Height)
}

// Color is a colour written as "#rrggbb" or "#rrggbbaa".
type Color struct {
	color.RGBA
	set bool
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color { return Color{RGBA: color.RGBA{R: r, G: g, B: b, A: 255}, set: true} }

// IsSet reports whether the colour was given.
func (c Color) IsSet() bool { return c.set }

func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	p, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = p
	return nil
}

func (c Color) MarshalYAML() (any, error) { return c.String(), nil }

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid colour %q: want #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		RGBA: color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)},
		set:  true,
	}, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Output.Width == 0 {
		c.Output.Width = 640
	}
	if c.Output.Height == 0 {
		c.Output.Height = 480
	}
	if c.Output.Buffers == 0 {
		c.Output.Buffers = 2
	}
	if !c.Output.Background.IsSet() {
		c.Output.Background = RGB(0x20, 0x20, 0x28)
	}
	if c.Output.BufferAge == nil {
		c.Output.BufferAge = ptr(true)
	}
	if c.Frame.Interval == 0 {
		c.Frame.Interval = compositor.DefaultFrameInterval
	}
	if c.Frame.MaxDelay == 0 {
		c.Frame.MaxDelay = compositor.DefaultMaxFrameDelay
	}
	if c.Effects.Defaults == nil {
		c.Effects.Defaults = ptr(true)
	}

	b := builtin.DefaultOptions()
	if c.Effects.Fade.Duration == 0 {
		c.Effects.Fade.Duration = b.FadeDuration
	}
	if c.Effects.CrossFade.Duration == 0 {
		c.Effects.CrossFade.Duration = b.CrossFadeDuration
	}
	if c.Effects.DimInactive.Strength == 0 {
		c.Effects.DimInactive.Strength = b.DimStrength
	}
	if c.Effects.Zoom.Rate == 0 {
		c.Effects.Zoom.Rate = b.ZoomRate
	}
	if !c.Effects.Glow.Color.IsSet() {
		c.Effects.Glow.Color = Color{RGBA: b.GlowColor, set: true}
	}
	if c.Effects.Glow.Width == 0 {
		c.Effects.Glow.Width = b.GlowWidth
	}

	for i := range c.Windows {
		w := &c.Windows[i]
		if w.Opacity == 0 {
			w.Opacity = 1
		}
		if !w.Color.IsSet() {
			w.Color = RGB(0x60, 0x80, 0xa0)
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func ptr[T any](v T) *T { return &v }

// Display returns the output rectangle.
func (c *Config) Display() image.Rectangle {
	return image.Rect(0, 0, c.Output.Width, c.Output.Height)
}

// Builtin returns the tuning for the built-in effects.
func (c *Config) Builtin() builtin.Options {
	return builtin.Options{
		FadeDuration:      c.Effects.Fade.Duration,
		CrossFadeDuration: c.Effects.CrossFade.Duration,
		DimStrength:       c.Effects.DimInactive.Strength,
		ZoomRate:          c.Effects.Zoom.Rate,
		GlowColor:         c.Effects.Glow.Color.RGBA,
		GlowWidth:         c.Effects.Glow.Width,
	}
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options translates the configuration into compositor options.
func (c *Config) Options() []compositor.Option {
	opts := []compositor.Option{
		compositor.WithBuffers(c.Output.Buffers),
		compositor.WithBackground(c.Output.Background.RGBA),
		compositor.WithBuiltinOptions(c.Builtin()),
		compositor.WithFrameInterval(c.Frame.Interval),
		compositor.WithMaxFrameDelay(c.Frame.MaxDelay),
	}
	if c.Output.Backend != "" {
		opts = append(opts, compositor.WithBackendName(c.Output.Backend))
	}
	if c.Output.BufferAge != nil && !*c.Output.BufferAge {
		opts = append(opts, compositor.WithoutBufferAge())
	}
	if c.Effects.Defaults != nil && !*c.Effects.Defaults {
		opts = append(opts, compositor.WithoutDefaultEffects())
	}
	for _, e := range c.Effects.Load {
		if e.Position != nil && *e.Position >= 0 {
			opts = append(opts, compositor.WithEffectAt(e.Name, *e.Position))
		} else {
			opts = append(opts, compositor.WithEffects(e.Name))
		}
	}
	return opts
}

// ValidationError locates an invalid setting.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return &ValidationError{Path: "output", Err: fmt.Errorf("width and height must be > 0")}
	}
	if c.Output.Buffers < 1 || c.Output.Buffers > 4 {
		return &ValidationError{Path: "output.buffers", Err: fmt.Errorf("buffers must be between 1 and 4")}
	}
	if c.Output.Backend != "" && !backend.IsRegistered(c.Output.Backend) {
		return &ValidationError{Path: "output.backend", Err: fmt.Errorf("%w: %q", backend.ErrBackendNotAvailable, c.Output.Backend)}
	}
	if c.Frame.Interval < 0 || c.Frame.MaxDelay < c.Frame.Interval {
		return &ValidationError{Path: "frame", Err: fmt.Errorf("need 0 <= interval <= max_delay")}
	}
	if s := c.Effects.DimInactive.Strength; s < 0 || s > 1 {
		return &ValidationError{Path: "effects.dim_inactive.strength", Err: fmt.Errorf("strength must be between 0 and 1")}
	}
	if c.Effects.Fade.Duration < 0 || c.Effects.CrossFade.Duration < 0 {
		return &ValidationError{Path: "effects", Err: fmt.Errorf("durations must be >= 0")}
	}
	if c.Effects.Glow.Width < 0 {
		return &ValidationError{Path: "effects.glow.width", Err: fmt.Errorf("width must be >= 0")}
	}
	seen := make(map[string]bool)
	for i, e := range c.Effects.Load {
		path := fmt.Sprintf("effects.load[%d]", i)
		if e.Name == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("name is required")}
		}
		if seen[e.Name] {
			return &ValidationError{Path: path, Err: fmt.Errorf("effect %q listed twice", e.Name)}
		}
		seen[e.Name] = true
	}
	for i, w := range c.Windows {
		path := fmt.Sprintf("windows[%d]", i)
		if w.Width <= 0 || w.Height <= 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("width and height must be > 0")}
		}
		if w.Opacity < 0 || w.Opacity > 1 {
			return &ValidationError{Path: path + ".opacity", Err: fmt.Errorf("opacity must be between 0 and 1")}
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}
