package main

import (
	"image"
	"image/color"
	"time"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/config"
	"github.com/gogpu/compositor/effect/builtin"
	"github.com/gogpu/compositor/win"
)

var demoMargins = win.Margins{Left: 2, Top: 14, Right: 2, Bottom: 2}

// defaultWindows are shown when the configuration has none. They are laid
// out relative to the display.
func defaultWindows(display image.Rectangle) []config.WindowConfig {
	w, h := display.Dx(), display.Dy()
	return []config.WindowConfig{
		{Title: "notes", X: w / 10, Y: h / 10, Width: w / 2, Height: h / 2, Color: config.RGB(0xc0, 0x50, 0x40), Opacity: 1, Decorate: true},
		{Title: "shell", X: w / 3, Y: h / 4, Width: w / 2, Height: h / 2, Color: config.RGB(0x40, 0x90, 0x60), Opacity: 1, Decorate: true},
		{Title: "overlay", X: w / 2, Y: h / 2, Width: w / 3, Height: h / 3, Color: config.RGB(0x40, 0x60, 0xc0), Opacity: 0.7, Decorate: true},
	}
}

// scenario cycles through window operations that start the built-in
// effects: focus changes, a resize, zooming, closing and reopening.
type scenario struct {
	comp    *compositor.Compositor
	configs []config.WindowConfig
	windows []*win.Window
	step    int
	period  time.Duration
	next    time.Duration
}

func newScenario(comp *compositor.Compositor, cfgs []config.WindowConfig, period time.Duration) *scenario {
	s := &scenario{comp: comp, configs: cfgs, period: period, next: period}
	for _, wc := range cfgs {
		s.windows = append(s.windows, openWindow(comp.Space(), wc))
	}
	if len(s.windows) > 0 {
		s.focus(len(s.windows) - 1)
	}
	return s
}

func openWindow(sp *win.Space, wc config.WindowConfig) *win.Window {
	o := win.Options{
		Kind:     win.KindInternal,
		Caption:  wc.Title,
		Geometry: wc.Geometry(),
		Opacity:  wc.Opacity,
		HasAlpha: wc.Opacity < 1,
		Managed:  true,
	}
	if wc.Decorate {
		o.Decoration = &win.Decoration{Margins: demoMargins, Title: wc.Title}
	}
	w := sp.NewWindow(o)
	w.SetContent(image.NewUniform(wc.Color.RGBA))
	return w
}

func (s *scenario) focus(i int) {
	for j, w := range s.windows {
		w.SetState(win.Active, j == i)
	}
	s.comp.Space().Raise(s.windows[i])
}

// advance runs the steps that are due at now.
func (s *scenario) advance(now time.Duration) {
	for now >= s.next {
		s.run()
		s.step++
		s.next += s.period
	}
}

func (s *scenario) run() {
	n := len(s.windows)
	if n == 0 {
		return
	}
	zoom, _ := lookupZoom(s.comp)
	switch s.step % 6 {
	case 0, 2:
		s.focus((s.step/2 + 1) % n)
	case 1:
		w := s.windows[0]
		g := w.Geometry()
		grow := image.Pt(g.Dx()/5, g.Dy()/5)
		if s.step%12 == 7 {
			grow = grow.Mul(-1)
		}
		w.SetGeometry(image.Rectangle{Min: g.Min, Max: g.Max.Add(grow)})
		w.SetContent(image.NewUniform(shade(s.configs[0].Color.RGBA, s.step)))
	case 3:
		if zoom != nil {
			zoom.SetFocus(s.windows[n-1].Geometry().Min)
			zoom.ZoomIn()
		}
	case 4:
		if zoom != nil {
			zoom.ResetZoom()
		}
		s.comp.Space().Close(s.windows[n-1])
	case 5:
		s.windows[n-1] = openWindow(s.comp.Space(), s.configs[n-1])
		s.focus(n - 1)
	}
}

func lookupZoom(comp *compositor.Compositor) (*builtin.Zoom, bool) {
	e, ok := comp.Effects().Lookup(builtin.ZoomName)
	if !ok {
		return nil, false
	}
	z, ok := e.(*builtin.Zoom)
	return z, ok
}

// shade lightens c a little on every call so content changes are visible.
func shade(c color.RGBA, step int) color.RGBA {
	d := uint8(step * 16)
	return color.RGBA{R: c.R + d/4, G: c.G + d/3, B: c.B + d/2, A: c.A}
}
