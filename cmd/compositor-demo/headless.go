package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/config"
	"github.com/gogpu/compositor/region"
)

// pngWriter saves every nth presented frame.
type pngWriter struct {
	dir   string
	every int
	seen  int
	saved []string
}

func (p *pngWriter) Present(frame image.Image, damaged region.Region) error {
	p.seen++
	if p.seen%p.every != 0 {
		return nil
	}
	path := filepath.Join(p.dir, fmt.Sprintf("frame_%04d.png", p.seen))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	p.saved = append(p.saved, path)
	slog.Debug("saved frame", "path", path, "damaged", damaged.Bounds())
	return nil
}

func runHeadless(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	frames, every := c.Int("frames"), c.Int("every")
	if frames <= 0 || every <= 0 {
		return errors.New("--frames and --every must be positive")
	}
	dir := c.String("out")
	if dir == "" {
		if dir, err = os.MkdirTemp("", "compositor-frames-*"); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	out := &pngWriter{dir: dir, every: every}
	saved, painted, err := headless(cfg, frames, out)
	if err != nil {
		return err
	}
	slog.Info("headless run completed", "frames", frames, "painted", painted, "saved", saved, "dir", dir)
	return nil
}

// headless drives frames on a virtual clock, one frame interval apart.
func headless(cfg *config.Config, frames int, out *pngWriter) (saved, painted int, err error) {
	var now time.Duration
	opts := append(cfg.Options(),
		compositor.WithPresenter(out),
		compositor.WithClock(func() time.Duration { return now }))
	comp, err := compositor.New(cfg.Display(), opts...)
	if err != nil {
		return 0, 0, err
	}
	defer comp.Close()

	wins := cfg.Windows
	if len(wins) == 0 {
		wins = defaultWindows(cfg.Display())
	}
	sc := newScenario(comp, wins, 20*cfg.Frame.Interval)
	for range frames {
		now += cfg.Frame.Interval
		sc.advance(now)
		if _, ok := comp.Composite(); ok {
			painted++
		}
	}
	return len(out.saved), painted, nil
}
