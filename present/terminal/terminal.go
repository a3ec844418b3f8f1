// Package terminal shows composed frames in a terminal.
//
// Every cell is drawn as an upper half block: the foreground colour is
// the upper pixel and the background colour the lower one, so a cell
// carries two rows of the frame. Frames are sampled to the screen size
// and only cells under damaged pixels are redrawn.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/region"
)

// ErrClosed is returned by Present after Close.
var ErrClosed = errors.New("terminal: presenter closed")

const halfBlock = '▀'

// Presenter draws frames on a tcell screen.
type Presenter struct {
	mu     sync.Mutex
	screen tcell.Screen
	owned  bool
	// full forces the next Present to redraw every cell.
	full   bool
	last   image.Image
	cells  int
	closed bool
}

var _ compositor.Presenter = (*Presenter)(nil)

// Open initializes the controlling terminal. Close restores it.
func Open() (*Presenter, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.HideCursor()
	s.Clear()
	p := New(s)
	p.owned = true
	return p, nil
}

// New returns a presenter drawing on an initialized screen. The caller
// keeps ownership of s.
func New(s tcell.Screen) *Presenter {
	return &Presenter{screen: s, full: true}
}

// Screen returns the underlying screen.
func (p *Presenter) Screen() tcell.Screen { return p.screen }

// Cells returns the number of cells drawn so far.
func (p *Presenter) Cells() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cells
}

// Present redraws the cells covering damaged.
func (p *Presenter) Present(frame image.Image, damaged region.Region) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	cols, rows := p.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	fb := frame.Bounds()
	if p.full || p.last == nil || p.last.Bounds() != fb {
		damaged = region.Rect(fb)
		p.full = false
	}
	p.last = frame

	m := mapping{frame: fb, cols: cols, rows: rows}
	for _, r := range damaged.IntersectRect(fb).Rects() {
		cr := m.cells(r)
		for cy := cr.Min.Y; cy < cr.Max.Y; cy++ {
			for cx := cr.Min.X; cx < cr.Max.X; cx++ {
				top, bottom := m.pixels(cx, cy)
				style := tcell.StyleDefault.
					Foreground(rgb(frame.At(top.X, top.Y))).
					Background(rgb(frame.At(bottom.X, bottom.Y)))
				p.screen.SetContent(cx, cy, halfBlock, nil, style)
				p.cells++
			}
		}
	}
	p.screen.Show()
	return nil
}

// Invalidate makes the next Present redraw the whole screen.
func (p *Presenter) Invalidate() {
	p.mu.Lock()
	p.full = true
	p.mu.Unlock()
}

// Watch polls terminal events until ctx is done. quit runs for q, Esc
// and Ctrl-C, redraw after the terminal was resized.
func (p *Presenter) Watch(ctx context.Context, quit, redraw func()) {
	go func() {
		<-ctx.Done()
		_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()
	for {
		ev := p.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				quit()
			}
		case *tcell.EventResize:
			p.screen.Sync()
			p.Invalidate()
			logging.Logger().Debug("terminal: resized")
			redraw()
		}
	}
}

// Close restores the terminal if Open initialized it. Close is
// idempotent.
func (p *Presenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.owned {
		p.screen.Fini()
	}
	return nil
}

// mapping scales frame pixels to cells of two pixel rows each.
type mapping struct {
	frame      image.Rectangle
	cols, rows int
}

// cells returns the cells whose samples may lie in r.
func (m mapping) cells(r image.Rectangle) image.Rectangle {
	w, h := m.frame.Dx(), m.frame.Dy()
	r = r.Sub(m.frame.Min)
	return image.Rect(
		r.Min.X*m.cols/w,
		r.Min.Y*2*m.rows/h/2,
		min(ceilDiv(r.Max.X*m.cols, w), m.cols),
		min(ceilDiv(ceilDiv(r.Max.Y*2*m.rows, h), 2), m.rows),
	)
}

// pixels returns the frame pixels sampled for the upper and lower half
// of cell (cx, cy).
func (m mapping) pixels(cx, cy int) (top, bottom image.Point) {
	w, h := m.frame.Dx(), m.frame.Dy()
	x := m.frame.Min.X + (2*cx+1)*w/(2*m.cols)
	y0 := m.frame.Min.Y + (4*cy+1)*h/(4*m.rows)
	y1 := m.frame.Min.Y + (4*cy+3)*h/(4*m.rows)
	return image.Pt(x, y0), image.Pt(x, y1)
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func rgb(c color.Color) tcell.Color {
	n := color.RGBAModel.Convert(c).(color.RGBA)
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}
