package x11

import (
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"slices"
	"time"

	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/win"
)

// DefaultMargins frame every mirrored client.
var DefaultMargins = win.Margins{Left: 2, Top: 18, Right: 2, Bottom: 2}

// Mirror keeps a win.Space in step with X11 snapshots.
type Mirror struct {
	space   *win.Space
	margins win.Margins
	windows map[uint32]*win.Window
}

// NewMirror returns a mirror creating windows in sp.
func NewMirror(sp *win.Space) *Mirror {
	return &Mirror{space: sp, margins: DefaultMargins, windows: make(map[uint32]*win.Window)}
}

// Window returns the compositor window mirroring client id.
func (m *Mirror) Window(id uint32) (*win.Window, bool) {
	w, ok := m.windows[id]
	return w, ok
}

// Len returns the number of mirrored clients.
func (m *Mirror) Len() int { return len(m.windows) }

// Apply brings the space in line with s. Clients missing from s are
// closed, new ones are created, and the stacking order follows s.
func (m *Mirror) Apply(s Snapshot) {
	seen := make(map[uint32]bool, len(s.Clients))
	order := make([]*win.Window, 0, len(s.Clients))
	for _, c := range s.Clients {
		if c.Geometry.Empty() {
			continue
		}
		seen[c.ID] = true
		w, ok := m.windows[c.ID]
		if !ok {
			w = m.create(c)
		} else {
			m.update(w, c)
		}
		order = append(order, w)
	}
	for id, w := range m.windows {
		if !seen[id] {
			logging.Logger().Debug("x11: client gone", "id", id)
			m.space.Close(w)
			delete(m.windows, id)
		}
	}
	m.restack(order)
	if d := s.CurrentDesktop + 1; d != m.space.CurrentDesktop() {
		m.space.SetCurrentDesktop(d)
	}
}

func (m *Mirror) frame(r image.Rectangle) image.Rectangle {
	return image.Rect(r.Min.X-m.margins.Left, r.Min.Y-m.margins.Top,
		r.Max.X+m.margins.Right, r.Max.Y+m.margins.Bottom)
}

func (m *Mirror) create(c Client) *win.Window {
	logging.Logger().Debug("x11: client added", "id", c.ID, "title", c.Title, "geometry", c.Geometry)
	w := m.space.NewWindow(win.Options{
		Kind:       win.KindX11,
		Caption:    c.Title,
		Geometry:   m.frame(c.Geometry),
		Managed:    true,
		Desktop:    desktop(c.Desktop),
		Decoration: &win.Decoration{Margins: m.margins, Title: c.Title},
	})
	m.windows[c.ID] = w
	m.setState(w, c)
	w.SetContent(image.NewUniform(placeholder(c.ID)))
	return w
}

func (m *Mirror) update(w *win.Window, c Client) {
	if w.Caption() != c.Title {
		w.SetCaption(c.Title)
	}
	if f := m.frame(c.Geometry); f != w.Geometry() {
		resized := f.Size() != w.Geometry().Size()
		w.SetGeometry(f)
		if resized {
			w.SetContent(image.NewUniform(placeholder(c.ID)))
		}
	}
	m.setState(w, c)
}

func (m *Mirror) setState(w *win.Window, c Client) {
	st := w.State()
	if st.Has(win.Active) != c.Active {
		w.SetState(win.Active, c.Active)
	}
	if st.Has(win.Minimized) != c.Hidden {
		w.SetState(win.Minimized, c.Hidden)
	}
	if st.Has(win.Fullscreen) != c.Fullscreen {
		w.SetState(win.Fullscreen, c.Fullscreen)
	}
	if d := desktop(c.Desktop); d != w.Desktop() {
		w.SetDesktop(d)
	}
}

// restack raises windows bottom to top when the mirrored order differs
// from the space's.
func (m *Mirror) restack(order []*win.Window) {
	var current []*win.Window
	for _, w := range m.space.Windows() {
		if slices.Contains(order, w) {
			current = append(current, w)
		}
	}
	if slices.Equal(current, order) {
		return
	}
	for _, w := range order {
		m.space.Raise(w)
	}
}

// Run applies a snapshot from q, then one more every time changed fires
// or the poll interval passes. A zero interval disables polling. It
// returns when ctx is done.
func (m *Mirror) Run(ctx context.Context, q Querier, changed <-chan struct{}, poll time.Duration) error {
	var tick <-chan time.Time
	if poll > 0 {
		t := time.NewTicker(poll)
		defer t.Stop()
		tick = t.C
	}
	for {
		s, err := q.Snapshot()
		if err != nil {
			logging.Logger().Warn("x11: snapshot failed", "err", err)
		} else {
			m.Apply(s)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		case <-tick:
		}
	}
}

// desktop maps an X desktop index to the space's numbering, where 0
// means every desktop.
func desktop(d int) int {
	if d < 0 {
		return 0
	}
	return d + 1
}

// placeholder derives a stable mid-tone colour from a client id.
func placeholder(id uint32) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)})
	v := h.Sum32()
	return color.RGBA{
		R: 64 + uint8(v)%128,
		G: 64 + uint8(v>>8)%128,
		B: 64 + uint8(v>>16)%128,
		A: 255,
	}
}
