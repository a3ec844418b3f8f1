package x11

import (
	"context"
	"errors"
	"image"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/compositor/event"
	"github.com/gogpu/compositor/win"
)

func newSpace() *win.Space { return win.NewSpace(event.NewQueue()) }

func client(id uint32, r image.Rectangle) Client {
	return Client{ID: id, Title: "term", Geometry: r, Desktop: 0}
}

func TestApplyCreatesDecoratedWindows(t *testing.T) {
	sp := newSpace()
	m := NewMirror(sp)
	m.Apply(Snapshot{Clients: []Client{client(7, image.Rect(10, 30, 110, 130))}})

	w, ok := m.Window(7)
	if !ok {
		t.Fatal("client 7 not mirrored")
	}
	if w.Kind() != win.KindX11 {
		t.Errorf("Kind() = %v, want x11", w.Kind())
	}
	if got := w.RenderGeometry(); got != image.Rect(10, 30, 110, 130) {
		t.Errorf("RenderGeometry() = %v, want the client rect", got)
	}
	if got, want := w.Geometry(), image.Rect(8, 12, 112, 132); got != want {
		t.Errorf("Geometry() = %v, want %v", got, want)
	}
	d, ok := w.Decoration()
	if !ok || d.Title != "term" {
		t.Errorf("Decoration() = %+v, %v", d, ok)
	}
	if _, ok := w.Content(); !ok {
		t.Error("mirrored window has no content")
	}
	if w.Desktop() != 1 {
		t.Errorf("Desktop() = %d, want 1", w.Desktop())
	}
}

func TestApplyUpdatesAndCloses(t *testing.T) {
	sp := newSpace()
	m := NewMirror(sp)
	m.Apply(Snapshot{Clients: []Client{
		client(1, image.Rect(0, 20, 50, 70)),
		client(2, image.Rect(60, 20, 90, 70)),
	}})
	a, _ := m.Window(1)
	b, _ := m.Window(2)

	moved := client(1, image.Rect(5, 25, 85, 95))
	moved.Title = "vim"
	moved.Active = true
	moved.Desktop = -1
	m.Apply(Snapshot{Clients: []Client{moved}, CurrentDesktop: 2})

	if got := a.RenderGeometry(); got != moved.Geometry {
		t.Errorf("RenderGeometry() = %v, want %v", got, moved.Geometry)
	}
	if a.Caption() != "vim" {
		t.Errorf("Caption() = %q, want vim", a.Caption())
	}
	if !a.State().Has(win.Active) {
		t.Error("active client not marked Active")
	}
	if a.Desktop() != 0 {
		t.Errorf("sticky client Desktop() = %d, want 0", a.Desktop())
	}
	if !b.State().Has(win.Deleted) {
		t.Error("vanished client not closed")
	}
	if _, ok := m.Window(2); ok || m.Len() != 1 {
		t.Errorf("mirror still tracks client 2, Len() = %d", m.Len())
	}
	if sp.CurrentDesktop() != 3 {
		t.Errorf("CurrentDesktop() = %d, want 3", sp.CurrentDesktop())
	}
}

func TestApplyHiddenAndFullscreen(t *testing.T) {
	sp := newSpace()
	m := NewMirror(sp)
	c := client(3, image.Rect(0, 20, 40, 60))
	c.Hidden = true
	c.Fullscreen = true
	m.Apply(Snapshot{Clients: []Client{c}})
	w, _ := m.Window(3)
	if !w.State().Has(win.Minimized | win.Fullscreen) {
		t.Errorf("State() = %v, want minimized and fullscreen", w.State())
	}

	c.Hidden = false
	m.Apply(Snapshot{Clients: []Client{c}})
	if w.State().Has(win.Minimized) {
		t.Error("restored client still minimized")
	}
}

func TestApplySkipsEmptyGeometry(t *testing.T) {
	m := NewMirror(newSpace())
	m.Apply(Snapshot{Clients: []Client{client(4, image.Rectangle{})}})
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestApplyRestacks(t *testing.T) {
	sp := newSpace()
	m := NewMirror(sp)
	r := image.Rect(0, 20, 40, 60)
	m.Apply(Snapshot{Clients: []Client{client(1, r), client(2, r), client(3, r)}})
	m.Apply(Snapshot{Clients: []Client{client(3, r), client(1, r), client(2, r)}})

	var got []uint32
	for _, w := range sp.Windows() {
		for id := uint32(1); id <= 3; id++ {
			if mw, _ := m.Window(id); mw == w {
				got = append(got, id)
			}
		}
	}
	if want := []uint32{3, 1, 2}; !slices.Equal(got, want) {
		t.Errorf("stacking = %v, want %v", got, want)
	}
}

func TestPlaceholderStable(t *testing.T) {
	if placeholder(42) != placeholder(42) {
		t.Error("placeholder colour differs for the same id")
	}
	if c := placeholder(42); c.A != 255 || c.R < 64 || c.R >= 192 {
		t.Errorf("placeholder = %v, want an opaque mid tone", c)
	}
}

type fakeQuerier struct {
	mu    sync.Mutex
	snaps []Snapshot
	calls int
}

func (q *fakeQuerier) Snapshot() (Snapshot, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if len(q.snaps) == 0 {
		return Snapshot{}, errors.New("no display")
	}
	s := q.snaps[0]
	if len(q.snaps) > 1 {
		q.snaps = q.snaps[1:]
	}
	return s, nil
}

func TestRunAppliesOnChange(t *testing.T) {
	sp := newSpace()
	m := NewMirror(sp)
	r := image.Rect(0, 20, 40, 60)
	q := &fakeQuerier{snaps: []Snapshot{
		{Clients: []Client{client(1, r)}},
		{Clients: []Client{client(1, r), client(2, r)}},
	}}
	changed := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, q, changed, 0) }()

	changed <- struct{}{}
	// The second send returns once the loop has applied the snapshot
	// taken after the first.
	changed <- struct{}{}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	if len(sp.Windows()) != 2 {
		t.Errorf("windows = %d, want 2", len(sp.Windows()))
	}
}

func TestRunSurvivesSnapshotErrors(t *testing.T) {
	m := NewMirror(newSpace())
	q := &fakeQuerier{}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := m.Run(ctx, q, nil, 5*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want context.DeadlineExceeded", err)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.calls < 2 {
		t.Errorf("Snapshot calls = %d, want polling", q.calls)
	}
}
