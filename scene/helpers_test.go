package scene

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/gogpu/compositor/event"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/win"
)

var testDisplay = image.Rect(0, 0, 100, 100)

type fakeBuffer struct {
	BufferBase
	be       *fakeBackend
	valid    bool
	released bool
	updates  int
}

func (b *fakeBuffer) Create() bool {
	if b.be.failCreate {
		return false
	}
	b.valid = true
	return true
}

func (b *fakeBuffer) IsValid() bool          { return b.valid && !b.released }
func (b *fakeBuffer) Release()               { b.released = true }
func (b *fakeBuffer) Update(r region.Region) { b.updates++ }

type drawCall struct {
	id     uint64
	mask   paint.Mask
	region region.Region
	quads  quad.List
	data   paint.WindowPaintData
}

type fakeBackend struct {
	failCreate bool
	buffers    []*fakeBuffer
	setups     int
	background region.Region
	draws      []drawCall
}

func (be *fakeBackend) CreateBuffer(w *Window) Buffer {
	b := &fakeBuffer{be: be}
	be.buffers = append(be.buffers, b)
	return b
}

func (be *fakeBackend) SetupBuffer(Buffer) { be.setups++ }

func (be *fakeBackend) PaintBackground(r region.Region) {
	be.background = be.background.Union(r)
}

func (be *fakeBackend) PerformPaint(w *Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData) {
	be.draws = append(be.draws, drawCall{
		id:     w.Toplevel().ID(),
		mask:   mask,
		region: r,
		quads:  data.Quads.Clone(),
		data:   *data,
	})
}

func (be *fakeBackend) drawnIDs() []uint64 {
	ids := make([]uint64, len(be.draws))
	for i, d := range be.draws {
		ids[i] = d.id
	}
	return ids
}

func newTestScene(t *testing.T) (*Scene, *win.Space, *fakeBackend) {
	t.Helper()
	q := event.NewQueue()
	sp := win.NewSpace(q)
	be := &fakeBackend{}
	s := New(Config{Backend: be, Stack: sp, Queue: q, Display: testDisplay})
	return s, sp, be
}

// mapWindow creates a managed window showing a solid colour.
func mapWindow(sp *win.Space, r image.Rectangle) *win.Window {
	w := sp.NewWindow(win.Options{Geometry: r, Managed: true})
	img := image.NewRGBA(image.Rectangle{Max: r.Size()})
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 200, A: 255}), image.Point{}, draw.Src)
	w.SetContent(img)
	return w
}

// settle applies pending events and drops the repaints they caused.
func settle(s *Scene) {
	s.ProcessEvents()
	s.TakeRepaints()
}

func renderWindow(t *testing.T, s *Scene, w *win.Window) *Window {
	t.Helper()
	rw, ok := s.WindowByID(w.ID())
	if !ok {
		t.Fatalf("no render window for %d", w.ID())
	}
	return rw
}
