package native

import (
	"image"
	"testing"
	"time"
)

func TestThumbnailUpdateAndAcquire(t *testing.T) {
	out := newTestOutput(t, WithFenceTimeout(time.Millisecond))
	s, sp := newTestScene(out)
	w := mapWindow(sp, image.Rect(4, 4, 20, 12))
	s.ProcessEvents()
	rw, _ := s.WindowByID(w.ID())

	c, err := out.NewThumbnailCache(s)
	if err != nil {
		t.Fatalf("NewThumbnailCache() error = %v", err)
	}
	if err := c.Update(rw.EffectWindow()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	th, ok := c.Acquire(w.ID())
	if !ok {
		t.Fatal("Acquire() found no thumbnail")
	}
	if th.Size() != image.Pt(16, 8) {
		t.Errorf("Size() = %v, want 16x8", th.Size())
	}
	if th.Texture() == nil || th.View() == nil {
		t.Error("thumbnail has no texture")
	}

	// Same size: the texture is reused.
	if err := c.Update(rw.EffectWindow()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if again, _ := c.Acquire(w.ID()); again != th {
		t.Error("second Update replaced a same sized thumbnail")
	}
	if c.IsActive() {
		t.Error("IsActive() = true, want false")
	}
}

func TestThumbnailLimit(t *testing.T) {
	out := newTestOutput(t, WithThumbnailLimit(1))
	s, sp := newTestScene(out)
	a := mapWindow(sp, image.Rect(0, 0, 8, 8))
	b := mapWindow(sp, image.Rect(10, 0, 18, 8))
	s.ProcessEvents()
	c, err := out.NewThumbnailCache(s)
	if err != nil {
		t.Fatalf("NewThumbnailCache() error = %v", err)
	}
	for _, w := range []uint64{a.ID(), b.ID()} {
		rw, _ := s.WindowByID(w)
		if err := c.Update(rw.EffectWindow()); err != nil {
			t.Fatalf("Update(%d) error = %v", w, err)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Acquire(a.ID()); ok {
		t.Error("least recently used thumbnail still cached")
	}
}

func TestThumbnailForgottenOnDelete(t *testing.T) {
	out := newTestOutput(t)
	s, sp := newTestScene(out)
	w := mapWindow(sp, image.Rect(0, 0, 8, 8))
	s.ProcessEvents()
	rw, _ := s.WindowByID(w.ID())

	c, err := out.NewThumbnailCache(s)
	if err != nil {
		t.Fatalf("NewThumbnailCache() error = %v", err)
	}
	if err := s.Effects().Load("thumbnails", c); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := c.Update(rw.EffectWindow()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	sp.Close(w)
	for range 3 {
		s.ProcessEvents()
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after the window was deleted, want 0", c.Len())
	}
}

func TestThumbnailCacheDestroyed(t *testing.T) {
	out := newTestOutput(t)
	s, sp := newTestScene(out)
	w := mapWindow(sp, image.Rect(0, 0, 8, 8))
	s.ProcessEvents()
	rw, _ := s.WindowByID(w.ID())

	c, err := out.NewThumbnailCache(s)
	if err != nil {
		t.Fatalf("NewThumbnailCache() error = %v", err)
	}
	c.Destroy()
	if err := c.Update(rw.EffectWindow()); err != ErrClosed {
		t.Errorf("Update() after Destroy error = %v, want ErrClosed", err)
	}
	if _, ok := c.Acquire(w.ID()); ok {
		t.Error("Acquire() after Destroy found a thumbnail")
	}
	c.Destroy()
}
