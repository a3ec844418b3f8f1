package scene

import "github.com/gogpu/compositor/region"

// Buffer maps a window's pixel content to something the backend can draw.
//
// A buffer starts invalid. Create tries to make it valid and may fail, for
// example while the window has no content; the window is then skipped
// when drawing. A discarded buffer is a former current buffer kept as the
// window's previous buffer.
type Buffer interface {
	// Create tries to make the buffer valid and reports whether it is.
	Create() bool
	IsValid() bool
	IsDiscarded() bool
	MarkDiscarded()
	// Release frees the backend resources. The buffer is unusable after.
	Release()
}

// Updater is implemented by buffers that copy content and must refresh a
// damaged region. r is relative to the render geometry origin.
type Updater interface {
	Update(r region.Region)
}

// BufferBase implements the discard bookkeeping of Buffer. Backends
// embed it.
type BufferBase struct {
	discarded bool
}

func (b *BufferBase) IsDiscarded() bool { return b.discarded }
func (b *BufferBase) MarkDiscarded()    { b.discarded = true }

// BufferOf returns w's drawable buffer as a T.
func BufferOf[T Buffer](w *Window) (T, bool) {
	var zero T
	b := w.Buffer()
	if b == nil {
		return zero, false
	}
	t, ok := b.(T)
	return t, ok
}

// PreviousBufferOf returns w's previous buffer as a T.
func PreviousBufferOf[T Buffer](w *Window) (T, bool) {
	var zero T
	b := w.PreviousBuffer()
	if b == nil {
		return zero, false
	}
	t, ok := b.(T)
	return t, ok
}
