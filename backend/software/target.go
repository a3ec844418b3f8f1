package software

import (
	"image"

	"github.com/gogpu/compositor/region"
)

// maxBuffers bounds the swap chain length.
const maxBuffers = 4

// Target is the output swap chain. Every buffer remembers how many frames
// ago it was last drawn; a buffer of age n is brought up to date by
// repainting the damage of the n-1 frames shown since.
type Target struct {
	rect    image.Rectangle
	buffers []*image.RGBA
	ages    []int
	// history holds the damage of past frames, newest last.
	history []region.Region
	back    int
	front   int
}

// NewTarget returns a swap chain of n buffers covering r.
func NewTarget(r image.Rectangle, n int) *Target {
	n = min(max(n, 1), maxBuffers)
	t := &Target{rect: r, front: -1}
	for range n {
		t.buffers = append(t.buffers, image.NewRGBA(r))
		t.ages = append(t.ages, 0)
	}
	return t
}

// Rect returns the area the target covers.
func (t *Target) Rect() image.Rectangle { return t.rect }

// Len returns the number of buffers in the chain.
func (t *Target) Len() int { return len(t.buffers) }

// Back returns the buffer being drawn.
func (t *Target) Back() *image.RGBA { return t.buffers[t.back] }

// Age returns the age of the back buffer. Zero means its content is
// undefined.
func (t *Target) Age() int { return t.ages[t.back] }

// BeginFrame returns the region the back buffer misses compared to the
// last frame: the damage since it was last shown, or everything when its
// age is unknown.
func (t *Target) BeginFrame(damage region.Region) region.Region {
	age := t.ages[t.back]
	if age == 0 || age-1 > len(t.history) {
		return region.Rect(t.rect)
	}
	var r region.Region
	for _, h := range t.history[len(t.history)-(age-1):] {
		r = r.Union(h)
	}
	return r.Subtract(damage)
}

// EndFrame records damaged and makes the back buffer the front.
func (t *Target) EndFrame(damaged region.Region) {
	t.history = append(t.history, damaged.IntersectRect(t.rect))
	if len(t.history) > len(t.buffers) {
		t.history = t.history[1:]
	}
	for i, a := range t.ages {
		if a > 0 {
			t.ages[i] = a + 1
		}
	}
	t.ages[t.back] = 1
	t.front = t.back
	t.back = (t.back + 1) % len(t.buffers)
}

// Front returns the last completed frame. Before the first frame it is
// the blank back buffer.
func (t *Target) Front() *image.RGBA {
	if t.front < 0 {
		return t.buffers[t.back]
	}
	return t.buffers[t.front]
}
