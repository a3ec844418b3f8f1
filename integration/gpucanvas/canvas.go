// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucanvas

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/gpucontext"
)

// Common errors returned by Canvas operations.
var (
	// ErrCanvasClosed is returned when operations are attempted on a closed canvas.
	ErrCanvasClosed = errors.New("gpucanvas: canvas is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("gpucanvas: invalid dimensions")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("gpucanvas: nil DeviceProvider")
)

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// Canvas presents compositor frames through a GPU texture.
//
// Present and RenderTo may run on different goroutines.
type Canvas struct {
	provider gpucontext.DeviceProvider

	mu          sync.Mutex
	staging     *image.RGBA
	texture     any // created lazily by RenderTo
	oldTexture  any // replaced texture awaiting destruction
	dirty       bool
	sizeChanged bool
	presents    int
	uploads     int
	closed      bool
}

var _ compositor.Presenter = (*Canvas)(nil)

// New creates a Canvas of the given size. The provider should come from
// gogpu.App.GPUContextProvider().
func New(provider gpucontext.DeviceProvider, width, height int) (*Canvas, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	return &Canvas{
		provider: provider,
		staging:  image.NewRGBA(image.Rect(0, 0, width, height)),
		dirty:    true,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(provider gpucontext.DeviceProvider, width, height int) *Canvas {
	c, err := New(provider, width, height)
	if err != nil {
		panic(err)
	}
	return c
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.staging.Bounds()
	return b.Dx(), b.Dy()
}

// Present copies the damaged part of frame into the staging image.
func (c *Canvas) Present(frame image.Image, damaged region.Region) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCanvasClosed
	}
	fb := frame.Bounds()
	if fb.Size() != c.staging.Bounds().Size() {
		c.resizeLocked(fb.Dx(), fb.Dy())
		damaged = region.Rect(fb)
	}
	for _, r := range damaged.IntersectRect(fb).Rects() {
		dr := r.Sub(fb.Min)
		draw.Draw(c.staging, dr, frame, r.Min, draw.Src)
	}
	c.presents++
	c.dirty = true
	return nil
}

// Resize changes the canvas size and clears it. The texture is
// recreated by the next RenderTo.
func (c *Canvas) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCanvasClosed
	}
	c.resizeLocked(width, height)
	return nil
}

func (c *Canvas) resizeLocked(width, height int) {
	if b := c.staging.Bounds(); b.Dx() == width && b.Dy() == height {
		return
	}
	c.staging = image.NewRGBA(image.Rect(0, 0, width, height))
	c.sizeChanged = true
	c.dirty = true
}

// IsDirty reports whether a presented frame awaits upload.
func (c *Canvas) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Stats returns the number of frames presented and uploaded.
func (c *Canvas) Stats() (presents, uploads int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presents, c.uploads
}

// Texture returns the current GPU texture, or nil before the first
// RenderTo.
func (c *Canvas) Texture() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.texture
}

// Provider returns the DeviceProvider, or nil once closed.
func (c *Canvas) Provider() gpucontext.DeviceProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.provider
}

// Close releases the textures. Close is idempotent.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	destroy(c.oldTexture)
	destroy(c.texture)
	c.oldTexture, c.texture = nil, nil
	c.provider = nil
	return nil
}

func destroy(tex any) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}
