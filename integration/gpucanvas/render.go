// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucanvas

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Rendering errors.
var (
	// ErrInvalidTexture is returned when the texture created by the draw
	// context is not a gpucontext.Texture.
	ErrInvalidTexture = errors.New("gpucanvas: texture is not a gpucontext.Texture")

	// ErrInvalidRenderer is returned when the draw context has no
	// texture creator.
	ErrInvalidRenderer = errors.New("gpucanvas: draw context has no TextureCreator")
)

// target is the part of a draw context RenderTo needs.
type target interface {
	newTexture(width, height int, data []byte) (any, error)
	drawTexture(tex any, x, y float32) error
}

// drawer adapts a gpucontext.TextureDrawer.
type drawer struct {
	dc gpucontext.TextureDrawer
}

func (d drawer) newTexture(width, height int, data []byte) (any, error) {
	creator := d.dc.TextureCreator()
	if creator == nil {
		return nil, ErrInvalidRenderer
	}
	tex, err := creator.NewTextureFromRGBA(width, height, data)
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func (d drawer) drawTexture(tex any, x, y float32) error {
	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidTexture
	}
	return d.dc.DrawTexture(gpuTex, x, y)
}

// RenderTo uploads the latest frame if needed and draws it at (0, 0).
//
// Example:
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    canvas.RenderTo(dc.AsTextureDrawer())
//	})
func (c *Canvas) RenderTo(dc gpucontext.TextureDrawer) error {
	return c.render(drawer{dc}, 0, 0)
}

// RenderToPosition draws the frame with its top-left corner at (x, y).
func (c *Canvas) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	return c.render(drawer{dc}, x, y)
}

func (c *Canvas) render(t target, x, y float32) error {
	tex, err := c.flush(t)
	if err != nil {
		return err
	}
	return t.drawTexture(tex, x, y)
}

// flush brings the texture up to date with the staging image.
func (c *Canvas) flush(t target) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCanvasClosed
	}

	if c.sizeChanged && c.texture != nil {
		// The old texture may still be read by in-flight command buffers.
		// It is destroyed once its replacement has been written.
		destroy(c.oldTexture)
		c.oldTexture, c.texture = c.texture, nil
	}
	c.sizeChanged = false

	if !c.dirty && c.texture != nil {
		return c.texture, nil
	}

	b := c.staging.Bounds()
	if c.texture == nil {
		tex, err := t.newTexture(b.Dx(), b.Dy(), c.staging.Pix)
		if err != nil {
			return nil, fmt.Errorf("gpucanvas: create texture: %w", err)
		}
		// image.RGBA is premultiplied.
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		c.texture = tex
		destroy(c.oldTexture)
		c.oldTexture = nil
	} else if updater, ok := c.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(c.staging.Pix); err != nil {
			return nil, fmt.Errorf("gpucanvas: texture update: %w", err)
		}
	}
	c.uploads++
	c.dirty = false
	return c.texture, nil
}
