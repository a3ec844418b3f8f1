// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpucanvas shows composed frames in a gogpu window.
//
// The data flow is:
//
//	Compositor (frame) -> Canvas.Present (CPU staging) -> GPU Texture -> Window
//
// # Architecture
//
// Canvas is a compositor.Presenter. Present copies the damaged part of
// each frame into a staging image; RenderTo, called from the window's
// draw callback, uploads the staging image to a texture and draws it.
// The two sides may run on different goroutines.
//
// # Usage
//
//	canvas, err := gpucanvas.New(app.GPUContextProvider(), 1280, 720)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err := compositor.New(image.Rect(0, 0, 1280, 720), compositor.WithPresenter(canvas))
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    canvas.RenderTo(dc.AsTextureDrawer())
//	})
package gpucanvas
