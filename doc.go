// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package compositor is a window compositor core for Go.
//
// # Overview
//
// A [Compositor] owns a window space, a scene, an effect chain and an
// output backend. Windows publish their changes to an event queue; once
// per frame the scene drains it, runs the effect stages, culls occluded
// windows and hands the remaining quads to the backend. The result is
// shown through any number of [Presenter] implementations.
//
// # Quick Start
//
//	c, err := compositor.New(image.Rect(0, 0, 1280, 720),
//	    compositor.WithEffects(builtin.FadeName, builtin.GlowName),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	w := c.Space().NewWindow(win.Options{Geometry: image.Rect(100, 100, 500, 400), Managed: true})
//	w.SetContent(img)
//
//	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    log.Fatal(err)
//	}
//
// # Architecture
//
// The module is organized into:
//   - Data: region, quad, paint, event
//   - Windows: win (logical windows), scene (render windows, buffers, painters)
//   - Effects: effect (chain, registry, handler), effect/builtin
//   - Output: backend (registry), backend/software, backend/native
//   - Presentation: present/terminal, integration/gpucanvas
//
// # Threading
//
// Windows may be changed from any goroutine. Everything else runs on the
// goroutine calling [Compositor.Composite] or [Compositor.Run].
//
// # Logging
//
// The compositor is silent by default. See [SetLogger].
package compositor

// Version is the current version of the library.
const Version = "0.1.0"
