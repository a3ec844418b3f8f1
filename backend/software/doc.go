// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software implements a CPU compositing backend.
//
// Window buffers are copies of the client content. Quads are drawn with
// golang.org/x/image/draw scalers and composited with premultiplied
// source-over blending. The output is a small swap chain of images whose
// buffer ages let the scene repaint only what changed since a buffer was
// last shown.
//
//	b := software.New(image.Rect(0, 0, 1280, 720))
//	s := scene.New(scene.Config{Backend: b, ...})
//	repaint := b.BeginFrame(damage)
//	res := s.PaintScreen(damage, repaint, now)
//	b.EndFrame(res.Damaged)
//	frame := b.Front()
package software
