// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native presents composed frames through a GPU texture using the
// gogpu/wgpu HAL.
//
// Composition itself runs on the software rasterizer; after every frame
// the damaged part of the front buffer is uploaded to the output texture,
// which a host samples with the composite shader or its own pipeline.
//
// The package also keeps offscreen window thumbnails on the GPU. Every
// upload signals a fence and readers wait on it with a bounded timeout
// before sampling, so a thumbnail drawn by another pass never shows a
// half-written texture. A wait that times out is logged and the possibly
// stale texture is used anyway.
//
// Importing the package registers the "native" backend, which runs on
// the headless HAL device:
//
//	import _ "github.com/gogpu/compositor/backend/native"
//
// Hosts with a real device create the output directly:
//
//	out, err := native.NewOutput(device, queue, image.Rect(0, 0, 1920, 1080))
package native
