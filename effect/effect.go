// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package effect implements the effects chain: an ordered list of visual
// effects that intercept the paint stages of every frame.
//
// Each stage is walked as a chain of responsibility. The handler calls the
// first effect implementing the stage and passes it a continuation; the
// effect mutates the stage data and calls Continue to hand over to the next
// effect. After the last effect the scene's terminal implementation runs.
//
// Continuations are values owned by a single walk, so nested walks (an
// effect drawing another window from inside its own paint call) never share
// iterator state. An effect that panics or never calls Continue does not
// break the frame: the walk resumes with the data as the effect left it and
// the terminal implementation runs exactly once per walk.
package effect

import (
	"image"
	"time"

	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
)

// Effect is a loaded visual effect. Stages are opted into by implementing
// the stage interfaces below. Effects are compared by identity, so
// implementations should be pointer types.
type Effect interface {
	// IsActive reports whether the effect takes part in the next frame.
	// It is sampled once per frame.
	IsActive() bool
}

// Stage interfaces.

type ScreenPrePainter interface {
	PrePaintScreen(data *paint.ScreenPrePaintData, presentTime time.Duration, next PrePaintScreenNext)
}

type ScreenPainter interface {
	PaintScreen(mask paint.Mask, r region.Region, data *paint.ScreenPaintData, next PaintScreenNext)
}

type ScreenPostPainter interface {
	PostPaintScreen(next PostPaintScreenNext)
}

type WindowPrePainter interface {
	PrePaintWindow(w Window, data *paint.WindowPrePaintData, presentTime time.Duration, next PrePaintWindowNext)
}

type WindowPainter interface {
	PaintWindow(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData, next PaintWindowNext)
}

type WindowDrawer interface {
	DrawWindow(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData, next DrawWindowNext)
}

type WindowPostPainter interface {
	PostPaintWindow(w Window, next PostPaintWindowNext)
}

// QuadBuilder effects add or modify quads when a window's quad cache is
// rebuilt.
type QuadBuilder interface {
	BuildQuads(w Window, quads *quad.List, next BuildQuadsNext)
}

// Continuations.

type PrePaintScreenNext struct {
	fn func(*paint.ScreenPrePaintData, time.Duration)
}

func (n PrePaintScreenNext) Continue(data *paint.ScreenPrePaintData, presentTime time.Duration) {
	n.fn(data, presentTime)
}

type PaintScreenNext struct {
	fn func(paint.Mask, region.Region, *paint.ScreenPaintData)
}

func (n PaintScreenNext) Continue(mask paint.Mask, r region.Region, data *paint.ScreenPaintData) {
	n.fn(mask, r, data)
}

type PostPaintScreenNext struct {
	fn func()
}

func (n PostPaintScreenNext) Continue() { n.fn() }

type PrePaintWindowNext struct {
	fn func(Window, *paint.WindowPrePaintData, time.Duration)
}

func (n PrePaintWindowNext) Continue(w Window, data *paint.WindowPrePaintData, presentTime time.Duration) {
	n.fn(w, data, presentTime)
}

type PaintWindowNext struct {
	fn func(Window, paint.Mask, region.Region, *paint.WindowPaintData)
}

func (n PaintWindowNext) Continue(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData) {
	n.fn(w, mask, r, data)
}

type DrawWindowNext struct {
	fn func(Window, paint.Mask, region.Region, *paint.WindowPaintData)
}

func (n DrawWindowNext) Continue(w Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData) {
	n.fn(w, mask, r, data)
}

type PostPaintWindowNext struct {
	fn func(Window)
}

func (n PostPaintWindowNext) Continue(w Window) { n.fn(w) }

type BuildQuadsNext struct {
	fn func(Window, *quad.List)
}

func (n BuildQuadsNext) Continue(w Window, quads *quad.List) { n.fn(w, quads) }

// Optional behaviour.

// Positioner effects request a place in the chain. Lower positions run
// first. Effects without one sit at position 0.
type Positioner interface {
	RequestedEffectChainPosition() int
}

type Reconfigurer interface {
	Reconfigure()
}

// Destroyer effects release resources when unloaded.
type Destroyer interface {
	Destroy()
}

type KeyHandler interface {
	GrabbedKeyboardEvent(ev KeyEvent)
}

type MouseHandler interface {
	WindowInputMouseEvent(ev MouseEvent)
}

// Notification observers. Notifications are delivered between frames to
// every loaded effect implementing the interface.

type WindowAddedObserver interface {
	WindowAdded(w Window)
}

type WindowClosedObserver interface {
	WindowClosed(w Window)
}

type WindowDeletedObserver interface {
	WindowDeleted(w Window)
}

type WindowGeometryObserver interface {
	WindowGeometryChanged(w Window, old image.Rectangle)
}

type WindowStateObserver interface {
	WindowStateChanged(w Window)
}

type StackingObserver interface {
	StackingOrderChanged()
}

type FullScreenObserver interface {
	ActiveFullScreenEffectChanged()
}
