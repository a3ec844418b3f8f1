// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package builtin provides the effects shipped with the compositor.
//
//   - fade: windows fade in when they appear and fade out when they
//     close; closed windows stay on screen as remnants until the fade
//     ends.
//   - diminactive: inactive windows are drawn darker and less saturated.
//   - zoom: magnifies the whole screen around a focus point.
//   - glow: outlines the active window with extra quads.
//   - crossfade: blends the old window content into the new one after a
//     resize.
//
// Register adds them all to an effect registry:
//
//	reg := effect.NewRegistry()
//	if err := builtin.Register(reg, builtin.DefaultOptions()); err != nil {
//		return err
//	}
package builtin
