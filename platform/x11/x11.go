// Package x11 mirrors the windows of an X11 desktop into a win.Space.
//
// The window manager stays in charge: the mirror reads the EWMH client
// list in stacking order with each client's geometry, title, desktop
// and state, and keeps one compositor window per client in sync with it.
// Client pixels are not captured; every client is shown as a decorated
// pane in a colour derived from its id.
package x11

import (
	"errors"
	"image"
)

// ErrNoDisplay is returned when no X server can be reached.
var ErrNoDisplay = errors.New("x11: cannot connect to display")

// Client is one top-level X window.
type Client struct {
	ID       uint32
	Title    string
	Geometry image.Rectangle
	// Desktop is the 0-based desktop, or -1 for sticky windows.
	Desktop    int
	Active     bool
	Hidden     bool
	Fullscreen bool
}

// Snapshot is the desktop state at one point in time.
type Snapshot struct {
	// Clients are ordered bottom to top.
	Clients        []Client
	CurrentDesktop int
	Screen         image.Rectangle
}

// Querier reads desktop snapshots.
type Querier interface {
	Snapshot() (Snapshot, error)
}
