// Package event carries window change notifications from window producers to
// the compositor loop.
package event

import (
	"fmt"
	"image"

	"github.com/gogpu/compositor/region"
)

// Kind identifies what changed.
type Kind uint8

const (
	WindowAdded Kind = iota + 1
	WindowClosed
	WindowDeleted
	GeometryChanged
	ShapeChanged
	DecorationChanged
	ShadowChanged
	ContentDamaged
	ContentStale
	OpacityChanged
	StackingChanged
	StateChanged
	OutputChanged
)

var kindNames = [...]string{
	WindowAdded:       "WindowAdded",
	WindowClosed:      "WindowClosed",
	WindowDeleted:     "WindowDeleted",
	GeometryChanged:   "GeometryChanged",
	ShapeChanged:      "ShapeChanged",
	DecorationChanged: "DecorationChanged",
	ShadowChanged:     "ShadowChanged",
	ContentDamaged:    "ContentDamaged",
	ContentStale:      "ContentStale",
	OpacityChanged:    "OpacityChanged",
	StackingChanged:   "StackingChanged",
	StateChanged:      "StateChanged",
	OutputChanged:     "OutputChanged",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// InvalidatesQuads reports whether events of kind k make a window's cached
// quads stale.
func (k Kind) InvalidatesQuads() bool {
	switch k {
	case GeometryChanged, ShapeChanged, DecorationChanged, ShadowChanged:
		return true
	}
	return false
}

// Event is one change notification.
type Event struct {
	Kind   Kind
	Window uint64
	// Region is the damaged area, in window-local coordinates, for
	// ContentDamaged events.
	Region region.Region
	// Old is the previous frame geometry for GeometryChanged events.
	Old image.Rectangle
}

func (e Event) String() string {
	return fmt.Sprintf("%v(window=%d)", e.Kind, e.Window)
}
