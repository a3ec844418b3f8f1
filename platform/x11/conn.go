package x11

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/gogpu/compositor/internal/logging"
)

// Conn is a connection to the X server.
type Conn struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

var _ Querier = (*Conn)(nil)

// Open connects to the display named by $DISPLAY.
func Open() (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	return &Conn{XUtil: xu, Root: xu.RootWin()}, nil
}

// Close disconnects from the X server.
func (c *Conn) Close() {
	c.XUtil.Conn().Close()
}

// Snapshot reads the client list in stacking order.
func (c *Conn) Snapshot() (Snapshot, error) {
	var s Snapshot
	root, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return s, fmt.Errorf("x11: root geometry: %w", err)
	}
	s.Screen = image.Rect(0, 0, int(root.Width), int(root.Height))

	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		return s, fmt.Errorf("x11: client list: %w", err)
	}
	if d, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		s.CurrentDesktop = int(d)
	}
	active, _ := ewmh.ActiveWindowGet(c.XUtil)

	for _, id := range clients {
		if !c.isNormal(id) {
			continue
		}
		r, ok := c.geometry(id)
		if !ok {
			continue
		}
		cl := Client{
			ID:       uint32(id),
			Title:    c.title(id),
			Geometry: r,
			Desktop:  -1,
			Active:   id == active,
		}
		if d, err := ewmh.WmDesktopGet(c.XUtil, id); err == nil && d != 0xFFFFFFFF {
			cl.Desktop = int(d)
		}
		if states, err := ewmh.WmStateGet(c.XUtil, id); err == nil {
			for _, st := range states {
				switch st {
				case "_NET_WM_STATE_HIDDEN":
					cl.Hidden = true
				case "_NET_WM_STATE_FULLSCREEN":
					cl.Fullscreen = true
				}
			}
		}
		s.Clients = append(s.Clients, cl)
	}
	return s, nil
}

// Watch calls changed whenever a root window property changes, which
// covers the client list, stacking order, active window and current
// desktop. It blocks until ctx is done.
func (c *Conn) Watch(ctx context.Context, changed func()) error {
	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("x11: listen on root: %w", err)
	}
	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		changed()
	}).Connect(c.XUtil, c.Root)

	done := make(chan struct{})
	go func() {
		defer close(done)
		xevent.Main(c.XUtil)
	}()
	select {
	case <-ctx.Done():
		xevent.Quit(c.XUtil)
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *Conn) isNormal(id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, id)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Conn) geometry(id xproto.Window) (image.Rectangle, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(id)).Reply()
	if err != nil {
		logging.Logger().Debug("x11: geometry", "window", id, "err", err)
		return image.Rectangle{}, false
	}
	tr, err := xproto.TranslateCoordinates(c.XUtil.Conn(), id, c.Root, 0, 0).Reply()
	if err != nil {
		return image.Rectangle{}, false
	}
	x, y := int(tr.DstX), int(tr.DstY)
	return image.Rect(x, y, x+int(geom.Width), y+int(geom.Height)), true
}

func (c *Conn) title(id xproto.Window) string {
	if t, err := ewmh.WmNameGet(c.XUtil, id); err == nil {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	t, _ := icccm.WmNameGet(c.XUtil, id)
	return strings.TrimSpace(t)
}
