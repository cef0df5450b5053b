package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateRemove = 0
	stateAdd    = 1

	iconicState = 3
)

// WindowState is the subset of _NET_WM_STATE relevant to placement.
type WindowState struct {
	Hidden     bool
	MaxHorz    bool
	MaxVert    bool
	Fullscreen bool
}

// Maximized reports whether the window is maximized in both directions.
func (s WindowState) Maximized() bool { return s.MaxHorz && s.MaxVert }

// Frame is a window's outer position together with its client size.
type Frame struct {
	X, Y          int
	Width, Height int
}

// StackingOrder returns managed clients from bottom to top. Window managers
// without _NET_CLIENT_LIST_STACKING fall back to mapping order.
func (c *Connection) StackingOrder() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err == nil {
		return clients, nil
	}
	clients, err = ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// IsClient reports whether windowID is still a managed top-level window.
func (c *Connection) IsClient(windowID xproto.Window) bool {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}
	for _, win := range clients {
		if win == windowID {
			return true
		}
	}
	return false
}

// GetWindowState reads _NET_WM_STATE.
func (c *Connection) GetWindowState(windowID xproto.Window) (WindowState, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return WindowState{}, err
	}
	var ws WindowState
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN":
			ws.Hidden = true
		case "_NET_WM_STATE_MAXIMIZED_HORZ":
			ws.MaxHorz = true
		case "_NET_WM_STATE_MAXIMIZED_VERT":
			ws.MaxVert = true
		case "_NET_WM_STATE_FULLSCREEN":
			ws.Fullscreen = true
		}
	}
	return ws, nil
}

// GetFrame returns the window position including decorations and its
// client size, matching what MoveResizeWindow expects.
func (c *Connection) GetFrame(windowID xproto.Window) (Frame, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Frame{}, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Frame{}, err
	}
	left, _, top, _ := c.GetFrameExtents(windowID)
	return Frame{
		X:      int(translate.DstX) - left,
		Y:      int(translate.DstY) - top,
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// A maximized window ignores geometry requests.
	_ = c.SetMaximized(windowID, false)

	err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height)
	if err != nil {
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// SetMaximized adds or removes both maximized states.
func (c *Connection) SetMaximized(windowID xproto.Window, maximized bool) error {
	ws, err := c.GetWindowState(windowID)
	if err != nil {
		return err
	}
	action := stateRemove
	if maximized {
		action = stateAdd
	}
	if ws.MaxHorz != maximized {
		if err := ewmh.WmStateReq(c.XUtil, windowID, action, "_NET_WM_STATE_MAXIMIZED_HORZ"); err != nil {
			return err
		}
	}
	if ws.MaxVert != maximized {
		if err := ewmh.WmStateReq(c.XUtil, windowID, action, "_NET_WM_STATE_MAXIMIZED_VERT"); err != nil {
			return err
		}
	}
	return nil
}

// Iconify asks the window manager to minimize a window via WM_CHANGE_STATE.
func (c *Connection) Iconify(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", []uint32{iconicState})
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

// IsDesktopWindow reports whether the window draws the desktop background.
func (c *Connection) IsDesktopWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" {
			return true
		}
	}
	return false
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && title != "" {
		return title
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return title
	}
	return ""
}

// WindowClass returns the WM_CLASS class name.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return wmClass.Class
}

// WindowPID returns _NET_WM_PID or 0.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}
