package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

const stickyDesktop = 0xFFFFFFFF

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// OnDesktop reports whether the window is visible on desktop. Sticky windows
// and windows without _NET_WM_DESKTOP are visible everywhere.
func (c *Connection) OnDesktop(windowID xproto.Window, desktop int) bool {
	d, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil || d == stickyDesktop {
		return true
	}
	return int(d) == desktop
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW. This
// also deiconifies minimized windows. The message is built by hand because
// the xgbutil ewmh request helpers panic on this library version.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	const sourceIndication = 2 // pager/direct action
	if err := c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", []uint32{sourceIndication}); err != nil {
		return fmt.Errorf("failed to activate window: %w", err)
	}
	return nil
}

// FindWindowByTitle returns the first managed client, in stacking order,
// whose title equals title exactly.
func (c *Connection) FindWindowByTitle(title string) (xproto.Window, bool) {
	if title == "" {
		return 0, false
	}
	clients, err := c.StackingOrder()
	if err != nil {
		return 0, false
	}
	for _, win := range clients {
		if c.WindowTitle(win) == title {
			return win, true
		}
	}
	return 0, false
}
