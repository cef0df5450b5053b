//go:build linux

package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/winpin/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	mu sync.Mutex
	// lastNormal holds the most recent frame seen while each window was
	// not maximized.
	lastNormal map[WindowID]Rect
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
// An empty display uses $DISPLAY.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// XUtil exposes the X connection for global hotkey registration.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil { return b.conn.XUtil }

// RootWindow returns the root window hotkeys are grabbed on.
func (b *LinuxBackend) RootWindow() xproto.Window { return b.conn.Root }

// EventLoop runs the X event loop (blocking). Only needed when hotkeys are
// registered.
func (b *LinuxBackend) EventLoop() { b.conn.EventLoop() }

// StopEventLoop makes EventLoop return.
func (b *LinuxBackend) StopEventLoop() { b.conn.StopEventLoop() }

// Displays returns all active displays with their work areas.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: rectFromMonitor(m),
			Usable: rectFromMonitor(conn.WorkArea(m)),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// Windows lists managed application windows on the current desktop. Rank
// follows the window manager's stacking order: desktop windows share
// DesktopLayerRank and every client above them gets a higher rank.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	stacking, err := conn.StackingOrder()
	if err != nil {
		return nil, err
	}

	currentDesktop, desktopErr := conn.GetCurrentDesktop()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastNormal == nil {
		b.lastNormal = make(map[WindowID]Rect)
	}
	b.forgetClosed(stacking)

	windows := make([]Window, 0, len(stacking))
	for i, windowID := range stacking {
		rank := DesktopLayerRank + 1 + i
		if conn.IsDesktopWindow(windowID) {
			rank = DesktopLayerRank
		} else if !conn.IsNormalWindow(windowID) {
			continue
		}

		if desktopErr == nil && !conn.OnDesktop(windowID, currentDesktop) {
			continue
		}

		frame, err := conn.GetFrame(windowID)
		if err != nil {
			continue
		}
		// An unreadable state is treated as normal.
		ws, _ := conn.GetWindowState(windowID)

		id := WindowID(windowID)
		last, seen := b.lastNormal[id]
		normal := normalRect(rectFromFrame(frame), ws, last, seen)
		if !maximizedAny(ws) {
			b.lastNormal[id] = normal
		}

		windows = append(windows, Window{
			ID:    id,
			PID:   conn.WindowPID(windowID),
			AppID: conn.WindowClass(windowID),
			Title: conn.WindowTitle(windowID),
			Placement: Placement{
				Normal: normal,
				State:  showStateFrom(ws),
			},
			Rank: rank,
		})
	}

	return windows, nil
}

// IsWindow reports whether id still names a managed window.
func (b *LinuxBackend) IsWindow(id WindowID) bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.IsClient(xproto.Window(id))
}

// FindWindowByTitle looks a window up by exact title.
func (b *LinuxBackend) FindWindowByTitle(title string) (WindowID, bool) {
	conn, err := b.connection()
	if err != nil {
		return 0, false
	}
	win, ok := conn.FindWindowByTitle(title)
	return WindowID(win), ok
}

// ShowState returns the window's current visibility state.
func (b *LinuxBackend) ShowState(id WindowID) (ShowState, error) {
	conn, err := b.connection()
	if err != nil {
		return ShowNormal, err
	}
	ws, err := conn.GetWindowState(xproto.Window(id))
	if err != nil {
		return ShowNormal, err
	}
	return showStateFrom(ws), nil
}

// SetShowState switches a window to state.
func (b *LinuxBackend) SetShowState(id WindowID, state ShowState) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win := xproto.Window(id)

	switch state {
	case ShowMinimized:
		return conn.Iconify(win)
	case ShowMaximized:
		return conn.SetMaximized(win, true)
	default:
		ws, err := conn.GetWindowState(win)
		if err != nil {
			return err
		}
		if ws.Hidden {
			if err := conn.FocusWindow(win); err != nil {
				return err
			}
		}
		if ws.MaxHorz || ws.MaxVert {
			return conn.SetMaximized(win, false)
		}
		return nil
	}
}

// ApplyPlacement moves the window to its normal rectangle and then puts it
// in the requested state.
func (b *LinuxBackend) ApplyPlacement(id WindowID, placement Placement) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win := xproto.Window(id)

	r := placement.Normal
	if r.Width > 0 && r.Height > 0 {
		if err := conn.MoveResizeWindow(win, r.X, r.Y, r.Width, r.Height); err != nil {
			return err
		}
	}

	switch placement.State {
	case ShowMaximized:
		return conn.SetMaximized(win, true)
	case ShowMinimized:
		return conn.Iconify(win)
	default:
		return nil
	}
}

// SetForeground activates and raises the window.
func (b *LinuxBackend) SetForeground(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(id))
}

// forgetClosed drops remembered frames of windows no longer stacked.
// Callers hold b.mu.
func (b *LinuxBackend) forgetClosed(stacking []xproto.Window) {
	alive := make(map[WindowID]struct{}, len(stacking))
	for _, w := range stacking {
		alive[WindowID(w)] = struct{}{}
	}
	for id := range b.lastNormal {
		if _, ok := alive[id]; !ok {
			delete(b.lastNormal, id)
		}
	}
}

func maximizedAny(ws x11.WindowState) bool { return ws.MaxHorz || ws.MaxVert }

// normalRect picks the rectangle recorded as a window's normal placement.
// The frame of a maximized window is the maximized geometry, so the last
// unmaximized frame stands in for it. With none seen the result is empty
// and ApplyPlacement leaves the window's geometry to the window manager.
func normalRect(frame Rect, ws x11.WindowState, lastNormal Rect, seen bool) Rect {
	if !maximizedAny(ws) {
		return frame
	}
	if seen {
		return lastNormal
	}
	return Rect{}
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func showStateFrom(ws x11.WindowState) ShowState {
	switch {
	case ws.Hidden:
		return ShowMinimized
	case ws.Maximized():
		return ShowMaximized
	default:
		return ShowNormal
	}
}

func rectFromMonitor(m x11.Monitor) Rect {
	return Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

func rectFromFrame(f x11.Frame) Rect {
	return Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
}
