package platform

import "fmt"

// WindowID is a platform-neutral window identifier. It does not own the
// window and may refer to a window that no longer exists.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

func (r Rect) String() string {
	return fmt.Sprintf("[%d; %d]-[%d; %d]", r.X, r.Y, r.Right(), r.Bottom())
}

// ShowState is the visibility state of a top-level window.
type ShowState int

const (
	ShowNormal ShowState = iota
	ShowMinimized
	ShowMaximized
)

func (s ShowState) String() string {
	switch s {
	case ShowNormal:
		return "normal"
	case ShowMinimized:
		return "minimized"
	case ShowMaximized:
		return "maximized"
	default:
		return fmt.Sprintf("ShowState(%d)", int(s))
	}
}

// DesktopLayerRank is the highest stacking rank owned by the root window and
// the desktop background. Windows at or below it are never captured.
const DesktopLayerRank = 1

// Placement is the geometry a window occupies when it is in the normal state,
// together with the state it should be shown in.
type Placement struct {
	Normal Rect
	State  ShowState
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID        WindowID
	PID       int
	AppID     string
	Title     string
	Placement Placement
	// Rank is the number of stacking layers beneath the window.
	Rank int
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	Windows() ([]Window, error)
	IsWindow(id WindowID) bool
	FindWindowByTitle(title string) (WindowID, bool)
	ShowState(id WindowID) (ShowState, error)
	SetShowState(id WindowID, state ShowState) error
	ApplyPlacement(id WindowID, placement Placement) error
	SetForeground(id WindowID) error
}
