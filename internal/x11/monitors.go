package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor is an active RandR CRTC and the output driving it.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors lists the enabled RandR CRTCs. Each is named after the first
// output it drives.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	res, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	monitors := make([]Monitor, 0, len(res.Crtcs))
	for i, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], res.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return monitors, nil
}

// WorkArea returns m shrunk by the docks and panels that reserve space on it.
// Without struts the intersection with _NET_WORKAREA is used.
func (c *Connection) WorkArea(m Monitor) Monitor {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err == nil {
		if usable, ok := usableArea(m, c.dockStruts(int(geom.Width), int(geom.Height)), int(geom.Width), int(geom.Height)); ok {
			return usable
		}
	}

	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return m
	}
	desktop := 0
	if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
		desktop = int(cur)
	}
	wa := areas[desktop]
	clip := boxOf(m).overlap(box{int(wa.X), int(wa.Y), int(wa.X) + int(wa.Width), int(wa.Y) + int(wa.Height)})
	if clip.empty() {
		return m
	}
	m.X, m.Y, m.Width, m.Height = clip.x1, clip.y1, clip.x2-clip.x1, clip.y2-clip.y1
	return m
}

// dockStruts collects the reserved edges of every dock client. Docks that
// only set _NET_WM_STRUT are treated as spanning the whole root edge.
func (c *Connection) dockStruts(rootW, rootH int) []ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}
	var out []ewmh.WmStrutPartial
	for _, id := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, id)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, id); err == nil {
			out = append(out, *sp)
		} else if s, err := ewmh.WmStrutGet(c.XUtil, id); err == nil {
			out = append(out, fullStrut(s, rootW, rootH))
		}
	}
	return out
}

func fullStrut(s *ewmh.WmStrut, rootW, rootH int) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
		LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
		TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
	}
}

// box is a half-open rectangle [x1,x2) x [y1,y2).
type box struct{ x1, y1, x2, y2 int }

func boxOf(m Monitor) box { return box{m.X, m.Y, m.X + m.Width, m.Y + m.Height} }

func (b box) overlap(o box) box {
	r := box{max(b.x1, o.x1), max(b.y1, o.y1), min(b.x2, o.x2), min(b.y2, o.y2)}
	if r.empty() {
		return box{}
	}
	return r
}

func (b box) empty() bool { return b.x2 <= b.x1 || b.y2 <= b.y1 }

type reserved struct{ left, right, top, bottom int }

// usableArea applies the struts overlapping m. ok is false when none do.
func usableArea(m Monitor, struts []ewmh.WmStrutPartial, rootW, rootH int) (Monitor, bool) {
	mon := boxOf(m)
	var r reserved
	for _, sp := range struts {
		if sp.Top > 0 {
			if o := mon.overlap(box{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)}); !o.empty() {
				r.top = max(r.top, o.y2-o.y1)
			}
		}
		if sp.Bottom > 0 {
			if o := mon.overlap(box{int(sp.BottomStartX), rootH - int(sp.Bottom), int(sp.BottomEndX) + 1, rootH}); !o.empty() {
				r.bottom = max(r.bottom, o.y2-o.y1)
			}
		}
		if sp.Left > 0 {
			if o := mon.overlap(box{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1}); !o.empty() {
				r.left = max(r.left, o.x2-o.x1)
			}
		}
		if sp.Right > 0 {
			if o := mon.overlap(box{rootW - int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY) + 1}); !o.empty() {
				r.right = max(r.right, o.x2-o.x1)
			}
		}
	}
	if r == (reserved{}) {
		return m, false
	}
	m.X += r.left
	m.Y += r.top
	m.Width = max(m.Width-r.left-r.right, 1)
	m.Height = max(m.Height-r.top-r.bottom, 1)
	return m, true
}
