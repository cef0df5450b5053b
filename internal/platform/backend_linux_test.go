//go:build linux

package platform

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winpin/internal/x11"
)

func TestShowStateFrom(t *testing.T) {
	tests := []struct {
		name string
		ws   x11.WindowState
		want ShowState
	}{
		{"plain", x11.WindowState{}, ShowNormal},
		{"hidden wins over maximized", x11.WindowState{Hidden: true, MaxHorz: true, MaxVert: true}, ShowMinimized},
		{"maximized both ways", x11.WindowState{MaxHorz: true, MaxVert: true}, ShowMaximized},
		{"half maximized is normal", x11.WindowState{MaxVert: true}, ShowNormal},
		{"fullscreen is normal", x11.WindowState{Fullscreen: true}, ShowNormal},
	}
	for _, tt := range tests {
		if got := showStateFrom(tt.ws); got != tt.want {
			t.Fatalf("%s: showStateFrom(%+v) = %s, want %s", tt.name, tt.ws, got, tt.want)
		}
	}
}

func TestNilBackendReportsErrors(t *testing.T) {
	var b *LinuxBackend
	if _, err := b.Displays(); err == nil {
		t.Fatal("expected error from nil backend")
	}
	if b.IsWindow(1) {
		t.Fatal("nil backend should not report windows")
	}
	if _, ok := b.FindWindowByTitle("x"); ok {
		t.Fatal("nil backend should not find windows")
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: -100, Y: 20, Width: 300, Height: 200}
	if r.Right() != 200 || r.Bottom() != 220 {
		t.Fatalf("Right/Bottom = %d/%d", r.Right(), r.Bottom())
	}
	if got := r.String(); got != "[-100; 20]-[200; 220]" {
		t.Fatalf("String() = %q", got)
	}
}

func TestNormalRect(t *testing.T) {
	frame := Rect{X: 0, Y: 0, Width: 1920, Height: 1050}
	last := Rect{X: 100, Y: 80, Width: 800, Height: 600}

	tests := []struct {
		name string
		ws   x11.WindowState
		last Rect
		seen bool
		want Rect
	}{
		{"normal window uses its frame", x11.WindowState{}, last, true, frame},
		{"minimized window uses its frame", x11.WindowState{Hidden: true}, Rect{}, false, frame},
		{"maximized window uses last normal frame", x11.WindowState{MaxHorz: true, MaxVert: true}, last, true, last},
		{"half maximized uses last normal frame", x11.WindowState{MaxVert: true}, last, true, last},
		{"maximized without history is empty", x11.WindowState{MaxHorz: true, MaxVert: true}, Rect{}, false, Rect{}},
	}
	for _, tt := range tests {
		if got := normalRect(frame, tt.ws, tt.last, tt.seen); got != tt.want {
			t.Fatalf("%s: normalRect = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestForgetClosed(t *testing.T) {
	b := &LinuxBackend{lastNormal: map[WindowID]Rect{
		1: {Width: 10, Height: 10},
		2: {Width: 20, Height: 20},
	}}
	b.forgetClosed([]xproto.Window{2, 3})

	if _, ok := b.lastNormal[1]; ok {
		t.Fatal("closed window 1 should be forgotten")
	}
	if _, ok := b.lastNormal[2]; !ok {
		t.Fatal("window 2 is still stacked and should be kept")
	}
}
