// Package hotkeys binds global key sequences to daemon actions.
package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/winpin/internal/platform"
)

// ErrUnsupported is returned when the backend has no X connection to grab
// keys on.
var ErrUnsupported = errors.New("global hotkeys need an X11 backend")

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
	bound  []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler on the backend's X connection.
func NewHandler(backend platform.Backend, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, ErrUnsupported
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		logger: logger,
	}, nil
}

// Bind runs action whenever keySequence is pressed. An empty sequence is a
// no-op. The action runs on its own goroutine so a slow action never stalls
// X event dispatch.
func (h *Handler) Bind(name, keySequence string, action func()) error {
	keySequence = strings.TrimSpace(keySequence)
	if keySequence == "" {
		return nil
	}
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.logger.Info("hotkey pressed", "action", name, "keys", keySequence)
		go action()
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("bind %s hotkey %q: %w", name, keySequence, err)
	}
	h.bound = append(h.bound, name)
	h.logger.Info("hotkey registered", "action", name, "keys", keySequence)
	return nil
}

// Bound reports how many hotkeys were registered.
func (h *Handler) Bound() int { return len(h.bound) }

// Unbind releases every grab on the root window.
func (h *Handler) Unbind() {
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including
// none, so a hotkey fires regardless of lock state.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
