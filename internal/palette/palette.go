// Package palette shows the quick menu through an external launcher such as
// rofi or dmenu, so save and restore can be bound to a desktop shortcut.
package palette

import (
	"fmt"
	"os/exec"
	"strings"
)

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label    string
	Action   string // returned to the caller on selection
	Icon     string // rofi -show-icons
	IsHeader bool   // non-selectable, rofi only
	IsActive bool
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	// Show displays items and blocks until the user picks one.
	// message is shown in the message bar where the launcher has one.
	Show(prompt string, items []Item, message string) (Item, error)
	Name() string
}

var detectOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DetectBackend returns the first launcher found in PATH.
func DetectBackend() (string, error) {
	for _, name := range detectOrder {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(detectOrder, ", "))
}

// NewBackend creates a backend by name.
//
// Supported names: auto, rofi, fuzzel, wofi, dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *launcher
	switch name {
	case "rofi":
		b = newLauncher("rofi", kindRofi)
	case "fuzzel":
		b = newLauncher("fuzzel", kindFuzzel)
	case "wofi":
		b = newLauncher("wofi", kindWofi)
	case "dmenu":
		b = newLauncher("dmenu", kindDmenu)
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(detectOrder, ", "))
	}
	if _, err := lookPath(b.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", b.command)
	}
	return b, nil
}
