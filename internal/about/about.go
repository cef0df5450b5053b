// Package about holds the user-facing description shown by every front end.
package about

// HelpURL points at the project documentation.
const HelpURL = "https://github.com/1broseidon/winpin"

// Text describes what the program does.
const Text = `WinPin keeps your windows where you put them.

When a monitor is plugged in or unplugged the window manager shuffles
windows around. WinPin remembers the layout for every monitor
arrangement it has seen and puts the windows back once the
arrangement returns.

Save state / Restore state keep one extra layout you control.`
