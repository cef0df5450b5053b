package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/1broseidon/winpin/internal/ipc"
	"github.com/1broseidon/winpin/internal/palette"
)

func runPalette(args []string) int {
	fs := newFlagSet("palette", "winpin palette [--backend NAME]",
		"Show the quick menu in rofi, fuzzel, wofi or dmenu. Bind it to a desktop shortcut.")
	backendName := fs.String("backend", "auto", "Launcher to use: auto, rofi, fuzzel, wofi, dmenu")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	q := &palette.QuickMenu{
		Backend: backend,
		Daemon:  ipc.NewClient(),
		Notify:  desktopNotify,
		OpenURL: func(url string) error { return exec.Command("xdg-open", url).Start() },
	}
	if err := q.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// desktopNotify uses notify-send when available and stderr otherwise.
func desktopNotify(summary string, failed bool) {
	urgency := "normal"
	if failed {
		urgency = "critical"
	}
	if _, err := exec.LookPath("notify-send"); err == nil {
		if exec.Command("notify-send", "--urgency="+urgency, "--app-name=winpin", "winpin", summary).Run() == nil {
			return
		}
	}
	fmt.Fprintln(os.Stderr, summary)
}
