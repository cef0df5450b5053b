package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winpin/internal/about"
	"github.com/1broseidon/winpin/internal/config"
	"github.com/1broseidon/winpin/internal/ipc"
	"github.com/1broseidon/winpin/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "save":
		os.Exit(runSave(os.Args[2:]))
	case "restore":
		os.Exit(runRestore(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "stop":
		os.Exit(runStop(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "history":
		os.Exit(runHistory(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "palette":
		os.Exit(runPalette(os.Args[2:]))
	case "about":
		printAbout(os.Stdout)
		os.Exit(0)
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winpin <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the winpin daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  save                Save the current window layout")
	fmt.Fprintln(w, "  restore             Restore the saved window layout")
	fmt.Fprintln(w, "  reload              Re-read the daemon configuration")
	fmt.Fprintln(w, "  stop                Stop the daemon")
	fmt.Fprintln(w, "  monitors            Show the current monitor arrangement")
	fmt.Fprintln(w, "  history             List recorded monitor arrangements")
	fmt.Fprintln(w, "  menu                Open the interactive menu")
	fmt.Fprintln(w, "  palette             Open the quick menu in rofi/fuzzel/wofi/dmenu")
	fmt.Fprintln(w, "  about               Show what winpin does")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winpin <command> --help' for command-specific options.")
}

func printAbout(w io.Writer) {
	fmt.Fprintln(w, about.Text)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Help: %s\n", about.HelpURL)
}

// parseNoArgs parses a flag set for a command that takes no positional
// arguments. It returns -1 when the caller should continue.
func parseNoArgs(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2
	}
	return -1
}

func newFlagSet(name, usage, help string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
		fs.PrintDefaults()
	}
	return fs
}

func formatUnix(sec int64) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).Format(time.DateTime)
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "winpin status", "Show daemon status via IPC.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("interval_ms:    %d\n", status.IntervalMS)
	fmt.Printf("settle_ticks:   %d\n", status.SettleTicks)
	fmt.Printf("history_depth:  %d\n", status.HistoryDepth)
	fmt.Printf("ticks:          %d\n", status.Ticks)
	fmt.Printf("fingerprint:    %s\n", status.Fingerprint)
	if status.Settling {
		fmt.Printf("settling:       yes (%d ticks left)\n", status.Countdown)
	} else {
		fmt.Printf("settling:       no\n")
	}
	fmt.Printf("topologies:     %d\n", status.Topologies)
	fmt.Printf("windows:        %d\n", status.Windows)
	if status.SavedWindows > 0 {
		fmt.Printf("saved:          %d windows at %s\n", status.SavedWindows, formatUnix(status.SavedAt))
	}
	if lr := status.LastRestore; lr != nil {
		fmt.Printf("last_restore:   %s at %s (restored %d, skipped %d, failed %d)\n",
			lr.Trigger, formatUnix(lr.At), lr.Restored, lr.Skipped, lr.Failed)
	}
	if status.LastError != "" {
		fmt.Printf("last_error:     %s\n", status.LastError)
	}
	return 0
}

func runSave(args []string) int {
	fs := newFlagSet("save", "winpin save [--dump]", "Capture the current window layout into the manual save slot.")
	dump := fs.Bool("dump", false, "Print the captured monitors and windows")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().SaveState()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("saved %d windows on %d monitors (%s)\n", data.Windows, data.Monitors, data.Fingerprint)
	if *dump {
		fmt.Print(data.Dump)
	}
	return 0
}

func runRestore(args []string) int {
	fs := newFlagSet("restore", "winpin restore", "Move windows back to the layout captured by 'winpin save'.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().RestoreState()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("restored %d windows, skipped %d, failed %d\n", data.Restored, data.Skipped, data.Failed)
	for _, e := range data.Errors {
		fmt.Fprintf(os.Stderr, "  %s\n", e)
	}
	if data.Failed > 0 {
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "winpin reload", "Ask the daemon to re-read its configuration file.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runStop(args []string) int {
	fs := newFlagSet("stop", "winpin stop", "Stop the running daemon. Remembered layouts are discarded.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}
	if err := ipc.NewClient().Shutdown(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("daemon stopping")
	return 0
}

func runMonitors(args []string) int {
	fs := newFlagSet("monitors", "winpin monitors", "Show the monitors the daemon currently sees.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("fingerprint: %s\n", data.Fingerprint)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPOSITION\tSIZE\tWORK AREA")
	for _, m := range data.Monitors {
		fmt.Fprintf(tw, "%s\t%d,%d\t%dx%d\t%s\n", m.Name, m.X, m.Y, m.Width, m.Height, m.WorkArea)
	}
	tw.Flush()
	return 0
}

func runHistory(args []string) int {
	fs := newFlagSet("history", "winpin history", "List the monitor arrangements with recorded window layouts.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().GetHistory()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("depth: %d\n", data.Depth)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINGERPRINT\tSNAPSHOTS\tOLDEST\tNEWEST\tMONITORS")
	for _, topo := range data.Topologies {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\n",
			topo.Fingerprint, topo.Snapshots, formatUnix(topo.Oldest), formatUnix(topo.Newest), len(topo.Monitors))
	}
	tw.Flush()
	for _, topo := range data.Topologies {
		fmt.Printf("\n%s\n", topo.Fingerprint)
		for _, m := range topo.Monitors {
			fmt.Printf("  %s\n", m)
		}
	}
	return 0
}

func runMenu(args []string) int {
	fs := newFlagSet("menu", "winpin menu", "Open the interactive menu (save, restore, about).")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "menu requires an interactive terminal (stdin/stdout must be TTYs)")
		return 1
	}

	if err := tui.Run(ipc.NewClient(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  winpin config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  winpin config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  winpin config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winpin/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(res.Files) == 0 {
			fmt.Println("config: ok (no file, using defaults)")
			return 0
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winpin/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winpin/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
