package palette

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestRofiFormatItem_UsesSingleNullSeparator(t *testing.T) {
	b := newLauncher("rofi", kindRofi)

	out := b.formatItem(Item{Label: "About <winpin>", IsHeader: true, Icon: "help\x1fabout"})

	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.HasPrefix(out, "<b>About &lt;winpin&gt;</b>\x00") {
		t.Fatalf("expected escaped bold header, got %q", out)
	}
	if !strings.Contains(out, "nonselectable\x1ftrue\x1ficon\x1fhelp about") {
		t.Fatalf("expected nonselectable and sanitized icon attributes, got %q", out)
	}
}

func TestFormatItem_PlainForTextBackends(t *testing.T) {
	for _, kind := range []backendKind{kindFuzzel, kindWofi, kindDmenu} {
		b := newLauncher("x", kind)
		out := b.formatItem(Item{Label: " Save\nstate ", Icon: "document-save", IsHeader: true})
		if out != "Save state" {
			t.Fatalf("kind %d: got %q", kind, out)
		}
	}
}

func TestRofiBuildArgs(t *testing.T) {
	b := newLauncher("rofi", kindRofi)
	args := b.buildArgs("winpin", "a & b", []Item{
		{Label: "h", IsHeader: true, IsActive: true},
		{Label: "a", IsActive: true},
		{Label: "b"},
	})

	if !containsArgs(args, "-format", "i") || !containsArg(args, "-no-custom") {
		t.Fatalf("expected index output without custom entries, got %v", args)
	}
	if !containsArgs(args, "-p", "winpin") {
		t.Fatalf("expected prompt, got %v", args)
	}
	if !containsArgs(args, "-a", "1") {
		t.Fatalf("expected only the selectable active row, got %v", args)
	}
	if !containsArgs(args, "-mesg", "a &amp; b") {
		t.Fatalf("expected escaped message, got %v", args)
	}
}

func TestBuildArgs_OtherBackends(t *testing.T) {
	tests := []struct {
		kind backendKind
		want []string
	}{
		{kindFuzzel, []string{"--dmenu", "--index", "--prompt", "p"}},
		{kindWofi, []string{"--dmenu", "--insensitive", "--prompt", "p"}},
		{kindDmenu, []string{"-i", "-p", "p"}},
	}
	for _, tt := range tests {
		got := newLauncher("x", tt.kind).buildArgs("p", "ignored", nil)
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Errorf("kind %d: args = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestParseSelection(t *testing.T) {
	items := mainItems(false)

	rofi := newLauncher("rofi", kindRofi)
	got, err := rofi.parseSelection("1", items)
	if err != nil || got.Action != actionRestore {
		t.Fatalf("rofi index: got %+v, %v", got, err)
	}
	if _, err := rofi.parseSelection("9", items); err == nil {
		t.Fatal("expected out of range error")
	}

	dmenu := newLauncher("dmenu", kindDmenu)
	got, err = dmenu.parseSelection("About", items)
	if err != nil || got.Action != actionAbout {
		t.Fatalf("dmenu label: got %+v, %v", got, err)
	}
	if _, err := dmenu.parseSelection("typed text", items); err == nil {
		t.Fatal("expected unknown selection error")
	}
}

func TestIsCancelExit(t *testing.T) {
	if isCancelExit(errors.New("boom")) {
		t.Fatal("plain error is not a cancel")
	}
	err := exec.Command("sh", "-c", "exit 1").Run()
	if err == nil {
		t.Skip("sh not available")
	}
	if !isCancelExit(err) {
		t.Fatalf("exit 1 should be a cancel: %v", err)
	}
}

func TestNewBackend(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(name string) (string, error) {
		if name == "wofi" || name == "dmenu" {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}

	b, err := NewBackend("auto")
	if err != nil || b.Name() != "wofi" {
		t.Fatalf("auto: got %v, %v", b, err)
	}
	if _, err := NewBackend("rofi"); err == nil {
		t.Fatal("expected missing rofi to fail")
	}
	if _, err := NewBackend("xmenu"); err == nil {
		t.Fatal("expected unknown backend to fail")
	}

	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	if _, err := DetectBackend(); err == nil {
		t.Fatal("expected detection to fail with nothing installed")
	}
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func containsArgs(args []string, key, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == key && args[i+1] == value {
			return true
		}
	}
	return false
}
