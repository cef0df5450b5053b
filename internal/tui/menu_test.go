package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/winpin/internal/about"
	"github.com/1broseidon/winpin/internal/ipc"
)

type fakeDaemon struct {
	saves      int
	restores   int
	restoreErr error
	statusErr  error
}

func (f *fakeDaemon) SaveState() (*ipc.SaveData, error) {
	f.saves++
	return &ipc.SaveData{Monitors: 1, Windows: 2}, nil
}

func (f *fakeDaemon) RestoreState() (*ipc.RestoreData, error) {
	f.restores++
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	return &ipc.RestoreData{Restored: 2, Skipped: 1}, nil
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &ipc.StatusData{DaemonRunning: true, Topologies: 2, Windows: 5}, nil
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm, cmd
}

// settle runs an action command and feeds its result back into the model.
func settle(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = update(t, m, cmd())
	return m
}

func TestMenu_EnterOnFirstItemSaves(t *testing.T) {
	d := &fakeDaemon{}
	m := newModel(d)

	m, cmd := update(t, m, keyEnter)
	if !m.busy {
		t.Fatal("model should be busy while saving")
	}
	m = settle(t, m, cmd)

	if d.saves != 1 {
		t.Fatalf("saves = %d, want 1", d.saves)
	}
	if m.busy || m.statusText != "saved 2 windows on 1 monitors" {
		t.Fatalf("status = %q busy=%v", m.statusText, m.busy)
	}
}

func TestMenu_RestoreReportsMissingWindows(t *testing.T) {
	d := &fakeDaemon{}
	m := newModel(d)

	m, _ = update(t, m, keyDown)
	if m.selected() != ActionRestore {
		t.Fatalf("selected = %s, want Restore state", m.selected())
	}
	m, cmd := update(t, m, keyEnter)
	m = settle(t, m, cmd)

	if d.restores != 1 {
		t.Fatalf("restores = %d", d.restores)
	}
	if !strings.Contains(m.statusText, "restored 2 windows (1 gone, 0 failed)") {
		t.Fatalf("status = %q", m.statusText)
	}
}

func TestMenu_RestoreErrorIsShown(t *testing.T) {
	d := &fakeDaemon{restoreErr: errors.New("daemon error: no saved state")}
	m := newModel(d)

	m, cmd := update(t, m, runeKey('r'))
	m = settle(t, m, cmd)

	if !m.statusErr || !strings.Contains(m.statusText, "no saved state") {
		t.Fatalf("status = %q err=%v", m.statusText, m.statusErr)
	}
	if !strings.Contains(m.View(), "no saved state") {
		t.Fatal("error missing from view")
	}
}

func TestMenu_BusyIgnoresSecondAction(t *testing.T) {
	d := &fakeDaemon{}
	m := newModel(d)

	m, first := update(t, m, runeKey('s'))
	m, second := update(t, m, runeKey('s'))
	if first == nil || second != nil {
		t.Fatalf("expected exactly one pending save, got %v and %v", first != nil, second != nil)
	}
}

func TestMenu_AboutShowsHelpLink(t *testing.T) {
	m := newModel(&fakeDaemon{})

	m, _ = update(t, m, keyDown)
	m, _ = update(t, m, keyDown)
	m, _ = update(t, m, keyEnter)
	if !m.showAbout {
		t.Fatal("About screen not shown")
	}
	if view := m.View(); !strings.Contains(view, about.HelpURL) {
		t.Fatalf("about view missing help link:\n%s", view)
	}

	m, _ = update(t, m, keyEnter)
	if m.showAbout {
		t.Fatal("any key should return to the menu")
	}
}

func TestMenu_ExitAndQuitKeys(t *testing.T) {
	m := newModel(&fakeDaemon{})

	_, cmd := update(t, m, runeKey('q'))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should produce QuitMsg")
	}

	for i := 0; i < 3; i++ {
		m, _ = update(t, m, keyDown)
	}
	if m.selected() != ActionExit {
		t.Fatalf("selected = %s, want Exit", m.selected())
	}
	_, cmd = update(t, m, keyEnter)
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("Exit should produce QuitMsg")
	}
}

func TestMenu_StatusBar(t *testing.T) {
	d := &fakeDaemon{}
	m := newModel(d)

	m, _ = update(t, m, m.Init()())
	if !m.connected || !strings.Contains(m.View(), "layouts:2") {
		t.Fatalf("connected status bar missing:\n%s", m.View())
	}

	d.statusErr = errors.New("connection refused")
	m, _ = update(t, m, refreshStatus(d)())
	if m.connected || !strings.Contains(m.View(), "daemon not running") {
		t.Fatalf("disconnected status bar missing:\n%s", m.View())
	}
}
