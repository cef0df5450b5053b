package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winpin/internal/ipc"
)

// Daemon is the subset of the IPC client the menu drives.
type Daemon interface {
	SaveState() (*ipc.SaveData, error)
	RestoreState() (*ipc.RestoreData, error)
	GetStatus() (*ipc.StatusData, error)
}

// Action is a menu entry.
type Action int

const (
	ActionSave Action = iota
	ActionRestore
	ActionAbout
	ActionExit
)

func (a Action) String() string {
	switch a {
	case ActionSave:
		return "Save state"
	case ActionRestore:
		return "Restore state"
	case ActionAbout:
		return "About"
	case ActionExit:
		return "Exit"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

type menuItem struct {
	action Action
	hint   string
}

func (i menuItem) Title() string       { return i.action.String() }
func (i menuItem) Description() string { return i.hint }
func (i menuItem) FilterValue() string { return i.action.String() }

// statusMsg is sent after an IPC action completes.
type statusMsg struct {
	text string
	err  error
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// daemonStatusMsg carries a refreshed GET_STATUS result.
type daemonStatusMsg struct {
	status *ipc.StatusData
	err    error
}

type model struct {
	daemon Daemon
	list   list.Model

	showAbout bool
	busy      bool

	connected  bool
	status     *ipc.StatusData
	statusText string
	statusErr  bool

	width  int
	height int
}

func newModel(d Daemon) model {
	items := []list.Item{
		menuItem{ActionSave, "remember the current window layout"},
		menuItem{ActionRestore, "put windows back to the saved layout"},
		menuItem{ActionAbout, "what WinPin does"},
		menuItem{ActionExit, "close this menu"},
	}
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(items, delegate, 48, 14)
	l.Title = "WinPin"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return model{daemon: d, list: l}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return refreshStatus(m.daemon)
}

func refreshStatus(d Daemon) tea.Cmd {
	return func() tea.Msg {
		st, err := d.GetStatus()
		return daemonStatusMsg{status: st, err: err}
	}
}

func clearAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func (m model) selected() Action {
	if item, ok := m.list.SelectedItem().(menuItem); ok {
		return item.action
	}
	return ActionExit
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-4, 6))
		return m, nil

	case daemonStatusMsg:
		m.connected = msg.err == nil
		m.status = msg.status
		return m, nil

	case statusMsg:
		m.busy = false
		if msg.err != nil {
			m.statusText = fmt.Sprintf("error: %v", msg.err)
			m.statusErr = true
		} else {
			m.statusText = msg.text
			m.statusErr = false
		}
		return m, tea.Batch(refreshStatus(m.daemon), clearAfter(4*time.Second))

	case clearStatusMsg:
		m.statusText = ""
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		if m.showAbout {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			default:
				m.showAbout = false
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "s":
			return m.run(ActionSave)
		case "r":
			return m.run(ActionRestore)
		case "enter", " ":
			return m.run(m.selected())
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) run(a Action) (tea.Model, tea.Cmd) {
	switch a {
	case ActionExit:
		return m, tea.Quit
	case ActionAbout:
		m.showAbout = true
		return m, nil
	}
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.statusText = a.String() + "..."
	m.statusErr = false

	d := m.daemon
	switch a {
	case ActionSave:
		return m, func() tea.Msg {
			data, err := d.SaveState()
			if err != nil {
				return statusMsg{err: err}
			}
			return statusMsg{text: fmt.Sprintf("saved %d windows on %d monitors", data.Windows, data.Monitors)}
		}
	default:
		return m, func() tea.Msg {
			data, err := d.RestoreState()
			if err != nil {
				return statusMsg{err: err}
			}
			text := fmt.Sprintf("restored %d windows", data.Restored)
			if data.Skipped > 0 || data.Failed > 0 {
				text += fmt.Sprintf(" (%d gone, %d failed)", data.Skipped, data.Failed)
			}
			return statusMsg{text: text}
		}
	}
}

// View implements tea.Model.
func (m model) View() string {
	var b strings.Builder
	b.WriteString(renderStatusBar(m.connected, m.status, m.width))
	b.WriteString("\n")

	if m.showAbout {
		b.WriteString(renderAbout(m.width))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	if m.statusText != "" {
		style := okStyle
		if m.statusErr {
			style = errStyle
		}
		b.WriteString(style.Render(m.statusText))
		b.WriteString("\n")
	}
	b.WriteString(renderHelpBar(m.showAbout, m.width))
	return b.String()
}

// Run shows the menu until the user exits.
func Run(d Daemon, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(newModel(d), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
