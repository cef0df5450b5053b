package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winpin/internal/about"
	"github.com/1broseidon/winpin/internal/ipc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 1)
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Padding(0, 1)

	aboutStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	linkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
)

func renderStatusBar(connected bool, st *ipc.StatusData, width int) string {
	var status string
	if connected && st != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = fmt.Sprintf("%s daemon running  layouts:%d  windows:%d", dot, st.Topologies, st.Windows)
		if st.Settling {
			status += fmt.Sprintf("  settling (%d)", st.Countdown)
		}
		if st.SavedWindows > 0 {
			status += fmt.Sprintf("  saved:%d", st.SavedWindows)
		}
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(status)
}

func renderAbout(width int) string {
	body := about.Text + "\n\nHelp: " + linkStyle.Render(about.HelpURL)
	style := aboutStyle
	if width > 8 {
		style = style.MaxWidth(width)
	}
	return style.Render(body)
}

func renderHelpBar(about bool, width int) string {
	help := "↑/↓: move  enter: select  s: save  r: restore  q: quit"
	if about {
		help = "any key: back  q: quit"
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(help)
}
