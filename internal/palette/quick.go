package palette

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/winpin/internal/about"
	"github.com/1broseidon/winpin/internal/ipc"
)

const (
	actionSave     = "save"
	actionRestore  = "restore"
	actionAbout    = "about"
	actionOpenHelp = "open-help"
	actionBack     = "back"
	actionExit     = "exit"
)

// Daemon is the subset of the IPC client the quick menu drives.
type Daemon interface {
	SaveState() (*ipc.SaveData, error)
	RestoreState() (*ipc.RestoreData, error)
	GetStatus() (*ipc.StatusData, error)
}

// QuickMenu loops over the palette until the user exits or cancels.
type QuickMenu struct {
	Backend Backend
	Daemon  Daemon
	// Notify reports the outcome of an action. It defaults to a no-op.
	Notify func(summary string, failed bool)
	// OpenURL opens the help link from the About page.
	OpenURL func(url string) error
}

func (q *QuickMenu) notify(summary string, failed bool) {
	if q.Notify != nil {
		q.Notify(summary, failed)
	}
}

// mainItems highlights Restore state once something has been saved.
func mainItems(saved bool) []Item {
	return []Item{
		{Label: "Save state", Action: actionSave, Icon: "document-save"},
		{Label: "Restore state", Action: actionRestore, Icon: "view-restore", IsActive: saved},
		{Label: "About", Action: actionAbout, Icon: "help-about"},
		{Label: "Exit", Action: actionExit, Icon: "application-exit"},
	}
}

func statusLine(st *ipc.StatusData, err error) string {
	if err != nil || st == nil {
		return "daemon not running"
	}
	line := fmt.Sprintf("%d layouts, %d windows", st.Topologies, st.Windows)
	if st.SavedWindows > 0 {
		line += fmt.Sprintf(", saved state holds %d windows", st.SavedWindows)
	}
	return line
}

// Run shows the menu. Save and restore return to the menu so the result
// can be seen in the message bar; Exit and Escape end the loop.
func (q *QuickMenu) Run() error {
	message := ""
	for {
		st, stErr := q.Daemon.GetStatus()
		if message == "" {
			message = statusLine(st, stErr)
		}
		saved := stErr == nil && st != nil && st.SavedWindows > 0
		item, err := q.Backend.Show("winpin", mainItems(saved), message)
		if errors.Is(err, ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		switch item.Action {
		case actionSave:
			message = q.save()
		case actionRestore:
			message = q.restore()
		case actionAbout:
			if err := q.showAbout(); err != nil {
				return err
			}
			message = ""
		case actionExit:
			return nil
		}
	}
}

func (q *QuickMenu) save() string {
	data, err := q.Daemon.SaveState()
	if err != nil {
		msg := fmt.Sprintf("save failed: %v", err)
		q.notify(msg, true)
		return msg
	}
	msg := fmt.Sprintf("saved %d windows on %d monitors", data.Windows, data.Monitors)
	q.notify(msg, false)
	return msg
}

func (q *QuickMenu) restore() string {
	data, err := q.Daemon.RestoreState()
	if err != nil {
		msg := fmt.Sprintf("restore failed: %v", err)
		q.notify(msg, true)
		return msg
	}
	msg := fmt.Sprintf("restored %d windows", data.Restored)
	if data.Skipped > 0 || data.Failed > 0 {
		msg += fmt.Sprintf(" (%d gone, %d failed)", data.Skipped, data.Failed)
	}
	q.notify(msg, data.Failed > 0)
	return msg
}

func (q *QuickMenu) showAbout() error {
	// Launchers without a message bar still get the text as header rows.
	var items []Item
	for _, line := range strings.Split(about.Text, "\n") {
		if strings.TrimSpace(line) != "" {
			items = append(items, Item{Label: line, IsHeader: true})
		}
	}
	items = append(items,
		Item{Label: "Open help: " + about.HelpURL, Action: actionOpenHelp, Icon: "help-browser"},
		Item{Label: "Back", Action: actionBack, Icon: "go-previous"},
	)

	item, err := q.Backend.Show("about", items, "")
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	if item.Action == actionOpenHelp && q.OpenURL != nil {
		if err := q.OpenURL(about.HelpURL); err != nil {
			q.notify(fmt.Sprintf("open help: %v", err), true)
		}
	}
	return nil
}
