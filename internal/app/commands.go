package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/index"
	"github.com/marcus/taskpicker/internal/plugin"
)

// App-level command ids. Default keys live in keymap.DefaultBindings.
const (
	CmdQuit              = "quit"
	CmdTogglePalette     = "toggle-palette"
	CmdToggleDiagnostics = "toggle-diagnostics"
	CmdToggleFooter      = "toggle-footer"
	CmdRefresh           = "refresh"
	CmdReloadIndex       = "reload-index"
)

// Message types for tea.Cmd
type (
	// TickMsg is sent on each clock tick.
	TickMsg time.Time

	// ErrorMsg represents an error condition.
	ErrorMsg struct {
		Err error
	}

	// appCommandMsg runs an app command picked from the palette.
	appCommandMsg struct {
		id string
	}

	// indexReloadedMsg carries the result of re-detecting the index source.
	indexReloadedMsg struct {
		src index.Source
		err error
	}
)

// tickCmd returns a command that ticks every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// ReportError returns a command to report an error.
func ReportError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// appCommands are the commands the host itself owns.
func appCommands() []plugin.Command {
	run := func(id string) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return appCommandMsg{id: id} }
		}
	}
	return []plugin.Command{
		{ID: CmdQuit, Name: "Quit", Description: "Quit taskpicker", Category: plugin.CategorySystem, Context: "global", Handler: run(CmdQuit)},
		{ID: CmdTogglePalette, Name: "Help", Description: "Toggle the command palette", Category: plugin.CategorySystem, Context: "global", Handler: run(CmdTogglePalette)},
		{ID: CmdToggleDiagnostics, Name: "Diagnostics", Description: "Show plugin and index status", Category: plugin.CategorySystem, Context: "global", Handler: run(CmdToggleDiagnostics)},
		{ID: CmdToggleFooter, Name: "Footer", Description: "Show or hide the footer", Category: plugin.CategorySystem, Context: "global", Handler: run(CmdToggleFooter)},
		{ID: CmdRefresh, Name: "Refresh", Description: "Reload open lists", Category: plugin.CategoryActions, Context: "global", Handler: run(CmdRefresh)},
		{ID: CmdReloadIndex, Name: "Reload index", Description: "Detect the index source again", Category: plugin.CategoryActions, Context: "global", Handler: run(CmdReloadIndex)},
	}
}

// detectIndex re-runs source detection off the UI loop.
func detectIndex(root, path, preferred string) tea.Cmd {
	return func() tea.Msg {
		found, err := index.DetectSources(index.Options{Root: root, Path: path})
		src := index.Pick(found, preferred)
		if src == nil {
			if err == nil {
				err = errNoIndex
			}
			return indexReloadedMsg{err: err}
		}
		return indexReloadedMsg{src: src}
	}
}
