package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/editor"
	tmsg "github.com/marcus/taskpicker/internal/msg"
	"github.com/marcus/taskpicker/internal/palette"
	"github.com/marcus/taskpicker/internal/plugin"
	"github.com/marcus/taskpicker/internal/ui"
)

const viewerContext = "document-viewer"

// Update handles all messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case TickMsg:
		m.clock = time.Time(msg)
		m.ClearToast()
		return m, tickCmd()

	case tmsg.ToastMsg:
		m.ShowToast(msg.Message, msg.Duration, msg.IsError)
		if msg.IsError {
			m.logger.Warn("error notice", "message", msg.Message)
		}
		return m, nil

	case ErrorMsg:
		m.lastError = msg.Err
		m.ShowToast("Error: "+msg.Err.Error(), 5*time.Second, true)
		return m, nil

	case appCommandMsg:
		return m.runCommand(msg.id)

	case palette.CommandSelectedMsg:
		m.showPalette = false
		m.updateContext()
		if cmd, ok := m.keymap.GetCommand(msg.CommandID); ok && cmd.Handler != nil {
			return m, cmd.Handler()
		}
		return m, nil

	case plugin.NavigateMsg:
		m.logger.Debug("navigate", "path", msg.Path, "line", msg.Range.Start.Line, "newPane", msg.NewPane)
		return m, m.workspace.Open(editor.Request{
			Path:    msg.Path,
			Range:   msg.Range,
			NewPane: msg.NewPane,
		})

	case editor.OpenFailedMsg:
		m.lastError = msg.Err
		m.ShowToast(msg.Err.Error(), 5*time.Second, true)
		m.logger.Warn("open document", "path", msg.Path, "err", msg.Err)
		// plugins still need to see it to leave the navigating state

	case editor.OpenExternalMsg:
		return m, m.external.Open(msg.Request)

	case editor.CloseMsg:
		m.updateContext()
		return m, nil

	case indexReloadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			m.ShowToast("Reload index: "+msg.err.Error(), 5*time.Second, true)
			return m, nil
		}
		m.logger.Info("index reloaded", "source", msg.src.ID())
		cmds = append(cmds, m.registry.Reinit(msg.src)...)
		m.keymap.RegisterCommands(m.registry.Plugins())
		m.updateContext()
		m.ShowToast("Index: "+msg.src.Name(), 3*time.Second, false)
		return m, tea.Batch(cmds...)

	case tmsg.RefreshMsg:
		m.lastRefresh = time.Now()
	}

	if m.viewer != nil {
		if cmd := m.viewer.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	// Forward other messages to ALL plugins so async results reach their
	// owner even when it is not focused.
	plugins := m.registry.Plugins()
	for i, p := range plugins {
		newPlugin, cmd := p.Update(msg)
		plugins[i] = newPlugin
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if m.activeModal() == ModalNone {
		m.updateContext()
	}

	return m, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.activeModal() {
	case ModalQuitConfirm:
		switch m.quitConfirm.HandleKey(msg) {
		case ui.ActionConfirm:
			m.registry.Stop()
			return m, tea.Quit
		case ui.ActionCancel:
			m.showQuitConfirm = false
			m.quitConfirm = nil
		}
		return m, nil

	case ModalPalette:
		if msg.Type == tea.KeyEsc {
			m.showPalette = false
			m.updateContext()
			return m, nil
		}
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd

	case ModalDiagnostics:
		if id, _ := m.keymap.Lookup(msg.String(), "global"); msg.Type == tea.KeyEsc || id == CmdToggleDiagnostics {
			m.showDiagnostics = false
			m.updateContext()
		}
		return m, nil
	}

	// ctrl+c always asks before quitting, even while typing.
	if msg.String() == "ctrl+c" {
		m.openQuitConfirm()
		return m, nil
	}

	// Picker and settings panel consume every key, including letters
	// bound to app commands.
	if m.pluginCapturesKeys() {
		return m.forwardKey(msg)
	}

	if m.viewerActive() {
		if id, ok := m.keymap.Lookup(msg.String(), viewerContext); ok && isAppCommand(id) {
			return m.runCommand(id)
		}
		cmd := m.viewer.Update(msg)
		m.updateContext()
		return m, cmd
	}

	if id, ok := m.keymap.Lookup(msg.String(), m.activeContext); ok && isAppCommand(id) {
		return m.runCommand(id)
	}

	// Try keymap for context-specific bindings
	if cmd := m.keymap.Handle(msg, m.activeContext); cmd != nil {
		return m, cmd
	}

	return m.forwardKey(msg)
}

// forwardKey sends msg to the active plugin.
func (m Model) forwardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.ActivePlugin()
	if p == nil {
		return m, nil
	}
	newPlugin, cmd := p.Update(msg)
	plugins := m.registry.Plugins()
	if m.activePlugin < len(plugins) {
		plugins[m.activePlugin] = newPlugin
	}
	m.updateContext()
	return m, cmd
}

// runCommand executes an app-level command.
func (m Model) runCommand(id string) (tea.Model, tea.Cmd) {
	switch id {
	case CmdQuit:
		m.openQuitConfirm()

	case CmdTogglePalette:
		m.showPalette = !m.showPalette
		if !m.showPalette {
			m.updateContext()
			return m, nil
		}
		pluginCtx := "global"
		if p := m.ActivePlugin(); p != nil {
			pluginCtx = p.ID()
		}
		m.keymap.RegisterCommands(m.registry.Plugins())
		m.palette.SetSize(m.width, m.height)
		m.palette.Open(m.keymap, m.registry.Plugins(), m.activeContext, pluginCtx)
		m.activeContext = "palette"

	case CmdToggleDiagnostics:
		m.showDiagnostics = !m.showDiagnostics
		if m.showDiagnostics {
			m.activeContext = "diagnostics"
		} else {
			m.updateContext()
		}

	case CmdToggleFooter:
		m.showFooter = !m.showFooter
		m.resize()

	case CmdRefresh:
		return m, tmsg.Refresh()

	case CmdReloadIndex:
		m.ShowToast("Detecting index...", 2*time.Second, false)
		return m, detectIndex(m.registry.Context().WorkDir, m.cfg.Index.Path, m.cfg.Index.Source)
	}
	return m, nil
}

// isAppCommand reports whether id is handled by runCommand.
func isAppCommand(id string) bool {
	switch id {
	case CmdQuit, CmdTogglePalette, CmdToggleDiagnostics, CmdToggleFooter, CmdRefresh, CmdReloadIndex:
		return true
	}
	return false
}

// updateContext sets activeContext based on current state.
func (m *Model) updateContext() {
	switch {
	case m.viewerActive():
		m.activeContext = viewerContext
	case m.ActivePlugin() != nil:
		m.activeContext = m.ActivePlugin().FocusContext()
	default:
		m.activeContext = "global"
	}
}

// resize propagates the content area size to the palette and viewer.
func (m *Model) resize() {
	m.palette.SetSize(m.width, m.height)
	if m.viewer != nil {
		m.viewer.SetSize(m.width, m.contentHeight())
	}
}
