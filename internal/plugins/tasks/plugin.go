// Package tasks implements the task-list plugin: a fuzzy picker over the
// vault's open tasks and backlog, backed by the external index.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/editor"
	"github.com/marcus/taskpicker/internal/index"
	"github.com/marcus/taskpicker/internal/msg"
	"github.com/marcus/taskpicker/internal/plugin"
	"github.com/marcus/taskpicker/internal/settings"
	"github.com/marcus/taskpicker/internal/state"
	"github.com/marcus/taskpicker/internal/tasklist"
)

const (
	pluginID   = "task-list"
	pluginName = "tasks"
	pluginIcon = "T"

	listContext     = "task-list"
	pickerContext   = "task-picker"
	settingsContext = "task-list-settings"
)

// Command IDs exposed to the palette and keymap.
const (
	CmdOpenTaskList    = "open-task-list-modal"
	CmdOpenBacklogList = "open-backlog-list-modal"
	CmdSettings        = "task-list-settings"
)

var errPluginDisabled = errors.New("disabled in config")

type openPickerMsg struct{ mode tasklist.Mode }

type openSettingsMsg struct{}

// indexChangedMsg is emitted by the index watch loop.
type indexChangedMsg struct {
	epoch uint64
	event index.Event
}

func (m indexChangedMsg) GetEpoch() uint64 { return m.epoch }

// Plugin implements the task-list plugin.
type Plugin struct {
	ctx     *plugin.Context
	focused bool
	logger  *slog.Logger

	runCtx context.Context
	cancel context.CancelFunc

	builder  *tasklist.Builder
	store    *settings.Store
	settings settings.Settings
	loadErr  error // settings load failure, reported at Start

	suggester *taskSuggester
	picker    *picker[tasklist.Task]
	mode      tasklist.Mode

	showDetail bool
	md         markdownRenderer

	settingsOpen bool
	folderInput  textinput.Model

	watchCh   <-chan index.Event
	watchErr  error
	refreshes int

	lastSelected string
	lastErr      error
}

// New creates the task-list plugin.
func New() *Plugin {
	return &Plugin{mode: tasklist.ModeTask}
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return pluginID }

// Name returns the plugin display name.
func (p *Plugin) Name() string { return pluginName }

// Icon returns the plugin icon character.
func (p *Plugin) Icon() string { return pluginIcon }

// Init wires the plugin to the index, the settings store and the keymap.
func (p *Plugin) Init(ctx *plugin.Context) error {
	if ctx.Config != nil && !ctx.Config.Plugins.TaskList.Enabled {
		return errPluginDisabled
	}

	p.ctx = ctx
	p.logger = ctx.Logger
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("plugin", pluginID)

	if p.cancel != nil {
		p.cancel()
	}
	p.runCtx, p.cancel = context.WithCancel(context.Background())

	p.builder = tasklist.NewBuilder(ctx.Index, p.logger)
	p.store = settings.NewStore(ctx.Data, pluginID)
	p.settings, p.loadErr = p.store.Load(p.runCtx)
	if p.loadErr != nil {
		p.logger.Warn("load settings", "err", p.loadErr)
	}

	if last, err := tasklist.ParseMode(state.GetLastMode()); err == nil {
		p.mode = last
	}
	p.suggester = &taskSuggester{
		builder: p.builder,
		mode:    p.mode,
		scope:   func() string { return p.settings.TargetFolder },
	}
	p.picker = newPicker[tasklist.Task](p.suggester, "Search tasks...", ctx.Epoch)
	p.showDetail = state.GetShowDetail()
	p.settingsOpen = false
	p.watchCh, p.watchErr = nil, nil

	ti := textinput.New()
	ti.Placeholder = "Folder/Subfolder"
	ti.Prompt = ""
	ti.CharLimit = 256
	p.folderInput = ti

	if ctx.Keymap != nil {
		ctx.Keymap.RegisterPluginBinding("t", CmdOpenTaskList, listContext)
		ctx.Keymap.RegisterPluginBinding("b", CmdOpenBacklogList, listContext)
		ctx.Keymap.RegisterPluginBinding("s", CmdSettings, listContext)
	}
	return nil
}

// Start reports deferred init problems and starts watching the index.
func (p *Plugin) Start() tea.Cmd {
	var cmds []tea.Cmd
	if p.loadErr != nil {
		cmds = append(cmds, msg.ShowError(p.loadErr))
	}

	src := p.ctx.Index
	watch := p.ctx.Config == nil || p.ctx.Config.Index.Watch
	if watch && src != nil && src.Capabilities()[index.CapWatch] {
		ch, err := src.Watch(p.runCtx)
		if err != nil {
			p.watchErr = err
			p.logger.Warn("watch index", "source", src.ID(), "err", err)
		} else {
			p.watchCh = ch
			cmds = append(cmds, p.listen())
		}
	}
	return tea.Batch(cmds...)
}

// Stop cancels the watch loop and any in-flight load.
func (p *Plugin) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.picker != nil {
		p.picker.close()
	}
}

// listen waits for the next index event.
func (p *Plugin) listen() tea.Cmd {
	ch, epoch := p.watchCh, p.ctx.Epoch
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return indexChangedMsg{epoch: epoch, event: ev}
	}
}

// Update handles messages.
func (p *Plugin) Update(m tea.Msg) (plugin.Plugin, tea.Cmd) {
	switch m := m.(type) {
	case openPickerMsg:
		return p, p.openPicker(m.mode)

	case openSettingsMsg:
		p.openSettings()
		return p, textinput.Blink

	case itemsLoadedMsg[tasklist.Task]:
		// A reinit replaces the picker and restarts seq, so seq alone
		// cannot tell a previous picker's load apart.
		if plugin.IsStale(p.ctx, m) || !p.picker.loaded(m) {
			return p, nil
		}
		if m.err != nil {
			p.lastErr = m.err
			return p, msg.ShowError(m.err)
		}
		p.lastErr = nil
		return p, nil

	case indexChangedMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		p.refreshes++
		p.logger.Debug("index changed", "type", string(m.event.Type), "path", m.event.Path)
		cmds := []tea.Cmd{p.listen()}
		if p.picker.state == stateReady || p.picker.state == stateLoading {
			cmds = append(cmds, p.picker.reload(p.runCtx))
		}
		return p, tea.Batch(cmds...)

	case msg.RefreshMsg:
		if p.picker.visible() {
			return p, p.picker.reload(p.runCtx)
		}
		return p, nil

	case editor.OpenedMsg:
		if p.picker.state == stateNavigating {
			p.picker.close()
		}
		return p, nil

	case editor.OpenFailedMsg:
		if p.picker.state == stateNavigating {
			p.picker.close()
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(m)
	}
	return p, nil
}

func (p *Plugin) openPicker(mode tasklist.Mode) tea.Cmd {
	p.settingsOpen = false
	p.mode = mode
	p.suggester.mode = mode
	if err := state.SetLastMode(string(mode)); err != nil {
		p.logger.Warn("save last mode", "err", err)
	}
	return tea.Batch(p.picker.open(p.runCtx), textinput.Blink)
}

func (p *Plugin) openSettings() {
	p.picker.close()
	p.settingsOpen = true
	p.folderInput.SetValue(p.settings.TargetFolder)
	p.folderInput.CursorEnd()
	p.folderInput.Focus()
}

func (p *Plugin) handleKey(k tea.KeyMsg) (plugin.Plugin, tea.Cmd) {
	if p.settingsOpen {
		return p, p.handleSettingsKey(k)
	}
	if p.picker.visible() {
		return p, p.handlePickerKey(k)
	}
	return p, nil
}

func (p *Plugin) handlePickerKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		p.picker.close()
		return nil
	case "enter":
		return p.choose(false)
	case "ctrl+o":
		return p.choose(true)
	case "up", "ctrl+p", "ctrl+k":
		p.picker.moveCursor(-1)
	case "down", "ctrl+n", "ctrl+j":
		p.picker.moveCursor(1)
	case "pgup":
		p.picker.moveCursor(-pageStep)
	case "pgdown":
		p.picker.moveCursor(pageStep)
	case "ctrl+y":
		return p.yankSelected()
	case "tab":
		p.showDetail = !p.showDetail
		if err := state.SetShowDetail(p.showDetail); err != nil {
			return msg.ShowError(err)
		}
	default:
		return p.picker.updateInput(k)
	}
	return nil
}

const pageStep = 5

func (p *Plugin) choose(newPane bool) tea.Cmd {
	t, ok := p.picker.selected()
	if !ok {
		return nil
	}
	p.lastSelected = t.Text
	return p.picker.choose(newPane)
}

func (p *Plugin) handleSettingsKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc", "enter":
		p.settingsOpen = false
		p.folderInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	p.folderInput, cmd = p.folderInput.Update(k)
	if v := p.folderInput.Value(); v != p.settings.TargetFolder {
		p.settings.TargetFolder = v
		if err := p.store.Save(p.runCtx, p.settings); err != nil {
			p.lastErr = err
			return tea.Batch(cmd, msg.ShowError(err))
		}
	}
	return cmd
}

// yankSelected copies the selected task's text to the system clipboard.
func (p *Plugin) yankSelected() tea.Cmd {
	t, ok := p.picker.selected()
	if !ok {
		return nil
	}
	if err := clipboard.WriteAll(t.Text); err != nil {
		return msg.ShowToast("Copy failed: "+err.Error(), 2*time.Second)
	}
	return msg.ShowToast("Copied: "+t.Text, 2*time.Second)
}

// IsFocused returns whether the plugin is focused.
func (p *Plugin) IsFocused() bool { return p.focused }

// SetFocused sets the focus state.
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// ConsumesTextInput reports whether a text input currently owns the keyboard.
func (p *Plugin) ConsumesTextInput() bool {
	return p.settingsOpen || (p.picker != nil && p.picker.visible())
}

// Commands returns the commands for the current view.
func (p *Plugin) Commands() []plugin.Command {
	if p.settingsOpen {
		return []plugin.Command{
			{ID: "close", Name: "Done", Description: "Close settings", Category: plugin.CategoryActions, Context: settingsContext, Priority: 1},
		}
	}
	if p.picker != nil && p.picker.visible() {
		return []plugin.Command{
			{ID: "select", Name: "Open", Description: "Open the selected task", Category: plugin.CategoryNavigation, Context: pickerContext, Priority: 1},
			{ID: "open-new-pane", Name: "Split", Description: "Open in a new pane", Category: plugin.CategoryNavigation, Context: pickerContext, Priority: 2},
			{ID: "yank", Name: "Yank", Description: "Copy task text", Category: plugin.CategoryActions, Context: pickerContext, Priority: 3},
			{ID: "toggle-detail", Name: "Details", Description: "Toggle detail pane", Category: plugin.CategoryActions, Context: pickerContext, Priority: 4},
			{ID: "cancel", Name: "Close", Description: "Close the picker", Category: plugin.CategoryActions, Context: pickerContext, Priority: 5},
		}
	}
	return []plugin.Command{
		{ID: CmdOpenTaskList, Name: "Tasks", Description: "Open task list", Category: plugin.CategorySearch, Context: listContext, Priority: 1,
			Handler: func() tea.Cmd { return func() tea.Msg { return openPickerMsg{mode: tasklist.ModeTask} } }},
		{ID: CmdOpenBacklogList, Name: "Backlog", Description: "Open backlog list", Category: plugin.CategorySearch, Context: listContext, Priority: 2,
			Handler: func() tea.Cmd { return func() tea.Msg { return openPickerMsg{mode: tasklist.ModeBacklog} } }},
		{ID: CmdSettings, Name: "Settings", Description: "Task list settings", Category: plugin.CategorySystem, Context: listContext, Priority: 3,
			Handler: func() tea.Cmd { return func() tea.Msg { return openSettingsMsg{} } }},
	}
}

// FocusContext returns the current keymap context.
func (p *Plugin) FocusContext() string {
	if p.settingsOpen {
		return settingsContext
	}
	if p.picker != nil && p.picker.visible() {
		return pickerContext
	}
	return listContext
}

// Diagnostics reports index and settings health.
func (p *Plugin) Diagnostics() []plugin.Diagnostic {
	var diags []plugin.Diagnostic
	if p.ctx == nil || p.ctx.Index == nil {
		diags = append(diags, plugin.Diagnostic{ID: "index", Status: "error", Detail: "no index source detected"})
	} else {
		diags = append(diags, plugin.Diagnostic{ID: "index", Status: "ok", Detail: p.ctx.Index.Name()})
		switch {
		case p.watchErr != nil:
			diags = append(diags, plugin.Diagnostic{ID: "watch", Status: "warn", Detail: p.watchErr.Error()})
		case p.watchCh != nil:
			diags = append(diags, plugin.Diagnostic{ID: "watch", Status: "ok", Detail: "live refresh on"})
		}
	}
	if p.loadErr != nil {
		diags = append(diags, plugin.Diagnostic{ID: "settings", Status: "error", Detail: p.loadErr.Error()})
	}
	if p.lastErr != nil {
		diags = append(diags, plugin.Diagnostic{ID: "last-error", Status: "error", Detail: p.lastErr.Error()})
	}
	return diags
}
