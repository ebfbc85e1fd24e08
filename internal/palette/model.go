package palette

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/keymap"
	"github.com/marcus/taskpicker/internal/plugin"
)

// CommandSelectedMsg is sent when the user picks a command.
type CommandSelectedMsg struct {
	CommandID string
	Context   string
}

// Model is the command palette.
type Model struct {
	textInput textinput.Model

	entries  []PaletteEntry
	filtered []PaletteEntry

	cursor     int
	offset     int
	maxVisible int

	width, height int

	showAllContexts bool
	activeContext   string
	pluginContext   string
}

// New creates a closed palette.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search commands..."
	ti.Prompt = ""
	ti.CharLimit = 64
	return Model{
		textInput:  ti,
		maxVisible: 12,
	}
}

// SetSize updates the available screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.maxVisible = max(3, min(12, height-12))
}

// Open resets the palette for a new session over km's commands.
func (m *Model) Open(km *keymap.Registry, plugins []plugin.Plugin, activeContext, pluginContext string) {
	owners := make(map[string]string)
	for _, p := range plugins {
		for _, c := range p.Commands() {
			owners[c.ID] = p.ID()
		}
	}
	m.activeContext = activeContext
	m.pluginContext = pluginContext
	m.showAllContexts = false
	m.entries = BuildEntries(km, activeContext, pluginContext, owners)
	m.textInput.SetValue("")
	m.textInput.Focus()
	m.refilter()
}

// Query returns the current search text.
func (m Model) Query() string { return m.textInput.Value() }

// Filtered returns the visible entries in display order.
func (m Model) Filtered() []PaletteEntry { return m.filtered }

// Selected returns the entry under the cursor.
func (m Model) Selected() (PaletteEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return PaletteEntry{}, false
	}
	return m.filtered[m.cursor], true
}

func (m *Model) refilter() {
	m.filtered = filterEntries(m.entries, m.textInput.Value(), m.activeContext, m.showAllContexts)
	m.cursor = 0
	m.offset = 0
}

// Update handles palette input. Esc is handled by the app.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "ctrl+p":
		m.moveCursor(-1)
		return m, nil
	case "down", "ctrl+n":
		m.moveCursor(1)
		return m, nil
	case "tab":
		m.showAllContexts = !m.showAllContexts
		m.refilter()
		return m, nil
	case "enter":
		entry, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return CommandSelectedMsg{CommandID: entry.CommandID, Context: entry.Context}
		}
	}

	prev := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() != prev {
		m.refilter()
	}
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.filtered)) % len(m.filtered)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.maxVisible {
		m.offset = m.cursor - m.maxVisible + 1
	}
}
