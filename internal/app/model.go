package app

import (
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/config"
	"github.com/marcus/taskpicker/internal/editor"
	"github.com/marcus/taskpicker/internal/keymap"
	"github.com/marcus/taskpicker/internal/palette"
	"github.com/marcus/taskpicker/internal/plugin"
	"github.com/marcus/taskpicker/internal/styles"
	"github.com/marcus/taskpicker/internal/ui"
)

var errNoIndex = errors.New("no index source found in vault")

// ModalKind identifies an app-level modal with explicit priority ordering.
// Lower values = higher priority (checked first for rendering and input routing).
type ModalKind int

const (
	ModalNone        ModalKind = iota // No modal open
	ModalQuitConfirm                  // Quit confirmation dialog
	ModalPalette                      // Command palette
	ModalDiagnostics                  // Diagnostics
)

// activeModal returns the highest-priority open modal.
func (m *Model) activeModal() ModalKind {
	switch {
	case m.showQuitConfirm:
		return ModalQuitConfirm
	case m.showPalette:
		return ModalPalette
	case m.showDiagnostics:
		return ModalDiagnostics
	default:
		return ModalNone
	}
}

// Model is the root Bubble Tea model for taskpicker.
type Model struct {
	cfg    *config.Config
	logger *slog.Logger

	// Plugin management
	registry     *plugin.Registry
	activePlugin int

	// Keymap
	keymap        *keymap.Registry
	activeContext string

	// Documents. viewer is nil when the editor mode is external.
	workspace editor.Workspace
	viewer    *editor.Viewer
	external  *editor.External

	// UI state
	width, height   int
	ready           bool
	showDiagnostics bool
	showFooter      bool
	showPalette     bool
	showQuitConfirm bool
	quitConfirm     *ui.ConfirmDialog
	palette         palette.Model

	// Status/toast messages
	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool

	lastError   error
	lastRefresh time.Time
	clock       time.Time

	currentVersion string
}

// New creates the application model over an initialized plugin registry.
func New(reg *plugin.Registry, km *keymap.Registry, cfg *config.Config, currentVersion string) Model {
	root := reg.Context().WorkDir
	logger := reg.Context().Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, cmd := range appCommands() {
		km.RegisterCommand(cmd)
	}
	km.RegisterCommands(reg.Plugins())

	m := Model{
		cfg:            cfg,
		logger:         logger,
		registry:       reg,
		keymap:         km,
		activeContext:  "global",
		external:       editor.NewExternal(root, cfg.Editor.Command),
		showFooter:     cfg.UI.ShowFooter,
		palette:        palette.New(),
		lastRefresh:    time.Now(),
		clock:          time.Now(),
		currentVersion: currentVersion,
	}
	if cfg.Editor.Mode == config.EditorInternal {
		m.viewer = editor.NewViewer(root)
		m.workspace = m.viewer
	} else {
		m.workspace = m.external
	}

	if p := m.ActivePlugin(); p != nil {
		p.SetFocused(true)
		m.activeContext = p.FocusContext()
	}
	return m
}

// Init starts every plugin and the clock.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	cmds = append(cmds, m.registry.Start()...)
	return tea.Batch(cmds...)
}

// ActivePlugin returns the currently active plugin.
func (m Model) ActivePlugin() plugin.Plugin {
	plugins := m.registry.Plugins()
	if len(plugins) == 0 {
		return nil
	}
	if m.activePlugin >= len(plugins) {
		return plugins[0]
	}
	return plugins[m.activePlugin]
}

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(msg string, duration time.Duration, isError bool) {
	m.statusMsg = msg
	m.statusExpiry = time.Now().Add(duration)
	m.statusIsError = isError
}

// ClearToast clears any expired toast message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

// viewerActive reports whether the built-in viewer owns the content area.
func (m Model) viewerActive() bool {
	return m.viewer != nil && m.viewer.Active()
}

// pluginOverlay returns the active plugin's overlay when one is shown.
func (m Model) pluginOverlay(width, height int) (string, bool) {
	op, ok := m.ActivePlugin().(plugin.OverlayProvider)
	if !ok {
		return "", false
	}
	return op.Overlay(width, height)
}

// pluginCapturesKeys reports whether the active plugin wants every key,
// which is the case while its picker or settings panel is shown.
func (m Model) pluginCapturesKeys() bool {
	p := m.ActivePlugin()
	if p == nil {
		return false
	}
	if tc, ok := p.(plugin.TextInputConsumer); ok && tc.ConsumesTextInput() {
		return true
	}
	_, shown := m.pluginOverlay(m.width, m.height)
	return shown
}

func (m *Model) openQuitConfirm() {
	d := ui.NewConfirmDialog("Quit taskpicker?", "Are you sure you want to quit?")
	d.ConfirmLabel = " Quit "
	d.BorderColor = styles.Error
	d.Width = ui.ModalWidthSmall
	m.quitConfirm = d
	m.showQuitConfirm = true
}

// contentHeight is the height left for plugin content.
func (m Model) contentHeight() int {
	h := m.height - headerHeight
	if m.showFooter {
		h -= footerHeight
	}
	return max(0, h)
}
