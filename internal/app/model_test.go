package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/config"
	"github.com/marcus/taskpicker/internal/editor"
	"github.com/marcus/taskpicker/internal/index"
	"github.com/marcus/taskpicker/internal/keymap"
	tmsg "github.com/marcus/taskpicker/internal/msg"
	"github.com/marcus/taskpicker/internal/palette"
	"github.com/marcus/taskpicker/internal/plugin"
)

type fakeOpenMsg struct{}

type fakePlugin struct {
	focused  bool
	capture  bool
	overlay  string
	inits    int
	stopped  int
	received []tea.Msg
}

func (p *fakePlugin) ID() string   { return "fake" }
func (p *fakePlugin) Name() string { return "Fake" }
func (p *fakePlugin) Icon() string { return "F" }
func (p *fakePlugin) Init(ctx *plugin.Context) error {
	p.inits++
	ctx.Keymap.RegisterPluginBinding("o", "fake-open", "fake")
	return nil
}
func (p *fakePlugin) Start() tea.Cmd { return nil }
func (p *fakePlugin) Stop()          { p.stopped++ }
func (p *fakePlugin) Update(msg tea.Msg) (plugin.Plugin, tea.Cmd) {
	p.received = append(p.received, msg)
	return p, nil
}
func (p *fakePlugin) View(width, height int) string { return "fake home" }
func (p *fakePlugin) IsFocused() bool               { return p.focused }
func (p *fakePlugin) SetFocused(f bool)             { p.focused = f }
func (p *fakePlugin) FocusContext() string          { return "fake" }
func (p *fakePlugin) ConsumesTextInput() bool       { return p.capture }
func (p *fakePlugin) Overlay(width, height int) (string, bool) {
	return p.overlay, p.overlay != ""
}
func (p *fakePlugin) Commands() []plugin.Command {
	return []plugin.Command{{
		ID: "fake-open", Name: "Open", Description: "Open fake", Context: "fake", Priority: 1,
		Handler: func() tea.Cmd { return func() tea.Msg { return fakeOpenMsg{} } },
	}}
}

func (p *fakePlugin) got(match func(tea.Msg) bool) bool {
	for _, m := range p.received {
		if match(m) {
			return true
		}
	}
	return false
}

func newTestModel(t *testing.T, mode string) (Model, *fakePlugin) {
	t.Helper()
	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	cfg := config.Default()
	cfg.Editor.Mode = mode
	cfg.Editor.Command = "true"

	ctx := &plugin.Context{
		WorkDir: t.TempDir(),
		Config:  cfg,
		Keymap:  km,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	reg := plugin.NewRegistry(ctx)
	p := &fakePlugin{}
	if err := reg.Register(p); err != nil {
		t.Fatal(err)
	}
	m := New(reg, km, cfg, "v0.0.0-test")
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, p
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// msgs runs cmd and flattens batches.
func msgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch m := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, msgs(c)...)
		}
		return out
	default:
		return []tea.Msg{m}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+h":
		return tea.KeyMsg{Type: tea.KeyCtrlH}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestIsAppCommand(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{CmdQuit, true},
		{CmdTogglePalette, true},
		{CmdToggleDiagnostics, true},
		{CmdToggleFooter, true},
		{CmdRefresh, true},
		{CmdReloadIndex, true},
		{"open-task-list-modal", false},
		{"close", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isAppCommand(tt.id); got != tt.want {
			t.Errorf("isAppCommand(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestNew_FocusesPluginAndRegistersCommands(t *testing.T) {
	m, p := newTestModel(t, config.EditorExternal)
	if !p.focused {
		t.Error("plugin not focused")
	}
	if m.activeContext != "fake" {
		t.Errorf("activeContext = %q, want fake", m.activeContext)
	}
	for _, id := range []string{CmdQuit, CmdReloadIndex, "fake-open"} {
		if _, ok := m.keymap.GetCommand(id); !ok {
			t.Errorf("command %q not registered", id)
		}
	}
	if m.viewer != nil {
		t.Error("external mode should not create a viewer")
	}
}

func TestToastMsg(t *testing.T) {
	m, _ := newTestModel(t, config.EditorExternal)
	m, _ = update(m, tmsg.ShowToast("You selected: ship it", 0)())
	if m.statusMsg != "You selected: ship it" || m.statusIsError {
		t.Errorf("status = %q error=%v", m.statusMsg, m.statusIsError)
	}
	m, _ = update(m, tmsg.ShowError(errors.New("index unavailable"))())
	if !m.statusIsError {
		t.Error("error toast not flagged")
	}
}

func TestQuitConfirm(t *testing.T) {
	m, p := newTestModel(t, config.EditorExternal)

	m, _ = update(m, key("q"))
	if !m.showQuitConfirm {
		t.Fatal("q should ask before quitting")
	}
	m, _ = update(m, key("n"))
	if m.showQuitConfirm {
		t.Fatal("n should cancel")
	}

	m, _ = update(m, key("ctrl+c"))
	_, cmd := update(m, key("y"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("confirm did not quit")
	}
	if p.stopped != 1 {
		t.Errorf("plugin stopped %d times, want 1", p.stopped)
	}
}

func TestCapturingPluginReceivesAppKeys(t *testing.T) {
	m, p := newTestModel(t, config.EditorExternal)
	p.capture = true

	m, _ = update(m, key("q"))
	if m.showQuitConfirm {
		t.Error("q should reach the plugin while it captures input")
	}
	m, _ = update(m, key("?"))
	if m.showPalette {
		t.Error("? should reach the plugin while it captures input")
	}
	if !p.got(func(msg tea.Msg) bool { k, ok := msg.(tea.KeyMsg); return ok && k.String() == "q" }) {
		t.Error("plugin did not receive q")
	}

	m, _ = update(m, key("ctrl+c"))
	if !m.showQuitConfirm {
		t.Error("ctrl+c should always ask to quit")
	}
}

func TestOverlayCapturesAndRenders(t *testing.T) {
	m, p := newTestModel(t, config.EditorExternal)
	p.overlay = "PICKER OVERLAY"

	if !m.pluginCapturesKeys() {
		t.Error("visible overlay should capture keys")
	}
	if !strings.Contains(m.View(), "PICKER OVERLAY") {
		t.Error("overlay not composited")
	}
}

func TestKeymapRunsPluginCommand(t *testing.T) {
	m, _ := newTestModel(t, config.EditorExternal)
	_, cmd := update(m, key("o"))
	if cmd == nil {
		t.Fatal("bound key produced no command")
	}
	if _, ok := cmd().(fakeOpenMsg); !ok {
		t.Error("wrong command ran")
	}
}

func TestPaletteSelectsCommand(t *testing.T) {
	m, _ := newTestModel(t, config.EditorExternal)

	m, _ = update(m, key("?"))
	if !m.showPalette || m.activeContext != "palette" {
		t.Fatalf("palette not open: show=%v ctx=%q", m.showPalette, m.activeContext)
	}
	if !strings.Contains(m.View(), "Open fake") {
		t.Error("palette does not list plugin command")
	}

	m, cmd := update(m, palette.CommandSelectedMsg{CommandID: "fake-open", Context: "fake"})
	if m.showPalette {
		t.Error("palette should close after selection")
	}
	if cmd == nil {
		t.Fatal("selection produced no command")
	}
	if _, ok := cmd().(fakeOpenMsg); !ok {
		t.Error("wrong command ran")
	}

	m, _ = update(m, key("?"))
	m, _ = update(m, key("esc"))
	if m.showPalette || m.activeContext != "fake" {
		t.Errorf("esc did not close palette: ctx=%q", m.activeContext)
	}
}

func TestDiagnosticsToggle(t *testing.T) {
	m, _ := newTestModel(t, config.EditorExternal)
	m, _ = update(m, key("!"))
	if !m.showDiagnostics {
		t.Fatal("diagnostics not shown")
	}
	view := m.View()
	for _, want := range []string{"Diagnostics", "Fake", "v0.0.0-test"} {
		if !strings.Contains(view, want) {
			t.Errorf("diagnostics missing %q", want)
		}
	}
	m, _ = update(m, key("esc"))
	if m.showDiagnostics {
		t.Error("esc did not close diagnostics")
	}
}

func TestFooterToggle(t *testing.T) {
	m, _ := newTestModel(t, config.EditorExternal)
	before := m.contentHeight()
	m, _ = update(m, key("ctrl+h"))
	if m.showFooter || m.contentHeight() != before+footerHeight {
		t.Errorf("footer toggle: show=%v height=%d", m.showFooter, m.contentHeight())
	}
}

func TestRefreshForwardsToPlugins(t *testing.T) {
	m, p := newTestModel(t, config.EditorExternal)
	m, cmd := update(m, key("r"))
	if cmd == nil {
		t.Fatal("r produced no command")
	}
	update(m, cmd())
	if !p.got(func(msg tea.Msg) bool { _, ok := msg.(tmsg.RefreshMsg); return ok }) {
		t.Error("plugin did not receive refresh")
	}
}

func TestNavigate_InternalViewer(t *testing.T) {
	m, p := newTestModel(t, config.EditorInternal)
	root := m.registry.Context().WorkDir
	var doc strings.Builder
	for i := range 40 {
		doc.WriteString("line ")
		doc.WriteString(strings.Repeat("x", i%5))
		doc.WriteString("\n")
	}
	if err := os.WriteFile(filepath.Join(root, "Inbox.md"), []byte(doc.String()), 0644); err != nil {
		t.Fatal(err)
	}

	nav := plugin.NavigateMsg{
		Path:  "Inbox.md",
		Range: index.Position{Start: index.Point{Line: 20}, End: index.Point{Line: 20, Col: 5}},
	}
	m, cmd := update(m, nav)
	if cmd == nil {
		t.Fatal("navigate produced no command")
	}
	m, cmd = update(m, cmd())
	if !m.viewerActive() || m.activeContext != viewerContext {
		t.Fatalf("viewer not active: ctx=%q", m.activeContext)
	}
	if m.viewer.Cursor() != 20 {
		t.Errorf("cursor = %d, want 20", m.viewer.Cursor())
	}
	var opened bool
	for _, msg := range msgs(cmd) {
		if _, ok := msg.(editor.OpenedMsg); ok {
			opened = true
			m, _ = update(m, msg)
		}
	}
	if !opened {
		t.Fatal("viewer did not report the open")
	}
	if !p.got(func(msg tea.Msg) bool { o, ok := msg.(editor.OpenedMsg); return ok && o.Line == 20 }) {
		t.Error("plugin did not receive OpenedMsg")
	}
	if !strings.Contains(m.View(), "Inbox.md") {
		t.Error("viewer header missing path")
	}

	// q closes the viewer instead of quitting.
	m, cmd = update(m, key("q"))
	if m.showQuitConfirm {
		t.Error("q in the viewer should close it")
	}
	if cmd != nil {
		m, _ = update(m, cmd())
	}
	if m.viewerActive() || m.activeContext != "fake" {
		t.Errorf("viewer still active: ctx=%q", m.activeContext)
	}
}

func TestNavigate_MissingDocumentShowsError(t *testing.T) {
	m, p := newTestModel(t, config.EditorExternal)
	m, cmd := update(m, plugin.NavigateMsg{Path: "gone.md"})
	if cmd == nil {
		t.Fatal("navigate produced no command")
	}
	failed, ok := cmd().(editor.OpenFailedMsg)
	if !ok {
		t.Fatalf("got %T, want OpenFailedMsg", cmd())
	}
	if !errors.Is(failed.Err, editor.ErrDocumentOpenFailed) {
		t.Errorf("err = %v", failed.Err)
	}
	m, _ = update(m, failed)
	if !m.statusIsError || m.lastError == nil {
		t.Error("failure not surfaced as an error toast")
	}
	if !p.got(func(msg tea.Msg) bool { _, ok := msg.(editor.OpenFailedMsg); return ok }) {
		t.Error("plugin did not receive OpenFailedMsg")
	}
}

type appTestSource struct{ name string }

func (s *appTestSource) ID() string   { return "app-test" }
func (s *appTestSource) Name() string { return s.name }
func (s *appTestSource) Capabilities() index.CapabilitySet {
	return index.CapabilitySet{index.CapItems: true}
}
func (s *appTestSource) Detect() (bool, error)                               { return true, nil }
func (s *appTestSource) Items(context.Context, string) ([]index.Item, error) { return nil, nil }
func (s *appTestSource) Watch(context.Context) (<-chan index.Event, error)   { return nil, nil }

func TestReloadIndex(t *testing.T) {
	index.RegisterFactory("app-test", func(index.Options) index.Source { return &appTestSource{name: "App test index"} })

	m, p := newTestModel(t, config.EditorExternal)
	m.cfg.Index.Source = "app-test"
	epoch := m.registry.Context().Epoch

	m, cmd := update(m, key("R"))
	if cmd == nil {
		t.Fatal("R produced no command")
	}
	m, _ = update(m, cmd())

	ctx := m.registry.Context()
	if ctx.Index == nil || ctx.Index.ID() != "app-test" {
		t.Fatalf("index = %v", ctx.Index)
	}
	if ctx.Epoch != epoch+1 {
		t.Errorf("epoch = %d, want %d", ctx.Epoch, epoch+1)
	}
	if p.inits != 2 || p.stopped != 1 {
		t.Errorf("inits=%d stopped=%d, want 2 and 1", p.inits, p.stopped)
	}
	if !strings.Contains(m.statusMsg, "App test index") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestRenderHintLineTruncated(t *testing.T) {
	hints := []footerHint{{"t", "Tasks"}, {"b", "Backlog"}, {"?", "help"}}
	full := renderHintLineTruncated(hints, 200)
	for _, want := range []string{"Tasks", "Backlog", "help"} {
		if !strings.Contains(full, want) {
			t.Errorf("hints missing %q", want)
		}
	}
	short := renderHintLineTruncated(hints, 12)
	if strings.Contains(short, "help") {
		t.Errorf("hints not truncated: %q", short)
	}
	if renderHintLineTruncated(hints, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestViewTooSmall(t *testing.T) {
	m, _ := newTestModel(t, config.EditorExternal)
	m, _ = update(m, tea.WindowSizeMsg{Width: 30, Height: 10})
	if !strings.Contains(m.View(), "Terminal too small") {
		t.Error("small terminal warning missing")
	}
}
