package app

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/taskpicker/internal/keymap"
	"github.com/marcus/taskpicker/internal/plugin"
	"github.com/marcus/taskpicker/internal/styles"
	"github.com/marcus/taskpicker/internal/ui"
)

const (
	headerHeight = 2 // header line + spacing
	footerHeight = 1
	minWidth     = 60
	minHeight    = 16

	// overlayTop keeps plugin overlays just under the header.
	overlayTop = 2
)

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show warning if terminal is too small
	if m.width < minWidth || m.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.StatusBlocked.Render(msg))
	}

	contentHeight := m.contentHeight()

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString("\n") // spacing between header and content
	b.WriteString(m.renderContent(m.width, contentHeight))
	if m.showFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	bg := b.String()
	if overlay, ok := m.pluginOverlay(m.width, m.height); ok && !m.viewerActive() {
		bg = ui.OverlayModalTop(bg, overlay, m.width, m.height, overlayTop)
	}

	switch m.activeModal() {
	case ModalQuitConfirm:
		return ui.OverlayModal(bg, m.quitConfirm.View(), m.width, m.height)
	case ModalPalette:
		return ui.OverlayModal(bg, m.palette.View(), m.width, m.height)
	case ModalDiagnostics:
		return m.renderDiagnosticsOverlay(bg)
	}
	return bg
}

// renderHeader renders the title, vault name and clock.
func (m Model) renderHeader() string {
	vault := filepath.Base(m.registry.Context().WorkDir)
	title := styles.BarTitle.Render(" taskpicker") + styles.Muted.Render(" / "+vault) + " "

	var tabs []string
	for i, p := range m.registry.Plugins() {
		style := styles.BarChip
		if i == m.activePlugin {
			style = styles.BarChipActive
		}
		tabs = append(tabs, style.Render(p.Name()))
	}
	tabBar := strings.Join(tabs, " ")

	clock := styles.BarText.Render(m.clock.Format("15:04"))

	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(tabBar) - lipgloss.Width(clock)
	if spacing < 0 {
		spacing = 0
	}
	header := title + strings.Repeat(" ", spacing/2) + tabBar + strings.Repeat(" ", spacing-(spacing/2)) + clock
	return styles.Header.Width(m.width).MaxWidth(m.width).Render(header)
}

// renderContent renders the main content area.
func (m Model) renderContent(width, height int) string {
	if height == 0 {
		return ""
	}
	var content string
	switch p := m.ActivePlugin(); {
	case m.viewerActive():
		content = m.viewer.View()
	case p == nil:
		msg := "No plugins loaded"
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.Muted.Render(msg))
	default:
		content = p.View(width, height)
	}
	// MaxHeight truncates tall content so the header stays on screen.
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
}

// renderFooter renders the bottom bar with key hints and status.
func (m Model) renderFooter() string {
	var status string
	if m.statusMsg != "" {
		toastStyle := styles.ToastSuccess
		if m.statusIsError {
			toastStyle = styles.ToastError
		}
		status = toastStyle.Render(m.statusMsg)
	}

	refresh := styles.Muted.Render(fmt.Sprintf("↻ %s", m.lastRefresh.Format("15:04:05")))

	statusWidth := lipgloss.Width(status)
	refreshWidth := lipgloss.Width(refresh)
	minSpacing := 4
	availableForHints := m.width - statusWidth - refreshWidth - minSpacing

	hintsStr := renderHintLineTruncated(m.footerHints(), availableForHints)

	hintsWidth := lipgloss.Width(hintsStr)
	spacing := m.width - hintsWidth - statusWidth - refreshWidth
	if spacing < 0 {
		spacing = 0
	}

	footer := hintsStr + strings.Repeat(" ", spacing/2) + status + strings.Repeat(" ", spacing-(spacing/2)) + refresh
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(footer)
}

type footerHint struct {
	keys  string
	label string
}

func (m Model) footerHints() []footerHint {
	var hints []footerHint
	switch {
	case m.viewerActive():
		hints = contextFooterHints(m.keymap.BindingsForContext(viewerContext))
	case m.ActivePlugin() != nil:
		hints = m.pluginFooterHints(m.ActivePlugin(), m.activeContext)
	}
	return append(hints, m.globalFooterHints()...)
}

func (m Model) globalFooterHints() []footerHint {
	keysByCmd := bindingKeysByCommand(m.keymap.BindingsForContext("global"))

	specs := []struct {
		id    string
		label string
	}{
		{id: CmdTogglePalette, label: "help"},
		{id: CmdQuit, label: "quit"},
	}

	var hints []footerHint
	for _, spec := range specs {
		keys := keysByCmd[spec.id]
		if len(keys) == 0 {
			continue
		}
		hints = append(hints, footerHint{keys: keys[0], label: spec.label})
	}
	return hints
}

func (m Model) pluginFooterHints(p plugin.Plugin, context string) []footerHint {
	if context == "" || context == "global" {
		return nil
	}

	keysByCmd := bindingKeysByCommand(m.keymap.BindingsForContext(context))

	type cmdWithPriority struct {
		cmd      plugin.Command
		keys     []string
		priority int
	}

	var cmds []cmdWithPriority
	for _, cmd := range p.Commands() {
		if cmd.Context != context {
			continue
		}
		keys := keysByCmd[cmd.ID]
		if len(keys) == 0 {
			continue
		}
		priority := cmd.Priority
		if priority == 0 {
			priority = 99
		}
		cmds = append(cmds, cmdWithPriority{cmd, keys, priority})
	}

	sort.SliceStable(cmds, func(i, j int) bool {
		return cmds[i].priority < cmds[j].priority
	})

	var hints []footerHint
	for _, c := range cmds {
		hints = append(hints, footerHint{
			keys:  formatBindingKeys(c.keys),
			label: c.cmd.Name,
		})
	}
	return hints
}

// contextFooterHints lists a context's bindings in registration order.
func contextFooterHints(bindings []keymap.Binding) []footerHint {
	keysByCmd := bindingKeysByCommand(bindings)
	seen := make(map[string]bool)
	var hints []footerHint
	for _, b := range bindings {
		if seen[b.Command] {
			continue
		}
		seen[b.Command] = true
		hints = append(hints, footerHint{
			keys:  formatBindingKeys(keysByCmd[b.Command]),
			label: formatCommandName(b.Command),
		})
	}
	return hints
}

func bindingKeysByCommand(bindings []keymap.Binding) map[string][]string {
	keysByCmd := make(map[string][]string, len(bindings))
	for _, b := range bindings {
		keysByCmd[b.Command] = append(keysByCmd[b.Command], b.Key)
	}
	return keysByCmd
}

// renderHintLineTruncated renders hints but stops adding when maxWidth is exceeded.
func renderHintLineTruncated(hints []footerHint, maxWidth int) string {
	if len(hints) == 0 || maxWidth <= 0 {
		return ""
	}
	var result string
	separator := "  "
	for _, hint := range hints {
		if hint.keys == "" || hint.label == "" {
			continue
		}
		part := fmt.Sprintf("%s %s", styles.KeyHint.Render(hint.keys), hint.label)
		candidate := part
		if result != "" {
			candidate = result + separator + part
		}
		if lipgloss.Width(candidate) > maxWidth {
			break
		}
		result = candidate
	}
	return result
}

// formatBindingKeys formats multiple keys into a display string.
func formatBindingKeys(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	if len(keys) > 2 {
		keys = keys[:2]
	}
	return strings.Join(keys, ", ")
}

// formatCommandName converts a command ID to a display name.
func formatCommandName(cmd string) string {
	return strings.ReplaceAll(cmd, "-", " ")
}

// renderDiagnosticsOverlay renders the diagnostics modal.
func (m Model) renderDiagnosticsOverlay(content string) string {
	modal := styles.ModalBox.Width(ui.ModalWidthLarge).Render(m.buildDiagnosticsContent())
	return ui.OverlayModal(content, modal, m.width, m.height)
}

// buildDiagnosticsContent creates the diagnostics modal content.
func (m Model) buildDiagnosticsContent() string {
	var b strings.Builder

	b.WriteString(styles.ModalTitle.Render("Diagnostics"))
	b.WriteString("\n\n")

	b.WriteString(styles.Title.Render("Plugins"))
	b.WriteString("\n")
	plugins := m.registry.Plugins()
	for _, p := range plugins {
		b.WriteString(fmt.Sprintf("  %s %s: active\n", okStyle().Render("✓"), p.Name()))
		if dp, ok := p.(plugin.DiagnosticProvider); ok {
			for _, d := range dp.Diagnostics() {
				b.WriteString(fmt.Sprintf("    %s %s: %s\n", statusIcon(d.Status), d.ID, d.Detail))
			}
		}
	}

	unavail := m.registry.Unavailable()
	ids := make([]string, 0, len(unavail))
	for id := range unavail {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b.WriteString(fmt.Sprintf("  %s %s: %s\n", styles.StatusBlocked.Render("✗"), id, unavail[id]))
	}
	if len(plugins) == 0 && len(unavail) == 0 {
		b.WriteString(styles.Muted.Render("  No plugins registered"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	ctx := m.registry.Context()
	indexName := "none"
	if ctx.Index != nil {
		indexName = ctx.Index.Name()
	}
	b.WriteString(styles.Title.Render("System"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Vault:   %s\n", styles.Muted.Render(ctx.WorkDir)))
	b.WriteString(fmt.Sprintf("  Index:   %s\n", styles.Muted.Render(indexName)))
	b.WriteString(fmt.Sprintf("  Editor:  %s\n", styles.Muted.Render(m.cfg.Editor.Mode)))
	b.WriteString(fmt.Sprintf("  Theme:   %s\n", styles.Muted.Render(styles.GetCurrentThemeName())))
	b.WriteString(fmt.Sprintf("  Refresh: %s\n", styles.Muted.Render(m.lastRefresh.Format("15:04:05"))))
	b.WriteString(fmt.Sprintf("  Version: %s\n", styles.Muted.Render(m.currentVersion)))
	b.WriteString("\n")

	if m.lastError != nil {
		b.WriteString(styles.Title.Render("Last Error"))
		b.WriteString("\n")
		b.WriteString(styles.StatusBlocked.Render("  " + m.lastError.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(styles.Subtle.Render("Press ! or esc to close"))
	return b.String()
}

// okStyle follows the active theme, so it is built on use.
func okStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(styles.Success) }

func statusIcon(status string) string {
	switch status {
	case "ok":
		return okStyle().Render("•")
	case "warn", "warning":
		return lipgloss.NewStyle().Foreground(styles.Warning).Render("•")
	case "error":
		return styles.StatusBlocked.Render("•")
	default:
		return styles.Muted.Render("•")
	}
}
