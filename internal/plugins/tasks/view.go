package tasks

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/taskpicker/internal/state"
	"github.com/marcus/taskpicker/internal/styles"
	"github.com/marcus/taskpicker/internal/ui"
)

const (
	pickerMaxWidth = 100
	detailMinWidth = 110 // box width needed before the detail pane shows
	pickerChrome   = 10  // border, padding, title, input, rule, hints
)

// titleCount is the number shown next to the picker title.
// Without exactCount it reproduces the legacy len+1 display.
func (p *Plugin) titleCount() int {
	n := len(p.picker.items)
	if p.ctx != nil && p.ctx.Config != nil && p.ctx.Config.Plugins.TaskList.ExactCount {
		return n
	}
	return n + 1
}

// Title returns the picker title line.
func (p *Plugin) Title() string {
	if p.picker.state == stateLoading {
		return p.mode.Title()
	}
	return fmt.Sprintf("%s (%d)", p.mode.Title(), p.titleCount())
}

// View renders the plugin's home screen.
func (p *Plugin) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.Logo.Render("Tasks"))
	b.WriteString("\n\n")

	src := "none detected"
	if p.ctx != nil && p.ctx.Index != nil {
		src = p.ctx.Index.Name()
	}
	folder := p.settings.TargetFolder
	if folder == "" {
		folder = "(whole vault)"
	}
	rows := [][2]string{
		{"Vault", p.vaultRoot()},
		{"Index", src},
		{"Target folder", folder},
	}
	if state.GetLastMode() != "" {
		rows = append(rows, [2]string{"Last list", p.mode.Title()})
	}
	if p.lastSelected != "" {
		rows = append(rows, [2]string{"Last selected", p.lastSelected})
	}
	for _, r := range rows {
		b.WriteString(styles.Muted.Width(16).Render(r[0]))
		b.WriteString(styles.Body.Render(r[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, h := range [][2]string{{"t", "task list"}, {"b", "backlog list"}, {"s", "settings"}, {"?", "commands"}} {
		b.WriteString(styles.KeyHint.Render(h[0]))
		b.WriteString(" ")
		b.WriteString(styles.Muted.Render(h[1]))
		b.WriteString("  ")
	}

	return lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2).Render(b.String())
}

func (p *Plugin) vaultRoot() string {
	if p.ctx == nil {
		return ""
	}
	return p.ctx.WorkDir
}

// Overlay renders the picker or settings panel above the app.
func (p *Plugin) Overlay(width, height int) (string, bool) {
	switch {
	case p.settingsOpen:
		return p.settingsView(width), true
	case p.picker != nil && p.picker.visible():
		return p.pickerView(width, height), true
	}
	return "", false
}

func (p *Plugin) pickerView(width, height int) string {
	boxWidth := min(width-4, pickerMaxWidth)
	withDetail := p.showDetail && width-4 >= detailMinWidth
	if withDetail {
		boxWidth = min(width-4, pickerMaxWidth+50)
	}
	inner := boxWidth - 6 // border + padding
	listWidth := inner
	if withDetail {
		listWidth = inner * 3 / 5
	}
	listHeight := max(3, height-4-pickerChrome)
	p.picker.setSize(listWidth, listHeight)

	var b strings.Builder
	b.WriteString(styles.Muted.Render(p.Title()))
	b.WriteString("\n")
	b.WriteString(p.picker.input.View())
	b.WriteString("\n")
	b.WriteString(styles.Subtle.Render(strings.Repeat("─", inner)))
	b.WriteString("\n")

	list := lipgloss.NewStyle().Width(listWidth).Height(listHeight).Render(p.picker.listView())
	if withDetail {
		detail := ""
		if t, ok := p.picker.selected(); ok {
			detail = p.md.render(detailMarkdown(t), inner-listWidth-2)
		}
		detail = lipgloss.NewStyle().
			Width(inner - listWidth - 2).
			Height(listHeight).
			MaxHeight(listHeight).
			PaddingLeft(2).
			Render(detail)
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	}
	b.WriteString(list)
	b.WriteString("\n")

	if p.picker.err != nil {
		b.WriteString(styles.ErrorTxt.Render(p.picker.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(pickerHints())

	return styles.ModalBox.Width(boxWidth).Render(b.String())
}

func pickerHints() string {
	hints := [][2]string{
		{"↑↓", "navigate"},
		{"enter", "open"},
		{"ctrl+o", "new pane"},
		{"ctrl+y", "yank"},
		{"tab", "details"},
		{"esc", "close"},
	}
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, styles.KeyHint.Render(h[0])+" "+styles.Muted.Render(h[1]))
	}
	return strings.Join(parts, "  ")
}

func (p *Plugin) settingsView(width int) string {
	boxWidth := min(width-4, ui.ModalWidthLarge)

	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render("Task List Settings"))
	b.WriteString("\n")
	b.WriteString(styles.Title.Render("Target Folder"))
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("Only list tasks from documents under this folder. Leave empty for the whole vault."))
	b.WriteString("\n\n")
	p.folderInput.Width = boxWidth - 10
	b.WriteString(styles.InputFocused.Width(boxWidth - 6).Render(p.folderInput.View()))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render("Changes save as you type. ") + styles.KeyHint.Render("esc") + " " + styles.Muted.Render("close"))

	return styles.ModalBox.Width(boxWidth).Render(b.String())
}
