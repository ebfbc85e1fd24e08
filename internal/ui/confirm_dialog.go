package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/taskpicker/internal/styles"
)

// Confirm dialog actions returned by HandleKey.
const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
)

// ConfirmDialog is a small yes/no modal with two buttons.
type ConfirmDialog struct {
	Title        string
	Message      string
	ConfirmLabel string         // e.g., " Quit ", " Yes "
	CancelLabel  string         // e.g., " Cancel ", " No "
	BorderColor  lipgloss.Color // Modal border color
	Width        int            // Modal width (default ModalWidthMedium)

	focusCancel bool
}

// NewConfirmDialog creates a dialog with sensible defaults.
func NewConfirmDialog(title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		Title:        title,
		Message:      message,
		ConfirmLabel: " Confirm ",
		CancelLabel:  " Cancel ",
		BorderColor:  styles.Primary,
		Width:        ModalWidthMedium,
	}
}

// HandleKey processes a key and returns ActionConfirm, ActionCancel, or "".
func (d *ConfirmDialog) HandleKey(msg tea.KeyMsg) string {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		d.focusCancel = !d.focusCancel
	case "enter":
		if d.focusCancel {
			return ActionCancel
		}
		return ActionConfirm
	case "y", "Y":
		return ActionConfirm
	case "n", "N", "esc":
		return ActionCancel
	}
	return ""
}

// View renders the dialog box.
func (d *ConfirmDialog) View() string {
	confirm, cancel := styles.ButtonFocused, styles.Button
	if d.focusCancel {
		confirm, cancel = styles.Button, styles.ButtonFocused
	}

	var b strings.Builder
	b.WriteString(styles.ModalTitle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(styles.Body.Render(d.Message))
	b.WriteString("\n\n")
	b.WriteString(confirm.Render(d.ConfirmLabel))
	b.WriteString("  ")
	b.WriteString(cancel.Render(d.CancelLabel))

	return styles.ModalBox.
		BorderForeground(d.BorderColor).
		Width(d.Width).
		Render(b.String())
}
