// Package msg holds messages plugins send to the host without importing it.
package msg

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastMsg displays a temporary message.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	IsError  bool // true for error toasts (red), false for success (green)
}

// ShowToast returns a command to show a toast message.
func ShowToast(message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  message,
			Duration: duration,
		}
	}
}

// ShowError returns a command to show err as an error toast.
func ShowError(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg {
		return ToastMsg{
			Message:  err.Error(),
			Duration: 5 * time.Second,
			IsError:  true,
		}
	}
}

// RefreshMsg asks plugins to reload their data.
type RefreshMsg struct{}

// Refresh returns a command to trigger a refresh.
func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}
