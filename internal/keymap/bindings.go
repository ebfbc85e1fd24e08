package keymap

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "q", Command: "quit", Context: "global"},
		{Key: "ctrl+c", Command: "quit", Context: "global"},
		{Key: "?", Command: "toggle-palette", Context: "global"},
		{Key: "ctrl+p", Command: "toggle-palette", Context: "global"},
		{Key: "!", Command: "toggle-diagnostics", Context: "global"},
		{Key: "ctrl+h", Command: "toggle-footer", Context: "global"},
		{Key: "r", Command: "refresh", Context: "global"},
		{Key: "R", Command: "reload-index", Context: "global"},

		// Task list home view. The plugin registers its own bindings
		// via ctx.Keymap.RegisterPluginBinding() in Init().

		// Task picker modal
		{Key: "enter", Command: "select", Context: "task-picker"},
		{Key: "esc", Command: "cancel", Context: "task-picker"},
		{Key: "up", Command: "cursor-up", Context: "task-picker"},
		{Key: "down", Command: "cursor-down", Context: "task-picker"},
		{Key: "ctrl+p", Command: "cursor-up", Context: "task-picker"},
		{Key: "ctrl+n", Command: "cursor-down", Context: "task-picker"},
		{Key: "pgup", Command: "page-up", Context: "task-picker"},
		{Key: "pgdown", Command: "page-down", Context: "task-picker"},
		{Key: "ctrl+y", Command: "yank", Context: "task-picker"},
		{Key: "ctrl+o", Command: "open-new-pane", Context: "task-picker"},
		{Key: "tab", Command: "toggle-detail", Context: "task-picker"},

		// Task list settings panel
		{Key: "enter", Command: "save", Context: "task-list-settings"},
		{Key: "esc", Command: "close", Context: "task-list-settings"},

		// Document viewer
		{Key: "esc", Command: "close", Context: "document-viewer"},
		{Key: "q", Command: "close", Context: "document-viewer"},
		{Key: "j", Command: "scroll-down", Context: "document-viewer"},
		{Key: "k", Command: "scroll-up", Context: "document-viewer"},
		{Key: "ctrl+d", Command: "page-down", Context: "document-viewer"},
		{Key: "ctrl+u", Command: "page-up", Context: "document-viewer"},
		{Key: "e", Command: "open-external", Context: "document-viewer"},

		// Command palette
		{Key: "esc", Command: "close", Context: "palette"},
		{Key: "enter", Command: "select", Context: "palette"},
		{Key: "tab", Command: "toggle-contexts", Context: "palette"},
	}
}
