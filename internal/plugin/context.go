package plugin

import (
	"log/slog"

	"github.com/marcus/taskpicker/internal/config"
	"github.com/marcus/taskpicker/internal/index"
)

// DataStore persists one opaque record per plugin.
type DataStore interface {
	LoadData(pluginID string) ([]byte, error)
	SaveData(pluginID string, data []byte) error
}

// BindingRegistrar lets plugins register their own key bindings.
type BindingRegistrar interface {
	RegisterPluginBinding(key, command, context string)
}

// Context is shared with every plugin at Init.
type Context struct {
	WorkDir   string // vault root
	ConfigDir string
	Config    *config.Config
	Index     index.Source // nil when no index was detected
	Data      DataStore
	Keymap    BindingRegistrar
	Logger    *slog.Logger

	// Epoch increments whenever the index source is swapped.
	Epoch uint64
}
