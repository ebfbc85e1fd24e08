package config

import "fmt"

// Editor modes.
const (
	EditorInternal = "internal"
	EditorExternal = "external"
)

// Config is the root configuration structure.
type Config struct {
	Vault   VaultConfig   `json:"vault"`
	Index   IndexConfig   `json:"index"`
	Editor  EditorConfig  `json:"editor"`
	Plugins PluginsConfig `json:"plugins"`
	Keymap  KeymapConfig  `json:"keymap"`
	UI      UIConfig      `json:"ui"`
	Log     LogConfig     `json:"log"`
}

// VaultConfig locates the notes directory.
type VaultConfig struct {
	Root string `json:"root"` // supports ~ expansion
}

// IndexConfig selects the index source the task list reads from.
type IndexConfig struct {
	Source string `json:"source"` // registered source id; empty = first detected
	Path   string `json:"path"`   // explicit index file; empty = source default under the vault
	Watch  bool   `json:"watch"`  // rebuild open lists when the index changes
}

// EditorConfig controls how selected tasks are opened.
type EditorConfig struct {
	Mode    string `json:"mode"`    // "internal" viewer or "external" $EDITOR
	Command string `json:"command"` // external editor; empty = $EDITOR, $VISUAL, vim
}

// PluginsConfig holds per-plugin configuration.
type PluginsConfig struct {
	TaskList TaskListPluginConfig `json:"task-list"`
}

// TaskListPluginConfig configures the task list plugin.
type TaskListPluginConfig struct {
	Enabled bool `json:"enabled"`
	// ExactCount shows the real number of tasks in the picker title
	// instead of the historical count plus one.
	ExactCount bool `json:"exactCount"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter bool        `json:"showFooter"`
	Theme      ThemeConfig `json:"theme"`
}

// ThemeConfig configures the color theme.
type ThemeConfig struct {
	Name      string            `json:"name"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Path  string `json:"path"`  // empty = <config dir>/taskpicker.log
	Level string `json:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Vault: VaultConfig{
			Root: ".",
		},
		Index: IndexConfig{
			Watch: true,
		},
		Editor: EditorConfig{
			Mode: EditorExternal,
		},
		Plugins: PluginsConfig{
			TaskList: TaskListPluginConfig{
				Enabled: true,
			},
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowFooter: true,
			Theme: ThemeConfig{
				Name:      "default",
				Overrides: make(map[string]string),
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Editor.Mode {
	case EditorInternal, EditorExternal:
	case "":
		c.Editor.Mode = EditorExternal
	default:
		return fmt.Errorf("editor.mode %q: want %q or %q", c.Editor.Mode, EditorInternal, EditorExternal)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	case "":
		c.Log.Level = "info"
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	if c.Vault.Root == "" {
		c.Vault.Root = "."
	}
	return nil
}
