package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDir  = ".config/taskpicker"
	configFile = "config.json"
)

// testConfigPath overrides ConfigPath in tests.
var testConfigPath string

// rawConfig is the JSON-unmarshaling intermediary.
type rawConfig struct {
	Vault   VaultConfig      `json:"vault"`
	Index   rawIndexConfig   `json:"index"`
	Editor  EditorConfig     `json:"editor"`
	Plugins rawPluginsConfig `json:"plugins"`
	Keymap  KeymapConfig     `json:"keymap"`
	UI      rawUIConfig      `json:"ui"`
	Log     LogConfig        `json:"log"`
}

type rawIndexConfig struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Watch  *bool  `json:"watch"`
}

type rawPluginsConfig struct {
	TaskList rawTaskListConfig `json:"task-list"`
}

type rawTaskListConfig struct {
	Enabled    *bool `json:"enabled"`
	ExactCount *bool `json:"exactCount"`
}

type rawUIConfig struct {
	ShowFooter *bool       `json:"showFooter"`
	Theme      ThemeConfig `json:"theme"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/taskpicker/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigPath()
		if path == "" {
			return cfg, nil // Return defaults when home is unknown
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	mergeConfig(cfg, &raw)

	cfg.Vault.Root = ExpandPath(cfg.Vault.Root)
	cfg.Index.Path = ExpandPath(cfg.Index.Path)
	cfg.Log.Path = ExpandPath(cfg.Log.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	if raw.Vault.Root != "" {
		cfg.Vault.Root = raw.Vault.Root
	}

	// Index
	if raw.Index.Source != "" {
		cfg.Index.Source = raw.Index.Source
	}
	if raw.Index.Path != "" {
		cfg.Index.Path = raw.Index.Path
	}
	if raw.Index.Watch != nil {
		cfg.Index.Watch = *raw.Index.Watch
	}

	// Editor
	if raw.Editor.Mode != "" {
		cfg.Editor.Mode = raw.Editor.Mode
	}
	if raw.Editor.Command != "" {
		cfg.Editor.Command = raw.Editor.Command
	}

	// Task list
	if raw.Plugins.TaskList.Enabled != nil {
		cfg.Plugins.TaskList.Enabled = *raw.Plugins.TaskList.Enabled
	}
	if raw.Plugins.TaskList.ExactCount != nil {
		cfg.Plugins.TaskList.ExactCount = *raw.Plugins.TaskList.ExactCount
	}

	// Keymap
	for k, v := range raw.Keymap.Overrides {
		cfg.Keymap.Overrides[k] = v
	}

	// UI
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.Theme.Name != "" {
		cfg.UI.Theme.Name = raw.UI.Theme.Name
	}
	for k, v := range raw.UI.Theme.Overrides {
		cfg.UI.Theme.Overrides[k] = v
	}

	// Log
	if raw.Log.Path != "" {
		cfg.Log.Path = raw.Log.Path
	}
	if raw.Log.Level != "" {
		cfg.Log.Level = raw.Log.Level
	}
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if testConfigPath != "" {
		return testConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

// ConfigDir returns the directory holding the config file.
func ConfigDir() string {
	p := ConfigPath()
	if p == "" {
		return ""
	}
	return filepath.Dir(p)
}

// SetTestConfigPath points ConfigPath at path. Tests only.
func SetTestConfigPath(path string) { testConfigPath = path }

// ResetTestConfigPath restores the default ConfigPath.
func ResetTestConfigPath() { testConfigPath = "" }
