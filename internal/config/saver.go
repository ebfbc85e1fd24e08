package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary. Pointer fields keep
// false values from being dropped by omitempty.
type saveConfig struct {
	Vault   VaultConfig       `json:"vault"`
	Index   saveIndexConfig   `json:"index"`
	Editor  EditorConfig      `json:"editor"`
	Plugins savePluginsConfig `json:"plugins"`
	Keymap  KeymapConfig      `json:"keymap"`
	UI      saveUIConfig      `json:"ui"`
	Log     LogConfig         `json:"log"`
}

type saveIndexConfig struct {
	Source string `json:"source,omitempty"`
	Path   string `json:"path,omitempty"`
	Watch  *bool  `json:"watch"`
}

type savePluginsConfig struct {
	TaskList saveTaskListConfig `json:"task-list"`
}

type saveTaskListConfig struct {
	Enabled    *bool `json:"enabled"`
	ExactCount *bool `json:"exactCount"`
}

type saveUIConfig struct {
	ShowFooter *bool       `json:"showFooter"`
	Theme      ThemeConfig `json:"theme"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Vault: cfg.Vault,
		Index: saveIndexConfig{
			Source: cfg.Index.Source,
			Path:   cfg.Index.Path,
			Watch:  &cfg.Index.Watch,
		},
		Editor: cfg.Editor,
		Plugins: savePluginsConfig{
			TaskList: saveTaskListConfig{
				Enabled:    &cfg.Plugins.TaskList.Enabled,
				ExactCount: &cfg.Plugins.TaskList.ExactCount,
			},
		},
		Keymap: cfg.Keymap,
		UI: saveUIConfig{
			ShowFooter: &cfg.UI.ShowFooter,
			Theme:      cfg.UI.Theme,
		},
		Log: cfg.Log,
	}
}

// Save writes the config to ~/.config/taskpicker/config.json. Top-level
// keys this package does not manage are carried over from the existing file.
func Save(cfg *Config) error {
	path := ConfigPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	merged := make(map[string]json.RawMessage)
	if existing, err := os.ReadFile(path); err == nil {
		// A corrupt file is replaced rather than blocking the save.
		_ = json.Unmarshal(existing, &merged)
	}

	managed, err := json.Marshal(toSaveConfig(cfg))
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(managed, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
