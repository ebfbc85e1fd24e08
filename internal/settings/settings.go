// Package settings persists the task-list plugin's user settings through
// the host's per-plugin data store.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/marcus/taskpicker/internal/plugin"
)

// ErrPersistenceFailed wraps any failure to read or write the settings record.
var ErrPersistenceFailed = errors.New("settings persistence failed")

// Settings is the plugin's persisted configuration.
type Settings struct {
	// TargetFolder scopes the task list to documents under this folder.
	// Empty means the whole vault.
	TargetFolder string `json:"targetFolder"`
}

// Default returns the settings used when nothing has been saved.
func Default() Settings {
	return Settings{TargetFolder: ""}
}

// Store loads and saves Settings for one plugin.
type Store struct {
	data     plugin.DataStore
	pluginID string
}

// NewStore returns a store backed by data under pluginID.
func NewStore(data plugin.DataStore, pluginID string) *Store {
	return &Store{data: data, pluginID: pluginID}
}

// Load returns the persisted settings merged over Default. A missing record
// yields the defaults.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	out := Default()
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if s.data == nil {
		return out, fmt.Errorf("load %s: no data store: %w", s.pluginID, ErrPersistenceFailed)
	}

	raw, err := s.data.LoadData(s.pluginID)
	if err != nil {
		return out, fmt.Errorf("load %s: %w: %w", s.pluginID, ErrPersistenceFailed, err)
	}
	if len(raw) == 0 {
		return out, nil
	}

	// Unmarshal over the defaults so keys absent on disk keep their default.
	if err := json.Unmarshal(raw, &out); err != nil {
		return Default(), fmt.Errorf("decode %s: %w: %w", s.pluginID, ErrPersistenceFailed, err)
	}
	return out, nil
}

// Save writes the full settings record.
func (s *Store) Save(ctx context.Context, v Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.data == nil {
		return fmt.Errorf("save %s: no data store: %w", s.pluginID, ErrPersistenceFailed)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", s.pluginID, ErrPersistenceFailed, err)
	}
	if err := s.data.SaveData(s.pluginID, raw); err != nil {
		return fmt.Errorf("save %s: %w: %w", s.pluginID, ErrPersistenceFailed, err)
	}
	return nil
}
