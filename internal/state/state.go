package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// State holds persistent user preferences.
type State struct {
	// ShowDetail toggles the task detail pane in the picker.
	ShowDetail bool `json:"showDetail"`

	// LastMode is the list mode of the most recently opened picker.
	LastMode string `json:"lastMode,omitempty"`
}

var (
	current *State
	mu      sync.RWMutex
	path    string
)

// Init loads state from the default location.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitWithDir(filepath.Join(home, ".config", "taskpicker"))
}

// InitWithDir loads state from a specified directory.
// This is primarily for testing to avoid reading real user state.
func InitWithDir(dir string) error {
	path = filepath.Join(dir, "state.json")
	return Load()
}

// Load reads state from disk.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	current = &State{
		ShowDetail: true, // default
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, current)
}

// Save writes state to disk.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil || path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetShowDetail returns whether the picker detail pane is shown.
func GetShowDetail() bool {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return true
	}
	return current.ShowDetail
}

// SetShowDetail saves the detail pane preference.
func SetShowDetail(show bool) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.ShowDetail = show
	mu.Unlock()
	return Save()
}

// GetLastMode returns the last opened list mode, or "" if none.
func GetLastMode() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.LastMode
}

// SetLastMode records the last opened list mode.
func SetLastMode(mode string) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.LastMode = mode
	mu.Unlock()
	return Save()
}
