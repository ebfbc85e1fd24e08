package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDir is the per-vault directory holding plugin data, relative to the vault root.
const DataDir = ".taskpicker"

// PluginData stores one opaque JSON record per plugin under
// <root>/plugins/<id>/data.json.
type PluginData struct {
	root string
}

// NewPluginData creates a store rooted at dir.
func NewPluginData(dir string) *PluginData {
	return &PluginData{root: dir}
}

// ForVault creates a store in the vault's data directory.
func ForVault(vaultRoot string) *PluginData {
	return NewPluginData(filepath.Join(vaultRoot, DataDir))
}

func (d *PluginData) file(id string) string {
	return filepath.Join(d.root, "plugins", id, "data.json")
}

// LoadData returns the plugin's stored record, or nil if nothing was saved yet.
func (d *PluginData) LoadData(id string) ([]byte, error) {
	data, err := os.ReadFile(d.file(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SaveData replaces the plugin's stored record. The write goes through a
// temporary file so readers never see a partial record.
func (d *PluginData) SaveData(id string, data []byte) error {
	target := d.file(id)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "data-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
