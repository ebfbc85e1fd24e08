package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSave_PreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	// Write a config file that includes keys Save does not manage
	initial := []byte(`{
  "snippets": [
    {"name": "daily", "body": "- [ ] review inbox"}
  ],
  "customKey": "should survive"
}`)
	if err := os.WriteFile(path, initial, 0644); err != nil {
		t.Fatal(err)
	}

	// Point Save() at our temp file
	SetTestConfigPath(path)
	defer ResetTestConfigPath()

	cfg := Default()
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal saved config: %v", err)
	}

	if _, ok := raw["snippets"]; !ok {
		t.Error("Save() deleted 'snippets' key from config.json")
	}
	if _, ok := raw["customKey"]; !ok {
		t.Error("Save() deleted 'customKey' from config.json")
	}

	var snippets []map[string]interface{}
	if err := json.Unmarshal(raw["snippets"], &snippets); err != nil {
		t.Fatalf("unmarshal snippets: %v", err)
	}
	if len(snippets) != 1 || snippets[0]["name"] != "daily" {
		t.Errorf("snippets changed: %v", snippets)
	}

	// Verify managed keys are also present
	for _, key := range []string{"vault", "index", "editor", "plugins", "keymap", "ui"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Save() did not write %q key", key)
		}
	}
}

func TestSave_WorksWithNoExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	SetTestConfigPath(path)
	defer ResetTestConfigPath()

	cfg := Default()
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if _, ok := raw["vault"]; !ok {
		t.Error("missing 'vault' key")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	SetTestConfigPath(path)
	defer ResetTestConfigPath()

	cfg := Default()
	cfg.Vault.Root = dir
	cfg.Index.Watch = false
	cfg.Plugins.TaskList.ExactCount = true
	cfg.UI.ShowFooter = false
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Vault.Root != dir || loaded.Index.Watch || !loaded.Plugins.TaskList.ExactCount || loaded.UI.ShowFooter {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
