package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInScope(t *testing.T) {
	tests := []struct {
		doc, scope string
		want       bool
	}{
		{"Notes/a.md", "", true},
		{"Notes/a.md", "/", true},
		{"Notes/a.md", "  ", true},
		{"Notes/a.md", "Notes", true},
		{"Notes/a.md", "/Notes/", true},
		{"Notes/sub/a.md", "Notes", true},
		{"NotesArchive/a.md", "Notes", false},
		{"Inbox.md", "Inbox", true},
		{"Inbox.md", "Inbox.md", true},
		{"Other/a.md", "Notes", false},
	}
	for _, tt := range tests {
		if got := InScope(tt.doc, tt.scope); got != tt.want {
			t.Errorf("InScope(%q, %q) = %v, want %v", tt.doc, tt.scope, got, tt.want)
		}
	}
}

type stubSource struct {
	id     string
	exists bool
}

func (s *stubSource) ID() string                                    { return s.id }
func (s *stubSource) Name() string                                  { return s.id }
func (s *stubSource) Capabilities() CapabilitySet                   { return CapabilitySet{CapItems: true} }
func (s *stubSource) Detect() (bool, error)                         { return s.exists, nil }
func (s *stubSource) Items(context.Context, string) ([]Item, error) { return nil, nil }
func (s *stubSource) Watch(context.Context) (<-chan Event, error)   { return nil, nil }

func TestRegistryDetectAndPick(t *testing.T) {
	RegisterFactory("test-present", func(Options) Source { return &stubSource{id: "test-present", exists: true} })
	RegisterFactory("test-absent", func(Options) Source { return &stubSource{id: "test-absent"} })

	found, err := DetectSources(Options{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("DetectSources: %v", err)
	}
	if _, ok := found["test-present"]; !ok {
		t.Error("present source not detected")
	}
	if _, ok := found["test-absent"]; ok {
		t.Error("absent source detected")
	}

	if got := Pick(found, "test-present"); got == nil || got.ID() != "test-present" {
		t.Errorf("Pick(preferred) = %v", got)
	}
	if got := Pick(found, "missing"); got == nil {
		t.Error("Pick should fall back to a detected source")
	}
	if got := Pick(nil, "x"); got != nil {
		t.Errorf("Pick(nil) = %v, want nil", got)
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open("no-such-source", Options{}); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "index.json")
	if err := os.WriteFile(target, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := WatchFiles(ctx, dir, "index.json")
	if err != nil {
		t.Fatalf("WatchFiles: %v", err)
	}

	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte(`{"pages":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Type != EventIndexUpdated {
			t.Errorf("event type = %q, want %q", ev.Type, EventIndexUpdated)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event after write")
	}

	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-events:
		if ev.Type != EventIndexRemoved {
			t.Errorf("event type = %q, want %q", ev.Type, EventIndexRemoved)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event after remove")
	}
}

func TestWatchFiles_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := WatchFiles(ctx, t.TempDir(), "index.json")
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestHashFiles(t *testing.T) {
	dir := t.TempDir()
	a := hashFiles(dir, []string{"x"})
	if err := os.WriteFile(filepath.Join(dir, "x"), []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}
	b := hashFiles(dir, []string{"x"})
	if a == b {
		t.Error("hash should change when a file appears")
	}
	if b != hashFiles(dir, []string{"x", "missing"}) {
		t.Error("missing files should not affect the hash")
	}
}
