package dataview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcus/taskpicker/internal/index"
)

const fixture = `{
  "pages": [
    {
      "path": "Notes/old.md",
      "ctime": 1700000000000,
      "tasks": [
        {"text": "old task", "symbol": "-", "status": " ", "checked": false, "tags": ["#p1"],
         "position": {"start": {"line": 4, "col": 0, "offset": 40}, "end": {"line": 4, "col": 14, "offset": 54}},
         "children": []}
      ]
    },
    {
      "path": "Notes/new.md",
      "ctime": "2024-05-01T10:00:00Z",
      "tasks": [
        {"text": "new task", "status": "/", "checked": false, "tags": [],
         "position": {"start": {"line": 1}, "end": {"line": 3}},
         "children": [
           {"symbol": "-", "status": "", "text": "note", "children": []},
           {"symbol": "-", "status": "x", "text": "sub", "children": [
             {"symbol": "*", "status": "", "text": "deep", "children": []}
           ]}
         ]}
      ]
    },
    {
      "path": "Archive/skip.md",
      "ctime": 1800000000000,
      "tasks": [{"text": "out of scope", "status": " "}]
    }
  ]
}`

func writeFixture(t *testing.T, content string) *Source {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, DefaultRelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return New(index.Options{Root: root})
}

func TestID(t *testing.T) {
	s := New(index.Options{Root: "/vault"})
	if got := s.ID(); got != "dataview" {
		t.Errorf("ID() = %q, want %q", got, "dataview")
	}
	if got := s.Path(); got != filepath.Join("/vault", DefaultRelPath) {
		t.Errorf("Path() = %q", got)
	}
}

func TestCapabilities(t *testing.T) {
	caps := New(index.Options{}).Capabilities()
	if !caps[index.CapItems] || !caps[index.CapWatch] {
		t.Errorf("unexpected capabilities %v", caps)
	}
}

func TestDetect(t *testing.T) {
	s := writeFixture(t, fixture)
	ok, err := s.Detect()
	if err != nil || !ok {
		t.Fatalf("Detect() = %v, %v; want true, nil", ok, err)
	}

	missing := New(index.Options{Root: t.TempDir()})
	ok, err = missing.Detect()
	if err != nil || ok {
		t.Fatalf("Detect() on empty vault = %v, %v; want false, nil", ok, err)
	}
}

func TestItems_ScopeAndOrder(t *testing.T) {
	s := writeFixture(t, fixture)

	items, err := s.Items(context.Background(), "Notes")
	if err != nil {
		t.Fatalf("Items error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	// new.md (2024) was created after old.md (2023).
	if items[0].Text != "new task" || items[1].Text != "old task" {
		t.Errorf("unexpected order: %q, %q", items[0].Text, items[1].Text)
	}

	got := items[0]
	if got.Path != "Notes/new.md" {
		t.Errorf("path = %q, want page path", got.Path)
	}
	if got.Position.Start.Line != 1 || got.Position.End.Line != 3 {
		t.Errorf("position = %+v", got.Position)
	}
	if len(got.Children) != 2 || len(got.Children[1].Children) != 1 {
		t.Fatalf("children not parsed: %+v", got.Children)
	}
	if got.Children[1].Children[0].Text != "deep" {
		t.Errorf("grandchild text = %q", got.Children[1].Children[0].Text)
	}

	old := items[1]
	if len(old.Tags) != 1 || old.Tags[0] != "#p1" {
		t.Errorf("tags = %v", old.Tags)
	}
	if old.Position.Start.Offset != 40 {
		t.Errorf("offset = %d, want 40", old.Position.Start.Offset)
	}
}

func TestItems_EmptyScopeMatchesAll(t *testing.T) {
	s := writeFixture(t, fixture)
	items, err := s.Items(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Text != "out of scope" {
		t.Errorf("newest page should come first, got %q", items[0].Text)
	}
}

func TestItems_NoMatchingDocuments(t *testing.T) {
	s := writeFixture(t, fixture)
	items, err := s.Items(context.Background(), "Nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestItems_MissingFile(t *testing.T) {
	s := New(index.Options{Root: t.TempDir()})
	_, err := s.Items(context.Background(), "")
	if !errors.Is(err, index.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestItems_Malformed(t *testing.T) {
	s := writeFixture(t, `{"pages": [`)
	if _, err := s.Items(context.Background(), ""); err == nil {
		t.Error("expected error for malformed export")
	}
}

func TestItems_DeeplyNestedChildren(t *testing.T) {
	const depth = 1000
	var b strings.Builder
	b.WriteString(`{"pages": [{"path": "Deep.md", "ctime": 1, "tasks": [{"text": "root", "status": " ", "children": `)
	for i := 0; i < depth; i++ {
		b.WriteString(`[{"symbol": "-", "text": "level", "children": `)
	}
	b.WriteString(`[]`)
	for i := 0; i < depth; i++ {
		b.WriteString(`}]`)
	}
	b.WriteString(`}]}]}`)

	items, err := writeFixture(t, b.String()).Items(context.Background(), "")
	if err != nil {
		t.Fatalf("Items error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d", len(items))
	}
	n, children := 0, items[0].Children
	for len(children) > 0 {
		n++
		children = children[0].Children
	}
	if n != depth {
		t.Errorf("depth = %d, want %d", n, depth)
	}
}
