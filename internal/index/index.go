package index

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound reports that a source's backing index does not exist.
var ErrNotFound = errors.New("index not found")

// Source provides read-only access to list items tracked by an external indexer.
// Implementations never write to the index they read.
type Source interface {
	ID() string
	Name() string
	Capabilities() CapabilitySet
	Detect() (bool, error)
	// Items returns every tracked task item under scope, ordered by the
	// containing document's creation time (newest first), then by position
	// within the document.
	Items(ctx context.Context, scope string) ([]Item, error)
	// Watch emits change events until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context) (<-chan Event, error)
}

// Capability represents a feature supported by a source.
type Capability string

const (
	CapItems Capability = "items"
	CapWatch Capability = "watch"
)

// CapabilitySet tracks which features a source supports.
type CapabilitySet map[Capability]bool

// Point is a location inside a document. Lines are 0-indexed.
type Point struct {
	Line   int
	Col    int
	Offset int
}

// Position is the span a list item occupies in its document.
type Position struct {
	Start Point
	End   Point
}

// Item is a task list item as reported by the index.
type Item struct {
	Text     string
	Path     string
	Symbol   string
	Checked  bool
	Status   string
	Tags     []string
	Position Position
	Children []Child
}

// Child is a nested list item (task or plain bullet) below an Item.
type Child struct {
	Symbol   string
	Status   string
	Text     string
	Children []Child
}

// Event represents a change in index data.
type Event struct {
	Type EventType
	Path string
}

// EventType identifies the kind of index event.
type EventType string

const (
	EventIndexUpdated EventType = "index_updated"
	EventIndexRemoved EventType = "index_removed"
)

// InScope reports whether a document path falls under a folder scope.
// An empty scope (or "/") matches every document. A scope also matches the
// document it names when given without its extension.
func InScope(docPath, scope string) bool {
	scope = strings.Trim(strings.TrimSpace(scope), "/")
	if scope == "" {
		return true
	}
	docPath = strings.TrimPrefix(docPath, "/")
	if docPath == scope || strings.HasPrefix(docPath, scope+"/") {
		return true
	}
	return strings.TrimSuffix(docPath, path.Ext(docPath)) == scope
}
