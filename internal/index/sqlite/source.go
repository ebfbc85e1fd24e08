// Package sqlite reads task items from the indexer's SQLite database.
// The database is opened read-only; its schema is owned by the indexer:
//
//	documents(path TEXT PRIMARY KEY, ctime INTEGER)
//	items(id, path, parent_id, task, symbol, status, checked, text, tags,
//	      start_line, start_col, start_offset, end_line, end_col, end_offset)
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marcus/taskpicker/internal/index"
)

const (
	sourceID   = "sqlite"
	sourceName = "SQLite index"

	// DefaultRelPath is where the database lives relative to the vault root.
	DefaultRelPath = ".taskpicker/index.db"
)

func init() {
	index.RegisterFactory(sourceID, func(opts index.Options) index.Source {
		return New(opts)
	})
}

const itemsQuery = `
SELECT i.id, i.path, i.parent_id, i.task, i.symbol, i.status, i.checked, i.text, i.tags,
       i.start_line, i.start_col, i.start_offset, i.end_line, i.end_col, i.end_offset
FROM items i
JOIN documents d ON d.path = i.path
ORDER BY d.ctime DESC, d.path ASC, i.start_line ASC, i.id ASC`

// sqlitePoolSettings keeps a read-only handle from holding idle descriptors.
func sqlitePoolSettings(db *sql.DB) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(time.Second)
}

// Source implements index.Source over the indexer's database.
type Source struct {
	path string
}

// New creates a source for the database at opts.Path, or the default location under opts.Root.
func New(opts index.Options) *Source {
	p := opts.Path
	if p == "" {
		p = filepath.Join(opts.Root, DefaultRelPath)
	}
	return &Source{path: p}
}

// ID returns the source identifier.
func (s *Source) ID() string { return sourceID }

// Name returns the human-readable source name.
func (s *Source) Name() string { return sourceName }

// Path returns the database path.
func (s *Source) Path() string { return s.path }

// Capabilities returns the supported features.
func (s *Source) Capabilities() index.CapabilitySet {
	return index.CapabilitySet{
		index.CapItems: true,
		index.CapWatch: true,
	}
}

// Detect reports whether the database file exists.
func (s *Source) Detect() (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Watch emits an event when the database or its WAL changes.
func (s *Source) Watch(ctx context.Context) (<-chan index.Event, error) {
	base := filepath.Base(s.path)
	return index.WatchFiles(ctx, filepath.Dir(s.path), base, base+"-wal")
}

type row struct {
	id       int64
	parentID sql.NullInt64
	task     bool
	item     index.Item
}

type node struct {
	row      row
	children []*node
}

// Items returns task rows under scope with their nested list items attached.
func (s *Source) Items(ctx context.Context, scope string) ([]index.Item, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", s.path, index.ErrNotFound)
		}
		return nil, err
	}

	db, err := sql.Open("sqlite", s.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	sqlitePoolSettings(db)
	defer db.Close()

	rows, err := db.QueryContext(ctx, itemsQuery)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var ordered []*node
	byID := make(map[int64]*node)
	for rows.Next() {
		var (
			r       row
			tags    string
			checked int
			task    int
		)
		it := &r.item
		if err := rows.Scan(&r.id, &it.Path, &r.parentID, &task, &it.Symbol, &it.Status, &checked, &it.Text, &tags,
			&it.Position.Start.Line, &it.Position.Start.Col, &it.Position.Start.Offset,
			&it.Position.End.Line, &it.Position.End.Col, &it.Position.End.Offset); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		r.task = task != 0
		it.Checked = checked != 0
		it.Tags = strings.Fields(tags)
		if !index.InScope(it.Path, scope) {
			continue
		}
		n := &node{row: r}
		byID[r.id] = n
		ordered = append(ordered, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	for _, n := range ordered {
		if !n.row.parentID.Valid {
			continue
		}
		if parent, ok := byID[n.row.parentID.Int64]; ok {
			parent.children = append(parent.children, n)
		}
	}

	var items []index.Item
	for _, n := range ordered {
		if !n.row.task {
			continue
		}
		it := n.row.item
		it.Children = toChildren(n)
		items = append(items, it)
	}
	return items, nil
}

// toChildren converts the subtree under root with an explicit stack. Each
// node is emitted at most once, so a parent_id cycle in a corrupt index
// cannot loop.
func toChildren(root *node) []index.Child {
	type frame struct {
		src []*node
		dst *[]index.Child
	}
	var out []index.Child
	seen := map[*node]bool{root: true}
	stack := []frame{{src: root.children, dst: &out}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var kept []*node
		for _, n := range f.src {
			if !seen[n] {
				seen[n] = true
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			continue
		}
		level := make([]index.Child, len(kept))
		for i, n := range kept {
			level[i] = index.Child{
				Symbol: n.row.item.Symbol,
				Status: n.row.item.Status,
				Text:   n.row.item.Text,
			}
			stack = append(stack, frame{src: n.children, dst: &level[i].Children})
		}
		*f.dst = level
	}
	return out
}
