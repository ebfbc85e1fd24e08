// Package dataview reads the JSON task export written by the vault's
// indexing plugin. The export mirrors the indexer's page/task objects:
//
//	{"pages": [{"path": "Notes/a.md", "ctime": 1700000000000,
//	  "tasks": [{"text": "...", "status": " ", "children": [...]}]}]}
package dataview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/marcus/taskpicker/internal/index"
	"github.com/tidwall/gjson"
)

const (
	sourceID   = "dataview"
	sourceName = "Dataview export"

	// DefaultRelPath is where the export lives relative to the vault root.
	DefaultRelPath = ".taskpicker/index.json"
)

func init() {
	index.RegisterFactory(sourceID, func(opts index.Options) index.Source {
		return New(opts)
	})
}

// Source implements index.Source over a JSON export file.
type Source struct {
	path string
}

// New creates a source for the export at opts.Path, or the default location under opts.Root.
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

// Path returns the export file path.
func (s *Source) Path() string { return s.path }

// Capabilities returns the supported features.
func (s *Source) Capabilities() index.CapabilitySet {
	return index.CapabilitySet{
		index.CapItems: true,
		index.CapWatch: true,
	}
}

// Detect reports whether the export file exists.
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

// Watch emits an event whenever the export is rewritten.
func (s *Source) Watch(ctx context.Context) (<-chan index.Event, error) {
	return index.WatchFiles(ctx, filepath.Dir(s.path), filepath.Base(s.path))
}

type page struct {
	path  string
	ctime int64
	tasks []gjson.Result
}

// Items returns the tasks of every page under scope, newest page first.
func (s *Source) Items(ctx context.Context, scope string) ([]index.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, index.ErrNotFound)
		}
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: malformed export", s.path)
	}

	var pages []page
	gjson.GetBytes(data, "pages").ForEach(func(_, v gjson.Result) bool {
		p := page{
			path:  v.Get("path").String(),
			ctime: parseTime(v.Get("ctime")),
			tasks: v.Get("tasks").Array(),
		}
		if index.InScope(p.path, scope) {
			pages = append(pages, p)
		}
		return true
	})

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].ctime > pages[j].ctime
	})

	var items []index.Item
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, t := range p.tasks {
			items = append(items, parseItem(t, p.path))
		}
	}
	return items, nil
}

func parseItem(v gjson.Result, pagePath string) index.Item {
	path := v.Get("path").String()
	if path == "" {
		path = pagePath
	}
	var tags []string
	for _, t := range v.Get("tags").Array() {
		tags = append(tags, t.String())
	}
	return index.Item{
		Text:     v.Get("text").String(),
		Path:     path,
		Symbol:   v.Get("symbol").String(),
		Checked:  v.Get("checked").Bool(),
		Status:   v.Get("status").String(),
		Tags:     tags,
		Position: parsePosition(v.Get("position")),
		Children: parseChildren(v.Get("children")),
	}
}

// parseChildren builds the child tree with an explicit stack, like the
// context flattener, so deeply nested exports cannot exhaust the stack.
func parseChildren(v gjson.Result) []index.Child {
	type frame struct {
		src []gjson.Result
		dst *[]index.Child
	}
	var out []index.Child
	stack := []frame{{src: v.Array(), dst: &out}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(f.src) == 0 {
			continue
		}
		level := make([]index.Child, len(f.src))
		for i, c := range f.src {
			level[i] = index.Child{
				Symbol: c.Get("symbol").String(),
				Status: c.Get("status").String(),
				Text:   c.Get("text").String(),
			}
			stack = append(stack, frame{src: c.Get("children").Array(), dst: &level[i].Children})
		}
		*f.dst = level
	}
	return out
}

func parsePosition(v gjson.Result) index.Position {
	point := func(p gjson.Result) index.Point {
		return index.Point{
			Line:   int(p.Get("line").Int()),
			Col:    int(p.Get("col").Int()),
			Offset: int(p.Get("offset").Int()),
		}
	}
	return index.Position{
		Start: point(v.Get("start")),
		End:   point(v.Get("end")),
	}
}

// parseTime accepts epoch milliseconds or an RFC 3339 string.
func parseTime(v gjson.Result) int64 {
	switch v.Type {
	case gjson.Number:
		return v.Int()
	case gjson.String:
		t, err := time.Parse(time.RFC3339, v.String())
		if err != nil {
			return 0
		}
		return t.UnixMilli()
	default:
		return 0
	}
}
