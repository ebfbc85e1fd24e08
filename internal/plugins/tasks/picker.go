package tasks

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/taskpicker/internal/palette"
)

// Suggester is what a searchable picker needs from its item domain.
type Suggester[T any] interface {
	// SupplyItems returns the items to choose from, in display order.
	SupplyItems(ctx context.Context) ([]T, error)
	// MatchText is the string the query is fuzzy-matched against.
	MatchText(item T) string
	// RenderItem draws one item. It may span several lines.
	RenderItem(item T, query string, width int, selected bool) string
	// HandleSelection runs when the user commits to an item.
	HandleSelection(item T, newPane bool) tea.Cmd
}

type pickerState int

const (
	stateClosed pickerState = iota
	stateLoading
	stateReady
	stateSelected
	stateNavigating
)

func (s pickerState) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateReady:
		return "ready"
	case stateSelected:
		return "selected"
	case stateNavigating:
		return "navigating"
	default:
		return "closed"
	}
}

// itemsLoadedMsg delivers a SupplyItems result. seq ties it to one open,
// epoch to one plugin init.
type itemsLoadedMsg[T any] struct {
	epoch uint64
	seq   uint64
	items []T
	err   error
}

func (m itemsLoadedMsg[T]) GetEpoch() uint64 { return m.epoch }

// picker is a fuzzy-filtered list over a Suggester.
type picker[T any] struct {
	s     Suggester[T]
	state pickerState
	epoch uint64
	seq   uint64

	input   textinput.Model
	items   []T
	matches []palette.Match
	err     error

	cursor int
	offset int
	width  int
	height int // rows available for items
}

func newPicker[T any](s Suggester[T], placeholder string, epoch uint64) *picker[T] {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 200
	return &picker[T]{s: s, input: ti, epoch: epoch}
}

// open resets the query and starts loading items.
func (p *picker[T]) open(ctx context.Context) tea.Cmd {
	p.input.SetValue("")
	p.input.Focus()
	p.items, p.matches, p.err = nil, nil, nil
	p.cursor, p.offset = 0, 0
	return p.reload(ctx)
}

// reload fetches items again, keeping the query.
func (p *picker[T]) reload(ctx context.Context) tea.Cmd {
	p.seq++
	p.state = stateLoading
	epoch, seq, s := p.epoch, p.seq, p.s
	return func() tea.Msg {
		items, err := s.SupplyItems(ctx)
		return itemsLoadedMsg[T]{epoch: epoch, seq: seq, items: items, err: err}
	}
}

func (p *picker[T]) close() {
	p.state = stateClosed
	p.input.Blur()
	p.seq++ // drop in-flight loads
}

// visible reports whether the picker should be drawn.
func (p *picker[T]) visible() bool {
	return p.state == stateLoading || p.state == stateReady
}

func (p *picker[T]) setSize(width, height int) {
	p.width = width
	p.height = max(1, height)
	p.input.Width = max(10, width-4)
}

// loaded applies a load result. It returns false for stale results.
func (p *picker[T]) loaded(msg itemsLoadedMsg[T]) bool {
	if msg.seq != p.seq || p.state != stateLoading {
		return false
	}
	p.items = msg.items
	p.err = msg.err
	p.state = stateReady
	p.refilter()
	return true
}

func (p *picker[T]) refilter() {
	targets := make([]string, len(p.items))
	for i, it := range p.items {
		targets[i] = p.s.MatchText(it)
	}
	p.matches = palette.Filter(p.input.Value(), targets)
	if p.cursor >= len(p.matches) {
		p.cursor = max(0, len(p.matches)-1)
	}
	p.ensureVisible()
}

// selected returns the item under the cursor.
func (p *picker[T]) selected() (T, bool) {
	var zero T
	if p.state != stateReady || p.cursor < 0 || p.cursor >= len(p.matches) {
		return zero, false
	}
	return p.items[p.matches[p.cursor].Index], true
}

// choose commits to the item under the cursor.
func (p *picker[T]) choose(newPane bool) tea.Cmd {
	it, ok := p.selected()
	if !ok {
		return nil
	}
	p.state = stateSelected
	cmd := p.s.HandleSelection(it, newPane)
	p.state = stateNavigating
	p.input.Blur()
	return cmd
}

func (p *picker[T]) moveCursor(delta int) {
	n := len(p.matches)
	if n == 0 {
		return
	}
	p.cursor = max(0, min(n-1, p.cursor+delta))
	p.ensureVisible()
}

// ensureVisible scrolls so the cursor row fits. Rows vary in height.
func (p *picker[T]) ensureVisible() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	for p.offset < p.cursor {
		used := 0
		for i := p.offset; i <= p.cursor; i++ {
			used += p.rowHeight(i)
		}
		if used <= p.height {
			break
		}
		p.offset++
	}
}

func (p *picker[T]) rowHeight(i int) int {
	it := p.items[p.matches[i].Index]
	return lipgloss.Height(p.s.RenderItem(it, "", p.width, false))
}

// updateInput feeds a key to the query box and refilters on change.
func (p *picker[T]) updateInput(msg tea.KeyMsg) tea.Cmd {
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor, p.offset = 0, 0
		p.refilter()
	}
	return cmd
}

// listView renders the visible rows.
func (p *picker[T]) listView() string {
	if p.state == stateLoading {
		return "Loading tasks..."
	}
	if len(p.matches) == 0 {
		if p.input.Value() != "" {
			return "No matching tasks"
		}
		return "No tasks"
	}

	var b strings.Builder
	used := 0
	for i := p.offset; i < len(p.matches); i++ {
		row := p.s.RenderItem(p.items[p.matches[i].Index], p.input.Value(), p.width, i == p.cursor)
		h := lipgloss.Height(row)
		if used > 0 && used+h > p.height {
			break
		}
		if used > 0 {
			b.WriteString("\n")
		}
		b.WriteString(row)
		used += h
	}
	return b.String()
}
