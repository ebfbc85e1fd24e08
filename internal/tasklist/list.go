package tasklist

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/marcus/taskpicker/internal/index"
)

// priorityTags are checked in order; earlier tags sort first.
var priorityTags = []string{"#p0", "#p1", "#p2"}

// Builder produces task lists from an index source.
type Builder struct {
	src    index.Source
	logger *slog.Logger
}

// NewBuilder creates a Builder over src. A nil logger discards output.
func NewBuilder(src index.Source, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{src: src, logger: logger}
}

// Source returns the index source the builder reads from.
func (b *Builder) Source() index.Source { return b.src }

// Build returns the mode's tasks under scope, filtered and sorted.
// When the source cannot be queried the result is empty and the error wraps
// ErrIndexUnavailable. A scope with no documents is not an error.
func (b *Builder) Build(ctx context.Context, mode Mode, scope string) ([]Task, error) {
	if mode != ModeTask && mode != ModeBacklog {
		return []Task{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if b.src == nil {
		return []Task{}, fmt.Errorf("%w: no index source configured", ErrIndexUnavailable)
	}

	items, err := b.src.Items(ctx, scope)
	if err != nil {
		b.logger.Warn("task index query failed", "source", b.src.ID(), "scope", scope, "err", err)
		return []Task{}, fmt.Errorf("%w: %s: %w", ErrIndexUnavailable, b.src.ID(), err)
	}

	kept := make([]index.Item, 0, len(items))
	for _, it := range items {
		if mode.keeps(it.Status) {
			kept = append(kept, it)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return compare(&kept[i], &kept[j], mode) < 0
	})

	tasks := make([]Task, len(kept))
	for i, it := range kept {
		tasks[i] = newTask(it)
	}

	b.logger.Debug("task list built", "mode", string(mode), "scope", scope, "items", len(items), "tasks", len(tasks))
	return tasks, nil
}

// BuildList builds a list with a one-off Builder.
func BuildList(ctx context.Context, src index.Source, mode Mode, scope string) ([]Task, error) {
	return NewBuilder(src, nil).Build(ctx, mode, scope)
}

// compare orders a before b when it returns a negative value.
// Flag rules only decide when exactly one side has the flag; otherwise the
// next key is consulted.
func compare(a, b *index.Item, mode Mode) int {
	if mode == ModeTask {
		if c := preferFlag(a.Status == StatusInProgress, b.Status == StatusInProgress); c != 0 {
			return c
		}
	}
	for _, tag := range priorityTags {
		if c := preferFlag(hasTag(a.Tags, tag), hasTag(b.Tags, tag)); c != 0 {
			return c
		}
	}
	if c := strings.Compare(b.Path, a.Path); c != 0 {
		return c
	}
	return strings.Compare(b.Text, a.Text)
}

func preferFlag(a, b bool) int {
	switch {
	case a && !b:
		return -1
	case b && !a:
		return 1
	}
	return 0
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
