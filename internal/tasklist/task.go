// Package tasklist builds the ordered, display-ready task lists shown by the
// picker from items reported by an index source.
package tasklist

import (
	"fmt"
	"strings"

	"github.com/marcus/taskpicker/internal/index"
)

// Status markers carried by task items.
const (
	StatusOpen       = " "
	StatusInProgress = "/"
	StatusScheduled  = "<"
	StatusDeferred   = ">"
	StatusDone       = "x"
)

// Mode selects which list is built.
type Mode string

const (
	ModeTask    Mode = "task"
	ModeBacklog Mode = "backlog"
)

// ParseMode converts a user-supplied name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTask:
		return ModeTask, nil
	case ModeBacklog:
		return ModeBacklog, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Title returns the picker heading for the mode.
func (m Mode) Title() string {
	if m == ModeBacklog {
		return "Backlog List"
	}
	return "Task List"
}

// keeps reports whether an item with the given status belongs in the mode's list.
func (m Mode) keeps(status string) bool {
	switch m {
	case ModeBacklog:
		return status == StatusDeferred
	case ModeTask:
		return status == StatusOpen || status == StatusInProgress || status == StatusScheduled
	}
	return false
}

// Task is a display-ready list entry. Tasks are rebuilt on every list build
// and never modified afterwards.
type Task struct {
	Text     string
	Path     string
	Checked  bool
	Status   string
	Tags     []string
	Position index.Position
	Context  []TaskContext

	// FuzzyMatchTarget is the string the picker's search matches against.
	FuzzyMatchTarget string
}

// TaskContext is one rendered sub-item below a task.
type TaskContext struct {
	Text     string
	Children []TaskContext
}

func newTask(it index.Item) Task {
	return Task{
		Text:             it.Text,
		Path:             it.Path,
		Checked:          it.Checked,
		Status:           it.Status,
		Tags:             append([]string(nil), it.Tags...),
		Position:         it.Position,
		Context:          Flatten(it.Children),
		FuzzyMatchTarget: matchTarget(it),
	}
}

// matchTarget composes "<status>: <tags> <text> <path> <context text>".
func matchTarget(it index.Item) string {
	var b strings.Builder
	b.WriteString(it.Status)
	b.WriteString(": ")
	b.WriteString(strings.Join(it.Tags, " "))
	b.WriteByte(' ')
	b.WriteString(it.Text)
	b.WriteByte(' ')
	b.WriteString(it.Path)
	b.WriteByte(' ')
	b.WriteString(strings.Join(descendantTexts(it.Children), " "))
	return b.String()
}
