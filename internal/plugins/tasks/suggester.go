package tasks

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/taskpicker/internal/msg"
	"github.com/marcus/taskpicker/internal/palette"
	"github.com/marcus/taskpicker/internal/plugin"
	"github.com/marcus/taskpicker/internal/styles"
	"github.com/marcus/taskpicker/internal/tasklist"
	"github.com/mattn/go-runewidth"
)

const selectionToastDuration = 3 * time.Second

// taskSuggester supplies tasks for one list mode and scope.
type taskSuggester struct {
	builder *tasklist.Builder
	mode    tasklist.Mode
	scope   func() string
}

func (s *taskSuggester) SupplyItems(ctx context.Context) ([]tasklist.Task, error) {
	return s.builder.Build(ctx, s.mode, s.scope())
}

func (s *taskSuggester) MatchText(t tasklist.Task) string {
	return t.FuzzyMatchTarget
}

func (s *taskSuggester) HandleSelection(t tasklist.Task, newPane bool) tea.Cmd {
	nav := plugin.NavigateMsg{
		Path:     t.Path,
		Range:    t.Position,
		NewPane:  newPane,
		Describe: t.Text,
	}
	return tea.Sequence(
		msg.ShowToast("You selected: "+t.Text, selectionToastDuration),
		func() tea.Msg { return nav },
	)
}

// checkbox returns the box glyph: the raw status, or x when checked.
func checkbox(t tasklist.Task) string {
	mark := t.Status
	if mark == "" || (t.Checked && mark == tasklist.StatusOpen) {
		mark = " "
		if t.Checked {
			mark = "x"
		}
	}
	return "[" + mark + "]"
}

func (s *taskSuggester) RenderItem(t tasklist.Task, query string, width int, selected bool) string {
	width = max(20, width)

	cursor := "  "
	if selected {
		cursor = styles.ListCursor.Render("> ")
	}

	boxStyle, textStyle := styles.TaskCheckbox, styles.TaskText
	if t.Checked {
		boxStyle, textStyle = styles.TaskCheckboxDone, styles.TaskTextDone
	} else if t.Status != tasklist.StatusOpen {
		boxStyle = styles.TaskStatus
	}
	box := boxStyle.Render(checkbox(t))

	textWidth := width - 2 - runewidth.StringWidth(checkbox(t)) - 1
	text := runewidth.Truncate(t.Text, textWidth, "…")
	if _, ranges := palette.FuzzyMatch(query, text); query != "" && len(ranges) > 0 {
		text = palette.HighlightMatches(text, ranges, styles.FuzzyMatchChar.Inherit(textStyle))
	} else {
		text = textStyle.Render(text)
	}

	first := cursor + box + " " + text
	if selected {
		first = styles.ListItemSelected.Width(width).Render(first)
	}

	lines := []string{first}
	for _, l := range tasklist.ContextLines(t.Context) {
		l = runewidth.Truncate("      "+l, width, "…")
		lines = append(lines, styles.TaskContext.Render(l))
	}

	path := runewidth.Truncate(t.Path, width, "…")
	lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, styles.TaskPath.Render(path)))
	return strings.Join(lines, "\n")
}
