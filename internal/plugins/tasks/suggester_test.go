package tasks

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/taskpicker/internal/index"
	"github.com/marcus/taskpicker/internal/tasklist"
)

func buildOne(t *testing.T, it index.Item) tasklist.Task {
	t.Helper()
	tasks, err := tasklist.BuildList(t.Context(), &memSource{items: []index.Item{it}}, tasklist.ModeTask, "")
	if err != nil || len(tasks) != 1 {
		t.Fatalf("BuildList = %v, %v", tasks, err)
	}
	return tasks[0]
}

func TestCheckbox(t *testing.T) {
	tests := []struct {
		status  string
		checked bool
		want    string
	}{
		{" ", false, "[ ]"},
		{"/", false, "[/]"},
		{"<", false, "[<]"},
		{"x", true, "[x]"},
		{" ", true, "[x]"},
		{"", false, "[ ]"},
	}
	for _, tt := range tests {
		got := checkbox(tasklist.Task{Status: tt.status, Checked: tt.checked})
		if got != tt.want {
			t.Errorf("checkbox(%q, %v) = %q, want %q", tt.status, tt.checked, got, tt.want)
		}
	}
}

func TestRenderItem(t *testing.T) {
	task := buildOne(t, index.Item{
		Text:   "write report",
		Path:   "Work/plan.md",
		Status: "/",
		Children: []index.Child{
			{Symbol: "-", Text: "outline", Children: []index.Child{{Symbol: "-", Status: "x", Text: "intro"}}},
		},
	})
	s := &taskSuggester{}
	out := ansi.Strip(s.RenderItem(task, "", 60, false))
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[0], "[/] write report") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "- outline") || !strings.Contains(lines[2], "  - [x] intro") {
		t.Errorf("context lines = %q / %q", lines[1], lines[2])
	}
	if !strings.HasSuffix(lines[3], "Work/plan.md") || !strings.HasPrefix(lines[3], " ") {
		t.Errorf("path should be right-aligned: %q", lines[3])
	}
	if ansi.StringWidth(lines[3]) != 60 {
		t.Errorf("path line width = %d", ansi.StringWidth(lines[3]))
	}
}

func TestRenderItem_TruncatesLongText(t *testing.T) {
	task := buildOne(t, index.Item{Text: strings.Repeat("long ", 40), Path: "a.md", Status: " "})
	out := ansi.Strip((&taskSuggester{}).RenderItem(task, "long", 40, true))
	for _, l := range strings.Split(out, "\n") {
		if w := ansi.StringWidth(l); w > 40 {
			t.Errorf("line width %d exceeds 40: %q", w, l)
		}
	}
	if !strings.Contains(out, "…") {
		t.Error("expected ellipsis")
	}
}

func TestDetailMarkdown(t *testing.T) {
	task := buildOne(t, index.Item{
		Text: "ship it", Path: "Work/b.md", Status: " ", Tags: []string{"#p0"},
		Position: index.Position{Start: index.Point{Line: 9}},
		Children: []index.Child{{Symbol: "-", Text: "legal review"}},
	})
	md := detailMarkdown(task)
	for _, want := range []string{"### ship it", "`Work/b.md` line 10", "#p0", "- legal review"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	var r markdownRenderer
	if out := r.render(md, 40); !strings.Contains(ansi.Strip(out), "ship it") {
		t.Errorf("rendered = %q", out)
	}
}

func TestPickerStateString(t *testing.T) {
	states := map[pickerState]string{
		stateClosed:     "closed",
		stateLoading:    "loading",
		stateReady:      "ready",
		stateSelected:   "selected",
		stateNavigating: "navigating",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
