package tasks

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/marcus/taskpicker/internal/styles"
	"github.com/marcus/taskpicker/internal/tasklist"
)

// markdownRenderer renders the detail pane and recreates the glamour
// renderer when the wrap width or theme changes.
type markdownRenderer struct {
	width    int
	theme    string
	renderer *glamour.TermRenderer
}

func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(24, width)
	theme := styles.CurrentMarkdownTheme
	if r.renderer == nil || r.width != wrapWidth || r.theme != theme {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(theme),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
		r.theme = theme
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// detailMarkdown describes a task for the detail pane.
func detailMarkdown(t tasklist.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", t.Text)
	fmt.Fprintf(&b, "`%s` line %d\n\n", t.Path, t.Position.Start.Line+1)
	fmt.Fprintf(&b, "- **Status:** `[%s]`\n", t.Status)
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", strings.Join(t.Tags, " "))
	}
	if len(t.Context) > 0 {
		b.WriteString("\n**Context**\n\n```markdown\n")
		b.WriteString(strings.Join(tasklist.ContextLines(t.Context), "\n"))
		b.WriteString("\n```\n")
	}
	return b.String()
}
