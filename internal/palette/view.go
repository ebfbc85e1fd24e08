package palette

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/taskpicker/internal/styles"
)

const (
	nameColumn = 18
	keyColumn  = 14
	maxKeys    = 2
)

// View renders the palette as a modal box: title, query, the visible
// window of commands grouped under their context, and a status line for
// the selected command.
func (m Model) View() string {
	width := max(44, min(76, m.width-8))
	inner := width - 4 // ModalBox horizontal padding

	rule := styles.Subtle.Render(strings.Repeat("─", inner))
	prompt := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("> ")

	lines := []string{m.titleLine(inner), prompt + m.textInput.View(), rule}
	lines = append(lines, m.entryLines(inner)...)
	lines = append(lines, rule, m.statusLine(inner))

	return styles.ModalBox.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) titleLine(width int) string {
	scope := contextLabel(m.activeContext)
	if m.showAllContexts {
		scope = "all views"
	}
	right := styles.BarChip.Render(scope) + " " +
		styles.Muted.Render(fmt.Sprintf("%d/%d", len(m.filtered), len(m.entries)))
	return spread(styles.Title.Render("Commands"), right, width)
}

// entryLines renders entries offset..offset+maxVisible. A context heading
// starts every run of entries sharing a context, including the first
// visible one.
func (m Model) entryLines(width int) []string {
	if len(m.filtered) == 0 {
		return []string{"", styles.Muted.Render("  No matching commands"), ""}
	}

	end := min(len(m.filtered), m.offset+m.maxVisible)
	var lines []string
	if m.offset > 0 {
		lines = append(lines, styles.Subtle.Render(fmt.Sprintf("  ↑ %d more", m.offset)))
	}
	heading := ""
	for i := m.offset; i < end; i++ {
		e := m.filtered[i]
		if e.Context != heading {
			heading = e.Context
			lines = append(lines, m.contextHeading(heading))
		}
		lines = append(lines, renderRow(e, i == m.cursor, width))
	}
	if end < len(m.filtered) {
		lines = append(lines, styles.Subtle.Render(fmt.Sprintf("  ↓ %d more", len(m.filtered)-end)))
	}
	return lines
}

func (m Model) contextHeading(ctx string) string {
	label := strings.ToUpper(contextLabel(ctx))
	switch ctx {
	case m.activeContext:
		return lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render(label) +
			styles.Muted.Render("  current view")
	case "global":
		return styles.Subtle.Render(label)
	}
	return lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true).Render(label)
}

func renderRow(e PaletteEntry, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = styles.ListCursor.Render("› ")
	}

	name := e.Name
	if ansi.StringWidth(name) >= nameColumn {
		name = ansi.Truncate(name, nameColumn-1, "…")
	} else {
		name = HighlightMatches(name, e.MatchRanges, styles.FuzzyMatchChar)
	}
	name = padRight(name, nameColumn)

	keys := renderKeys(e.Keys)
	desc := ""
	if descWidth := width - 2 - nameColumn - keyColumn - 1; descWidth > 0 {
		desc = e.Description
		if ansi.StringWidth(desc) > descWidth {
			desc = ansi.Truncate(desc, descWidth, "…")
		}
		desc = padRight(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(desc), descWidth)
	}

	row := marker + name + desc + " " + keys
	if selected {
		return styles.ListItemSelected.Render(padRight(row, width))
	}
	return row
}

// renderKeys right-aligns up to maxKeys keys in the key column. Keys from
// keymap.overrides are marked with a star.
func renderKeys(keys []EntryKey) string {
	var parts []string
	for i, k := range keys {
		if i == maxKeys {
			break
		}
		label := formatKey(k.Key)
		if k.Custom {
			parts = append(parts, lipgloss.NewStyle().Foreground(styles.Warning).Bold(true).Render(label+"*"))
			continue
		}
		parts = append(parts, styles.KeyHint.Render(label))
	}
	s := strings.Join(parts, " ")
	if w := lipgloss.Width(s); w < keyColumn {
		s = strings.Repeat(" ", keyColumn-w) + s
	}
	return s
}

func (m Model) statusLine(width int) string {
	toggle := "tab all views"
	if m.showAllContexts {
		toggle = "tab this view"
	}
	left := ""
	if e, ok := m.Selected(); ok {
		if e.Category != "" {
			left = styles.Muted.Render(string(e.Category) + " · ")
		}
		left += styles.Subtle.Render(e.CommandID)
		for _, k := range e.Keys {
			if k.Custom {
				left += lipgloss.NewStyle().Foreground(styles.Warning).Render("  * custom key")
				break
			}
		}
	}
	return spread(left, styles.Muted.Render(toggle), width)
}

// contextLabel turns a keymap context id into display text.
func contextLabel(ctx string) string {
	return strings.ReplaceAll(ctx, "-", " ")
}

// formatKey shortens ctrl chords to caret notation.
func formatKey(k string) string {
	return strings.Replace(k, "ctrl+", "^", 1)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// spread places left and right at the two edges of width.
func spread(left, right string, width int) string {
	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}
