package editor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/taskpicker/internal/index"
	"github.com/marcus/taskpicker/internal/styles"
)

// maxViewerBytes caps how much of a document the viewer loads.
const maxViewerBytes = 4 << 20

// Viewer is the built-in read-only document viewer. Each opened document is
// a pane; opening with NewPane stacks a pane, otherwise the top pane is
// replaced. Closing pops back to the previous pane.
type Viewer struct {
	root   string
	panes  []*pane
	width  int
	height int
}

type pane struct {
	path   string
	lines  []string // highlighted, one per source line
	rng    index.Position
	cursor int
	vp     viewport.Model
}

// documentMsg carries a loaded document back into the viewer.
type documentMsg struct {
	req   Request
	lines []string
}

// CloseMsg is emitted when the last pane closes.
type CloseMsg struct{}

// OpenExternalMsg asks the host to reopen the current pane externally.
type OpenExternalMsg struct {
	Request Request
}

// NewViewer creates a viewer for documents under root.
func NewViewer(root string) *Viewer {
	return &Viewer{root: root}
}

// Open implements Workspace. The file is read and highlighted off the UI
// loop; the pane appears when the resulting message reaches Update.
func (v *Viewer) Open(req Request) tea.Cmd {
	root := v.root
	return func() tea.Msg {
		full, err := resolve(root, req.Path)
		if err != nil {
			return OpenFailedMsg{Path: req.Path, Err: err}
		}
		data, err := readCapped(full)
		if err != nil {
			return OpenFailedMsg{Path: req.Path, Err: fmt.Errorf("%s: %w: %w", req.Path, ErrDocumentOpenFailed, err)}
		}
		return documentMsg{req: req, lines: highlight(full, string(data))}
	}
}

func readCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxViewerBytes))
}

// highlight renders source through chroma. On failure the plain text is used.
func highlight(path, source string) []string {
	var b strings.Builder
	lexer := filepath.Ext(path)
	if lexer == "" || lexer == ".md" {
		lexer = "markdown"
	} else {
		lexer = strings.TrimPrefix(lexer, ".")
	}
	if err := quick.Highlight(&b, source, lexer, "terminal256", styles.CurrentSyntaxTheme); err != nil {
		return strings.Split(source, "\n")
	}
	lines := strings.Split(b.String(), "\n")
	// chroma can emit a trailing reset line; keep the line count aligned with the source.
	if want := strings.Count(source, "\n") + 1; len(lines) > want {
		lines = lines[:want]
	}
	return lines
}

// Active reports whether any pane is open.
func (v *Viewer) Active() bool { return len(v.panes) > 0 }

// Panes returns the number of open panes.
func (v *Viewer) Panes() int { return len(v.panes) }

// Path returns the path shown in the top pane.
func (v *Viewer) Path() string {
	if p := v.top(); p != nil {
		return p.path
	}
	return ""
}

// Cursor returns the 0-based cursor line of the top pane.
func (v *Viewer) Cursor() int {
	if p := v.top(); p != nil {
		return p.cursor
	}
	return 0
}

// YOffset returns the first visible line of the top pane.
func (v *Viewer) YOffset() int {
	if p := v.top(); p != nil {
		return p.vp.YOffset
	}
	return 0
}

// SetSize sets the area the viewer draws into.
func (v *Viewer) SetSize(width, height int) {
	v.width, v.height = width, height
	for _, p := range v.panes {
		p.vp.Width = width
		p.vp.Height = max(1, height-1)
		p.render()
	}
}

func (v *Viewer) top() *pane {
	if len(v.panes) == 0 {
		return nil
	}
	return v.panes[len(v.panes)-1]
}

// Update handles loaded documents and navigation keys.
func (v *Viewer) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case documentMsg:
		p := &pane{
			path:  msg.req.Path,
			lines: msg.lines,
			rng:   msg.req.Range,
			vp:    viewport.New(v.width, max(1, v.height-1)),
		}
		p.setCursor(msg.req.Range.Start.Line)
		p.scrollIntoView(msg.req.Range)
		if msg.req.NewPane || len(v.panes) == 0 {
			v.panes = append(v.panes, p)
		} else {
			v.panes[len(v.panes)-1] = p
		}
		return func() tea.Msg { return OpenedMsg{Path: p.path, Line: p.cursor} }

	case tea.KeyMsg:
		p := v.top()
		if p == nil {
			return nil
		}
		switch msg.String() {
		case "esc", "q":
			v.panes = v.panes[:len(v.panes)-1]
			if len(v.panes) == 0 {
				return func() tea.Msg { return CloseMsg{} }
			}
		case "j", "down":
			p.moveCursor(1)
		case "k", "up":
			p.moveCursor(-1)
		case "ctrl+d", "pgdown":
			p.moveCursor(p.vp.Height / 2)
		case "ctrl+u", "pgup":
			p.moveCursor(-p.vp.Height / 2)
		case "g":
			p.moveCursor(-len(p.lines))
		case "G":
			p.moveCursor(len(p.lines))
		case "e":
			req := Request{Path: p.path, Range: index.Position{Start: index.Point{Line: p.cursor}}}
			return func() tea.Msg { return OpenExternalMsg{Request: req} }
		}
	}
	return nil
}

func (p *pane) setCursor(line int) {
	p.cursor = max(0, min(line, len(p.lines)-1))
	p.render()
}

func (p *pane) moveCursor(delta int) {
	p.setCursor(p.cursor + delta)
	if p.cursor < p.vp.YOffset {
		p.vp.SetYOffset(p.cursor)
	} else if p.cursor >= p.vp.YOffset+p.vp.Height {
		p.vp.SetYOffset(p.cursor - p.vp.Height + 1)
	}
}

// scrollIntoView positions the viewport so the whole range is visible,
// centering it when it fits.
func (p *pane) scrollIntoView(r index.Position) {
	start, end := r.Start.Line, max(r.End.Line, r.Start.Line)
	span := end - start + 1
	top := start
	if span < p.vp.Height {
		top = start - (p.vp.Height-span)/2
	}
	p.vp.SetYOffset(max(0, top))
}

func (p *pane) render() {
	gutter := len(fmt.Sprint(len(p.lines)))
	out := make([]string, len(p.lines))
	for i, line := range p.lines {
		num := fmt.Sprintf("%*d ", gutter, i+1)
		marker := "  "
		if i == p.cursor {
			marker = styles.ListCursor.Render("> ")
			num = styles.Title.Render(num)
		} else if i >= p.rng.Start.Line && i <= p.rng.End.Line {
			num = styles.TaskPath.Render(num)
		} else {
			num = styles.Subtle.Render(num)
		}
		out[i] = marker + num + line
	}
	p.vp.SetContent(strings.Join(out, "\n"))
}

// View renders the top pane with a one-line header.
func (v *Viewer) View() string {
	p := v.top()
	if p == nil {
		return ""
	}
	title := styles.BarTitle.Render(p.path)
	pos := styles.Muted.Render(fmt.Sprintf("  line %d/%d", p.cursor+1, len(p.lines)))
	if n := len(v.panes); n > 1 {
		// The top pane is the one shown; name the pane esc returns to.
		back := "  esc ← " + v.panes[n-2].path
		if n > 2 {
			back += fmt.Sprintf(" (+%d)", n-2)
		}
		pos += styles.Muted.Render(back)
	}
	header := ansi.Truncate(title+pos, v.width, "…")
	return lipgloss.JoinVertical(lipgloss.Left, header, p.vp.View())
}
