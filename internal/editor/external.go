package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// External opens documents in the user's editor, suspending the TUI while
// the editor runs.
type External struct {
	root    string
	command string
}

// NewExternal returns an external workspace rooted at root. command
// overrides $EDITOR and $VISUAL when set.
func NewExternal(root, command string) *External {
	return &External{root: root, command: command}
}

// Open implements Workspace.
func (e *External) Open(req Request) tea.Cmd {
	full, err := resolve(e.root, req.Path)
	if err != nil {
		return failed(req.Path, err)
	}
	c, err := e.Command(full, req)
	if err != nil {
		return failed(req.Path, err)
	}
	line := req.Range.Start.Line
	return tea.ExecProcess(c, func(err error) tea.Msg {
		if err != nil {
			return OpenFailedMsg{Path: req.Path, Err: fmt.Errorf("%s: %w: %w", req.Path, ErrDocumentOpenFailed, err)}
		}
		return OpenedMsg{Path: req.Path, Line: line}
	})
}

// Command builds the editor invocation for an absolute path.
func (e *External) Command(full string, req Request) (*exec.Cmd, error) {
	fields := strings.Fields(ResolveEditor(e.command))
	if len(fields) == 0 {
		return nil, fmt.Errorf("no editor configured: %w", ErrDocumentOpenFailed)
	}
	args := append(fields[1:], LineArgs(fields[0], full, req.Range.Start.Line+1, req.Range.Start.Col+1, req.NewPane)...)
	c := exec.Command(fields[0], args...)
	c.Dir = e.root
	return c, nil
}

// ResolveEditor returns the configured command, then $EDITOR, then $VISUAL,
// falling back to vim.
func ResolveEditor(configured string) string {
	if configured != "" {
		return configured
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	return "vim"
}

// LineArgs returns the arguments that open path at a 1-based line and column
// for the named editor.
func LineArgs(editor, path string, line, col int, newPane bool) []string {
	switch filepath.Base(editor) {
	case "vim", "nvim", "vi":
		args := []string{"+" + strconv.Itoa(line)}
		if newPane {
			args = append(args, "-O")
		}
		return append(args, path)
	case "nano":
		return []string{fmt.Sprintf("+%d,%d", line, col), path}
	case "emacs", "emacsclient", "kak", "micro":
		return []string{fmt.Sprintf("+%d:%d", line, col), path}
	case "code", "cursor", "codium":
		args := []string{}
		if !newPane {
			args = append(args, "-r")
		}
		return append(args, "-g", fmt.Sprintf("%s:%d:%d", path, line, col))
	case "hx", "subl", "zed":
		return []string{fmt.Sprintf("%s:%d:%d", path, line, col)}
	default:
		return []string{path}
	}
}
