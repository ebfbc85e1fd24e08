// Package editor opens documents for the host and reveals task ranges in
// them, either in the built-in viewer or in an external editor process.
package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/taskpicker/internal/index"
)

// ErrDocumentOpenFailed is wrapped by every failure to open a document.
var ErrDocumentOpenFailed = errors.New("could not open document")

// Request identifies a document and the range to reveal in it.
type Request struct {
	Path    string         // relative to the vault root
	Range   index.Position // cursor goes to Range.Start
	NewPane bool
}

// Workspace opens documents. Open returns a command whose result is an
// OpenedMsg or an OpenFailedMsg.
type Workspace interface {
	Open(req Request) tea.Cmd
}

// OpenedMsg reports that a document is open with the cursor placed.
type OpenedMsg struct {
	Path string
	Line int // 0-based
}

// OpenFailedMsg reports a failed open. Err wraps ErrDocumentOpenFailed.
type OpenFailedMsg struct {
	Path string
	Err  error
}

// errOutsideVault rejects document paths that leave the vault root.
var errOutsideVault = errors.New("path is outside the vault")

// resolve joins a vault-relative path onto root and checks that it names a
// regular file inside root. Absolute paths are accepted only under root, and
// symlinks are followed before the containment check.
func resolve(root, rel string) (string, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	full := filepath.Clean(rel)
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	if !within(root, full) {
		return "", fmt.Errorf("%s: %w: %w", rel, ErrDocumentOpenFailed, errOutsideVault)
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", rel, ErrDocumentOpenFailed, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: is a directory: %w", rel, ErrDocumentOpenFailed)
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", rel, ErrDocumentOpenFailed, err)
	}
	realFull, err := filepath.EvalSymlinks(full)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", rel, ErrDocumentOpenFailed, err)
	}
	if !within(realRoot, realFull) {
		return "", fmt.Errorf("%s: %w: %w", rel, ErrDocumentOpenFailed, errOutsideVault)
	}
	return full, nil
}

// within reports whether path lies under root. Both must be clean.
func within(root, path string) bool {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) && !filepath.IsAbs(r)
}

func failed(path string, err error) tea.Cmd {
	return func() tea.Msg {
		return OpenFailedMsg{Path: path, Err: err}
	}
}
