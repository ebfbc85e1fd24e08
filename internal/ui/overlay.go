// Package ui provides shared UI components and helpers for the TUI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DimStyle applies a dim gray color to background content behind modals.
// Existing ANSI codes are stripped first; SGR 2 (faint) doesn't combine
// reliably with existing colors in most terminals.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

// Modal widths shared by dialogs.
const (
	ModalWidthSmall  = 40
	ModalWidthMedium = 50
	ModalWidthLarge  = 80
)

// maxLineWidth returns the maximum visual width of the given lines.
func maxLineWidth(lines []string) int {
	maxWidth := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// dimLine strips ANSI codes and applies dim gray styling.
func dimLine(s string) string {
	return DimStyle.Render(ansi.Strip(s))
}

// compositeRow overlays modalLine onto bgLine at column modalStartX,
// dimming whatever background remains visible on either side.
func compositeRow(bgLine, modalLine string, modalStartX, modalWidth, totalWidth int) string {
	var result strings.Builder

	stripped := ansi.Strip(bgLine)
	bgWidth := ansi.StringWidth(stripped)

	if modalStartX > 0 {
		leftSeg := ansi.Truncate(stripped, modalStartX, "")
		leftWidth := ansi.StringWidth(leftSeg)
		result.WriteString(DimStyle.Render(leftSeg))
		if leftWidth < modalStartX {
			result.WriteString(strings.Repeat(" ", modalStartX-leftWidth))
		}
	}

	result.WriteString(modalLine)

	rightStartX := modalStartX + modalWidth
	if rightStartX < totalWidth && bgWidth > rightStartX {
		result.WriteString(DimStyle.Render(ansi.Cut(stripped, rightStartX, bgWidth)))
	}

	return result.String()
}

// OverlayModal composites a modal centered on top of a dimmed background.
func OverlayModal(background, modal string, width, height int) string {
	modalHeight := strings.Count(modal, "\n") + 1
	return overlayAt(background, modal, width, height, (height-modalHeight)/2)
}

// OverlayModalTop composites a modal horizontally centered and anchored
// top rows below the top edge, the way quick-switcher prompts sit.
func OverlayModalTop(background, modal string, width, height, top int) string {
	return overlayAt(background, modal, width, height, top)
}

func overlayAt(background, modal string, width, height, startY int) string {
	bgLines := strings.Split(background, "\n")
	modalLines := strings.Split(modal, "\n")

	modalWidth := maxLineWidth(modalLines)
	modalHeight := len(modalLines)
	startX := max(0, (width-modalWidth)/2)
	if startY+modalHeight > height {
		startY = height - modalHeight
	}
	startY = max(0, startY)

	result := make([]string, 0, height)
	for y := 0; y < height; y++ {
		bgLine := ""
		if y < len(bgLines) {
			bgLine = bgLines[y]
		}

		modalRowIdx := y - startY
		if modalRowIdx >= 0 && modalRowIdx < modalHeight {
			result = append(result, compositeRow(bgLine, modalLines[modalRowIdx], startX, modalWidth, width))
		} else {
			result = append(result, dimLine(bgLine))
		}
	}

	return strings.Join(result, "\n")
}
