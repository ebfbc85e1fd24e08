package styles

import "github.com/charmbracelet/lipgloss"

// Color palette, default dark theme. ApplyTheme replaces these.
var (
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#3B82F6") // Blue
	Accent    = lipgloss.Color("#F59E0B") // Amber

	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Info    = lipgloss.Color("#3B82F6")

	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")
	TextSubtle    = lipgloss.Color("#4B5563")

	BgPrimary   = lipgloss.Color("#111827")
	BgSecondary = lipgloss.Color("#1F2937")
	BgTertiary  = lipgloss.Color("#374151")

	BorderNormal = lipgloss.Color("#374151")
	BorderActive = lipgloss.Color("#7C3AED")

	// Task path and context colors
	PathColor    = lipgloss.Color("#60A5FA")
	ContextColor = lipgloss.Color("#9CA3AF")

	ToastSuccessTextColor = lipgloss.Color("#000000")
	ToastErrorTextColor   = lipgloss.Color("#FFFFFF")

	// Third-party theme names (updated by ApplyTheme)
	CurrentSyntaxTheme   = "monokai"
	CurrentMarkdownTheme = "dark"
)

// Text styles
var (
	Title    lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	KeyHint  lipgloss.Style
	Logo     lipgloss.Style
	Code     lipgloss.Style
	ErrorTxt lipgloss.Style
)

// Toast styles for status messages
var (
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
)

// List item styles
var (
	ListItemNormal   lipgloss.Style
	ListItemSelected lipgloss.Style
	ListCursor       lipgloss.Style
	FuzzyMatchChar   lipgloss.Style
)

// Task row styles
var (
	TaskCheckbox     lipgloss.Style
	TaskCheckboxDone lipgloss.Style
	TaskStatus       lipgloss.Style
	TaskText         lipgloss.Style
	TaskTextDone     lipgloss.Style
	TaskPath         lipgloss.Style
	TaskContext      lipgloss.Style
	TaskPriority     lipgloss.Style
)

// Bar element styles (shared by header/footer)
var (
	BarTitle      lipgloss.Style
	BarText       lipgloss.Style
	BarChip       lipgloss.Style
	BarChipActive lipgloss.Style
	Footer        lipgloss.Style
	Header        lipgloss.Style
)

// Modal styles
var (
	ModalBox      lipgloss.Style
	ModalTitle    lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	StatusBlocked lipgloss.Style
	PanelActive   lipgloss.Style
	InputFocused  lipgloss.Style
	InputBlurred  lipgloss.Style
)

func init() {
	rebuildStyles()
}

// rebuildStyles recreates all lipgloss styles with current colors.
func rebuildStyles() {
	Title = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	Body = lipgloss.NewStyle().Foreground(TextPrimary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Subtle = lipgloss.NewStyle().Foreground(TextSubtle)
	Code = lipgloss.NewStyle().Foreground(Accent)
	ErrorTxt = lipgloss.NewStyle().Foreground(Error)
	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)
	Logo = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	ToastSuccess = lipgloss.NewStyle().
		Background(Success).
		Foreground(ToastSuccessTextColor).
		Bold(true).
		Padding(0, 1)
	ToastError = lipgloss.NewStyle().
		Background(Error).
		Foreground(ToastErrorTextColor).
		Bold(true).
		Padding(0, 1)

	ListItemNormal = lipgloss.NewStyle().Foreground(TextPrimary)
	ListItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(BgTertiary)
	ListCursor = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	FuzzyMatchChar = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	TaskCheckbox = lipgloss.NewStyle().Foreground(TextSecondary)
	TaskCheckboxDone = lipgloss.NewStyle().Foreground(Success)
	TaskStatus = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	TaskText = lipgloss.NewStyle().Foreground(TextPrimary)
	TaskTextDone = lipgloss.NewStyle().Foreground(TextMuted).Strikethrough(true)
	TaskPath = lipgloss.NewStyle().Foreground(PathColor)
	TaskContext = lipgloss.NewStyle().Foreground(ContextColor)
	TaskPriority = lipgloss.NewStyle().Foreground(Warning)

	BarTitle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	BarText = lipgloss.NewStyle().Foreground(TextMuted)
	BarChip = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)
	BarChipActive = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Padding(0, 1).
		Bold(true)
	Footer = lipgloss.NewStyle().Foreground(TextMuted).Background(BgSecondary)
	Header = lipgloss.NewStyle().Background(BgSecondary)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Background(BgSecondary).
		Padding(1, 2)
	ModalTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginBottom(1)
	Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(BgTertiary).
		Padding(0, 2)
	ButtonFocused = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Padding(0, 2).
		Bold(true)
	StatusBlocked = lipgloss.NewStyle().Foreground(Error)
	PanelActive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive).
		Padding(0, 1)
	InputFocused = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Primary).
		Padding(0, 1)
	InputBlurred = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderNormal).
		Padding(0, 1)
}
