package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestIsValidHexColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"valid uppercase", "#FF5500", true},
		{"valid lowercase", "#aabbcc", true},
		{"valid with alpha", "#00000080", true},

		{"invalid 3-char", "#FFF", false},
		{"invalid 7-char", "#FF55001", false},
		{"no hash", "FF5500", false},
		{"invalid char", "#GGGGGG", false},
		{"empty string", "", false},
		{"just hash", "#", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidHexColor(tt.input); got != tt.valid {
				t.Errorf("IsValidHexColor(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { ApplyTheme("default", nil) })

	ApplyTheme("light", nil)
	if GetCurrentThemeName() != "light" {
		t.Errorf("current theme = %q", GetCurrentThemeName())
	}
	if Primary != lipgloss.Color(LightTheme.Colors.Primary) {
		t.Errorf("Primary = %v", Primary)
	}
	if CurrentMarkdownTheme != "light" {
		t.Errorf("markdown theme = %q", CurrentMarkdownTheme)
	}
}

func TestApplyTheme_UnknownFallsBackToDefault(t *testing.T) {
	t.Cleanup(func() { ApplyTheme("default", nil) })

	ApplyTheme("no-such-theme", nil)
	if GetCurrentThemeName() != "default" {
		t.Errorf("current theme = %q, want default", GetCurrentThemeName())
	}
}

func TestApplyTheme_Overrides(t *testing.T) {
	t.Cleanup(func() { ApplyTheme("default", nil) })

	ApplyTheme("default", map[string]string{
		"path":        "#123456",
		"primary":     "not-a-color",
		"syntaxTheme": "dracula",
	})
	if PathColor != lipgloss.Color("#123456") {
		t.Errorf("PathColor = %v", PathColor)
	}
	if Primary != lipgloss.Color(DefaultTheme.Colors.Primary) {
		t.Errorf("invalid override applied: Primary = %v", Primary)
	}
	if CurrentSyntaxTheme != "dracula" {
		t.Errorf("syntax theme = %q", CurrentSyntaxTheme)
	}
}

func TestListThemes(t *testing.T) {
	got := ListThemes()
	if len(got) != 2 || got[0] != "default" || got[1] != "light" {
		t.Errorf("ListThemes() = %v", got)
	}
	if !IsValidTheme("light") || IsValidTheme("dracula") {
		t.Error("IsValidTheme mismatch")
	}
}
