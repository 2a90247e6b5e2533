// Package ui provides terminal styling for mtodo CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mtodo/mtodo/internal/types"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	ColorText = lipgloss.AdaptiveColor{
		Light: "#5c6166", // ayu light foreground
		Dark:  "#bfbdb6", // ayu dark foreground
	}
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
	ColorSurface = lipgloss.AdaptiveColor{
		Light: "#e7eaed", // ayu light panel
		Dark:  "#1f2430", // ayu dark panel
	}
)

// Status styles - consistent across all commands
var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// Row markers
const (
	IconDone      = "✓"
	IconOpen      = "○"
	IconImportant = "!"
	TreeLast      = "└─ " // description line under a row
)

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// FormatTodo renders one list row. With color off the row is plain text:
//
//	#3 [x] ! Pay rent
//	   └─ before the 5th
func FormatTodo(t *types.Todo, color bool) string {
	firstLine, _, _ := strings.Cut(t.Description, "\n")

	if !color {
		check := "[ ]"
		if t.IsDone {
			check = "[x]"
		}
		mark := ""
		if t.IsImportant {
			mark = IconImportant + " "
		}
		row := fmt.Sprintf("#%d %s %s%s", t.ID, check, mark, t.Title)
		if firstLine != "" {
			row += "\n   " + TreeLast + firstLine
		}
		return row
	}

	icon := RenderAccent(IconOpen)
	title := t.Title
	switch {
	case t.IsDone:
		icon = RenderPass(IconDone)
		title = MutedStyle.Strikethrough(true).Render(title)
	case t.IsImportant:
		icon = RenderWarn(IconImportant)
		title = WarnStyle.Bold(true).Render(title)
	}
	row := fmt.Sprintf("%s %s %s", RenderMuted(fmt.Sprintf("#%d", t.ID)), icon, title)
	if firstLine != "" {
		row += "\n   " + RenderMuted(TreeLast+firstLine)
	}
	return row
}

// FormatSummary renders the open/done counts under a list.
func FormatSummary(open, done int) string {
	return fmt.Sprintf("%d open, %d done", open, done)
}
