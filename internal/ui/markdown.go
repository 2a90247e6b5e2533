package ui

import (
	"github.com/charmbracelet/glamour"
)

// Cap at 100 chars for readability
const maxReadableWidth = 100

// RenderMarkdown renders markdown text using glamour.
// Returns the rendered markdown or the original text if rendering fails.
// Word wraps at terminal width (or 80 columns if width can't be detected).
func RenderMarkdown(markdown string) string {
	// Skip glamour if colors are disabled
	if !ShouldUseColor() {
		return markdown
	}
	return RenderMarkdownWidth(markdown, TerminalWidth(80), "")
}

// RenderMarkdownWidth renders markdown wrapped at width (capped at 100)
// with a glamour standard style such as "dark" or "light". An empty style
// detects the terminal background.
func RenderMarkdownWidth(markdown string, width int, style string) string {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(min(width, maxReadableWidth)),
	)
	if err != nil {
		// fallback to raw markdown on error
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		// fallback to raw markdown on error
		return markdown
	}

	return rendered
}
