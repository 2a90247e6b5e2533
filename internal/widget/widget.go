// Package widget holds the small set of styled building blocks the todo
// window is assembled from: buttons, cards, alerts, labels, switches and
// boxes, all rendered with lipgloss against a Theme.
package widget

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const (
	// DefaultWidth and DefaultHeight apply when the configured size is not positive.
	DefaultWidth  = 500
	DefaultHeight = 400

	// ellipsis marks a cut description.
	ellipsis = "....."
)

// Widget renders itself at a given width.
type Widget interface {
	Render(th *Theme, width int) string
}

// TruncateDescription flattens desc onto one line. When the raw text,
// newlines included, is longer than windowWidth/10 runes, the flattened
// text is cut to that many runes and "....." is appended.
func TruncateDescription(desc string, windowWidth int) string {
	limit := max(windowWidth/10, 0)
	long := utf8.RuneCountInString(desc) > limit
	desc = strings.ReplaceAll(desc, "\n", "")
	if !long {
		return desc
	}
	runes := []rune(desc)
	return string(runes[:min(limit, len(runes))]) + ellipsis
}

// Label is a line of plain text.
type Label struct {
	Style string
	Text  string
}

func (l Label) Render(th *Theme, width int) string {
	name := l.Style
	if name == "" {
		name = "label"
	}
	return th.Style(name).MaxWidth(width).Render(l.Text)
}

// Button is a one-line clickable label.
type Button struct {
	Style   string
	Label   string
	Focused bool
}

func (b Button) Render(th *Theme, _ int) string {
	s := th.Style(b.Style)
	if b.Focused {
		s = s.Inherit(th.Style("button_focus"))
	}
	return s.Render(b.Label)
}

// BigButton is a todo card: a bold title above a one-line description.
type BigButton struct {
	Style       string
	Title       string
	Description string
	Selected    bool
}

func (b BigButton) Render(th *Theme, width int) string {
	s := th.Style(b.Style)
	if b.Selected {
		sel := th.Style("todo_item_selected")
		s = s.BorderStyle(lipgloss.ThickBorder()).BorderForeground(sel.GetBorderTopForeground())
	}
	inner := width - s.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}
	title := lipgloss.NewStyle().Bold(true).MaxWidth(inner).Render(b.Title)
	desc := lipgloss.NewStyle().MaxWidth(inner).Render(b.Description)
	return s.Width(inner + s.GetHorizontalPadding()).Render(title + "\n" + desc)
}

// Alert is a centred notice with a title and a message.
type Alert struct {
	Style   string
	Title   string
	Message string
}

func (a Alert) Render(th *Theme, width int) string {
	s := th.Style(a.Style)
	if a.Style == "" {
		s = th.Style("alert_normal")
	}
	inner := width - s.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}
	body := th.Style("alert_title").Render(a.Title) + "\n\n" + a.Message
	return s.Width(inner + s.GetHorizontalPadding()).Render(body)
}

// Switch is a boolean toggle with a caption.
type Switch struct {
	Label string
	On    bool
}

func (sw Switch) Render(th *Theme, _ int) string {
	if sw.On {
		return th.Style("switch_on").Render("[x] " + sw.Label)
	}
	return th.Style("switch_off").Render("[ ] " + sw.Label)
}

// Box stacks child widgets vertically, or horizontally when Horizontal is set.
type Box struct {
	Horizontal bool
	Spacing    int
	children   []Widget
}

// Append adds w as the last child.
func (b *Box) Append(w Widget) {
	b.children = append(b.children, w)
}

// Clear removes every child.
func (b *Box) Clear() {
	b.children = nil
}

// Len returns the number of children.
func (b *Box) Len() int {
	return len(b.children)
}

func (b *Box) Render(th *Theme, width int) string {
	parts := make([]string, 0, len(b.children))
	for i, c := range b.children {
		r := c.Render(th, width)
		if b.Spacing > 0 && i > 0 {
			if b.Horizontal {
				r = strings.Repeat(" ", b.Spacing) + r
			} else {
				r = strings.Repeat("\n", b.Spacing) + r
			}
		}
		parts = append(parts, r)
	}
	if b.Horizontal {
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Window is the top-level frame: a title line, a header bar with buttons
// packed left and right, and a body box.
type Window struct {
	Title    string
	Subtitle string
	Icon     string
	Width    int
	Height   int

	HeaderStart []Widget
	HeaderEnd   []Widget
	Body        Box
	Footer      string
}

// Size returns the frame size with defaults for unset dimensions.
func (w *Window) Size() (width, height int) {
	width, height = w.Width, w.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return width, height
}

// Cleanup empties the header and body so the window can be rebuilt.
func (w *Window) Cleanup() {
	w.HeaderStart = nil
	w.HeaderEnd = nil
	w.Body.Clear()
	w.Footer = ""
}

func (w *Window) Render(th *Theme) string {
	width, height := w.Size()

	title := th.Style("window_title").Render(strings.TrimSpace(w.Icon + " " + w.Title))
	if w.Subtitle != "" {
		title += " " + th.Style("window_sub").Render(w.Subtitle)
	}

	start := renderRow(th, w.HeaderStart, width)
	end := renderRow(th, w.HeaderEnd, width)
	gap := width - lipgloss.Width(start) - lipgloss.Width(end)
	if gap < 1 {
		gap = 1
	}
	header := th.Style("header").Render(start + strings.Repeat(" ", gap) + end)

	sections := []string{title, header, w.Body.Render(th, width)}
	if w.Footer != "" {
		sections = append(sections, w.Footer)
	}
	return th.Style("window").
		Width(width).
		MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func renderRow(th *Theme, ws []Widget, width int) string {
	parts := make([]string, 0, len(ws)*2)
	for i, w := range ws {
		if i > 0 {
			parts = append(parts, " ")
		}
		parts = append(parts, w.Render(th, width))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
