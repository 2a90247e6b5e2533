package widget

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/mtodo/mtodo/internal/ui"
)

var (
	colorText    = ui.ColorText
	colorMuted   = ui.ColorMuted
	colorAccent  = ui.ColorAccent
	colorWarn    = ui.ColorWarn
	colorFail    = ui.ColorFail
	colorPass    = ui.ColorPass
	colorSurface = ui.ColorSurface
)

// StyleSpec is the file form of a style override. Empty fields keep the
// built-in value.
type StyleSpec struct {
	Foreground string `toml:"foreground" yaml:"foreground"`
	Background string `toml:"background" yaml:"background"`
	Border     string `toml:"border" yaml:"border"`
	Bold       *bool  `toml:"bold" yaml:"bold"`
	Italic     *bool  `toml:"italic" yaml:"italic"`
	Faint      *bool  `toml:"faint" yaml:"faint"`
}

// themeFile is the on-disk layout of a style file:
//
//	[styles.button_blue]
//	foreground = "#ffffff"
//	background = "#399ee6"
type themeFile struct {
	Dark   *bool                `toml:"dark" yaml:"dark"`
	Styles map[string]StyleSpec `toml:"styles" yaml:"styles"`
}

// Theme maps widget style names to lipgloss styles.
type Theme struct {
	styles map[string]lipgloss.Style
	// Dark records the palette decision made by Apply.
	Dark bool
}

// DefaultTheme returns the built-in styles.
func DefaultTheme() *Theme {
	base := lipgloss.NewStyle().Foreground(colorText)
	button := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1)

	return &Theme{styles: map[string]lipgloss.Style{
		"window":        base,
		"window_title":  lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		"window_sub":    lipgloss.NewStyle().Foreground(colorMuted),
		"header":        lipgloss.NewStyle().MarginBottom(1),
		"button_normal": button.Foreground(colorSurface).Background(colorAccent),
		"button_light":  button.Foreground(colorText).Background(colorSurface),
		"button_blue":   button.Foreground(lipgloss.Color("#ffffff")).Background(colorAccent),
		"button_red":    button.Foreground(lipgloss.Color("#ffffff")).Background(colorFail),
		"button_focus":  lipgloss.NewStyle().Underline(true),

		"todo_item_normal":    card.Foreground(colorText),
		"todo_item_important": card.Foreground(colorWarn).BorderForeground(colorWarn),
		"todo_item_done":      card.Foreground(colorMuted).Faint(true),
		"todo_item_selected":  lipgloss.NewStyle().BorderForeground(colorAccent).BorderStyle(lipgloss.ThickBorder()),

		"alert_normal": card.BorderForeground(colorAccent).Align(lipgloss.Center),
		"alert_title":  lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		"label":        base,
		"switch_on":    lipgloss.NewStyle().Foreground(colorPass).Bold(true),
		"switch_off":   lipgloss.NewStyle().Foreground(colorMuted),
		"status":       lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		"status_error": lipgloss.NewStyle().Foreground(colorFail),
		"help":         lipgloss.NewStyle().Foreground(colorMuted),
	}}
}

// Style returns the style registered under name, or the plain window style.
func (t *Theme) Style(name string) lipgloss.Style {
	if s, ok := t.styles[name]; ok {
		return s
	}
	return t.styles["window"]
}

// Len returns how many styles are registered.
func (t *Theme) Len() int {
	return len(t.styles)
}

// override merges spec onto the named style.
func (t *Theme) override(name string, spec StyleSpec) {
	s := t.Style(name)
	if spec.Foreground != "" {
		s = s.Foreground(lipgloss.Color(spec.Foreground))
	}
	if spec.Background != "" {
		s = s.Background(lipgloss.Color(spec.Background))
	}
	if spec.Border != "" {
		s = s.BorderForeground(lipgloss.Color(spec.Border))
	}
	if spec.Bold != nil {
		s = s.Bold(*spec.Bold)
	}
	if spec.Italic != nil {
		s = s.Italic(*spec.Italic)
	}
	if spec.Faint != nil {
		s = s.Faint(*spec.Faint)
	}
	t.styles[name] = s
}

// LoadTheme reads a .toml, .yaml or .yml style file on top of the built-in
// theme. An empty path returns the built-in theme. preferDark comes from
// configuration; a `dark` key in the file wins over it.
func LoadTheme(path string, preferDark bool) (*Theme, error) {
	th := DefaultTheme()
	dark := preferDark
	if path == "" {
		th.Apply(dark)
		return th, nil
	}

	// #nosec G304 - user-configured theme path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style file: %w", err)
	}

	var tf themeFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &tf); err != nil {
			return nil, fmt.Errorf("parse style file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &tf); err != nil {
			return nil, fmt.Errorf("parse style file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported style file type %q (want .toml, .yaml or .yml)", ext)
	}

	for name, spec := range tf.Styles {
		th.override(name, spec)
	}
	if tf.Dark != nil {
		dark = *tf.Dark
	}
	th.Apply(dark)
	return th, nil
}

// Apply picks the light or dark side of the adaptive palette. When dark is
// not forced, the terminal background decides.
func (t *Theme) Apply(forceDark bool) {
	t.Dark = forceDark || termenv.HasDarkBackground()
	lipgloss.SetHasDarkBackground(t.Dark)
}
