package widget

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestTruncateDescription(t *testing.T) {
	tests := []struct {
		name  string
		desc  string
		width int
		want  string
	}{
		{name: "fits", desc: "short", width: 500, want: "short"},
		{name: "exact limit", desc: "12345", width: 50, want: "12345"},
		{name: "cut", desc: "1234567890", width: 50, want: "12345....."},
		{name: "newlines count toward the limit", desc: "ab\ncd\nef", width: 60, want: "abcdef....."},
		{name: "flattened fits", desc: "ab\ncd", width: 50, want: "abcd"},
		{name: "newlines then cut", desc: "ab\ncd\nef", width: 40, want: "abcd....."},
		{name: "runes", desc: "ééééé", width: 30, want: "ééé....."},
		{name: "tiny window", desc: "abc", width: 5, want: "....."},
		{name: "empty", desc: "", width: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateDescription(tt.desc, tt.width))
		})
	}
}

func TestLoadThemeDefault(t *testing.T) {
	th, err := LoadTheme("", true)
	require.NoError(t, err)
	assert.True(t, th.Dark)
	for _, name := range []string{
		"button_normal", "button_light", "button_blue", "button_red",
		"todo_item_normal", "todo_item_important", "todo_item_done", "alert_normal",
	} {
		_, ok := th.styles[name]
		assert.True(t, ok, "missing style %s", name)
	}
}

func TestLoadThemeFiles(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "theme.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
dark = true

[styles.button_red]
foreground = "#000000"
background = "#ff0000"
bold = false

[styles.my_extra]
italic = true
`), 0o600))

	yamlPath := filepath.Join(dir, "theme.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
dark: true
styles:
  button_red:
    background: "#ff0000"
    bold: false
`), 0o600))

	base := DefaultTheme().Len()
	for _, path := range []string{tomlPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			th, err := LoadTheme(path, false)
			require.NoError(t, err)
			assert.True(t, th.Dark)
			red := th.Style("button_red")
			assert.False(t, red.GetBold())
			assert.Equal(t, lipgloss.Color("#ff0000"), red.GetBackground())
			assert.GreaterOrEqual(t, th.Len(), base)
		})
	}

	th, err := LoadTheme(tomlPath, true)
	require.NoError(t, err)
	assert.True(t, th.Style("my_extra").GetItalic())
}

func TestLoadThemeErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTheme(filepath.Join(dir, "missing.toml"), true)
	assert.ErrorContains(t, err, "read style file")

	css := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(css, []byte("button {}"), 0o600))
	_, err = LoadTheme(css, true)
	assert.ErrorContains(t, err, "unsupported style file type")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[styles"), 0o600))
	_, err = LoadTheme(bad, true)
	assert.ErrorContains(t, err, "parse style file")
}

func TestStyleFallsBackToWindow(t *testing.T) {
	th := DefaultTheme()
	assert.Equal(t, th.Style("window").Render("x"), th.Style("no_such_style").Render("x"))
}

func TestBigButtonRender(t *testing.T) {
	th := DefaultTheme()
	out := BigButton{Style: "todo_item_normal", Title: "Buy milk", Description: "2 litres"}.Render(th, 40)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4, "border, title, description, border")
	assert.Contains(t, lines[1], "Buy milk")
	assert.Contains(t, lines[2], "2 litres")
	assert.Equal(t, 40, lipgloss.Width(out))

	sel := BigButton{Style: "todo_item_normal", Title: "Buy milk", Selected: true}.Render(th, 40)
	assert.NotEqual(t, out, sel)
	assert.Contains(t, sel, "┏")
}

func TestSwitchAndButton(t *testing.T) {
	th := DefaultTheme()
	assert.Contains(t, Switch{Label: "Is done", On: true}.Render(th, 0), "[x] Is done")
	assert.Contains(t, Switch{Label: "Is done"}.Render(th, 0), "[ ] Is done")
	assert.Contains(t, Button{Style: "button_normal", Label: "New"}.Render(th, 0), "New")
}

func TestBox(t *testing.T) {
	th := DefaultTheme()
	var b Box
	b.Append(Label{Text: "one"})
	b.Append(Label{Text: "two"})
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, "one\ntwo", b.Render(th, 20))

	b.Horizontal = true
	b.Spacing = 1
	assert.Equal(t, "one two", b.Render(th, 20))

	b.Clear()
	assert.Zero(t, b.Len())
}

func TestWindowRender(t *testing.T) {
	th := DefaultTheme()
	w := &Window{Title: "MTodo", Icon: "☑", Width: 60, Height: 20}
	w.HeaderStart = []Widget{Button{Style: "button_normal", Label: "New"}}
	w.HeaderEnd = []Widget{Button{Style: "button_light", Label: "3"}}
	w.Body.Append(Alert{Title: "No Todo Found.", Message: "Click on 'Add New' button on your top-left side."})

	out := w.Render(th)
	assert.Contains(t, out, "☑ MTodo")
	assert.Contains(t, out, "New")
	assert.Contains(t, out, "No Todo Found.")
	assert.LessOrEqual(t, lipgloss.Height(out), 20)
	assert.Equal(t, 60, lipgloss.Width(out))

	w.Subtitle = "Edit Item"
	assert.Contains(t, w.Render(th), "Edit Item")

	w.Cleanup()
	assert.Zero(t, w.Body.Len())
	assert.Nil(t, w.HeaderStart)
}

func TestWindowSizeDefaults(t *testing.T) {
	w := &Window{}
	width, height := w.Size()
	assert.Equal(t, DefaultWidth, width)
	assert.Equal(t, DefaultHeight, height)

	w.Width, w.Height = -1, 30
	width, height = w.Size()
	assert.Equal(t, DefaultWidth, width)
	assert.Equal(t, 30, height)
}
