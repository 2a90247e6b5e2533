package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtodo/mtodo/internal/types"
)

func TestShouldUseColor(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		want  bool
		notty bool // result follows the (absent) tty
	}{
		{name: "NO_COLOR disables", env: map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, want: false},
		{name: "CLICOLOR_FORCE enables", env: map[string]string{"CLICOLOR_FORCE": "1"}, want: true},
		{name: "CLICOLOR=0 disables", env: map[string]string{"CLICOLOR": "0"}, want: false},
		{name: "no env follows tty", notty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, set := os.LookupEnv("NO_COLOR"); set && tt.env["NO_COLOR"] == "" {
				t.Skip("NO_COLOR is set in the environment")
			}
			t.Setenv("CLICOLOR_FORCE", "")
			t.Setenv("CLICOLOR", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.notty {
				assert.Equal(t, IsTerminal(), ShouldUseColor())
				return
			}
			assert.Equal(t, tt.want, ShouldUseColor())
		})
	}
}

func TestRenderMarkdownPlainWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, "# Title\n\n*body*", RenderMarkdown("# Title\n\n*body*"))
}

func TestRenderMarkdownWidthWraps(t *testing.T) {
	body := strings.Repeat("word ", 40)
	out := RenderMarkdownWidth("# Title\n\n"+body, 30, "ascii")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "word")
	assert.Greater(t, strings.Count(strings.TrimSpace(out), "\n"), 4)
}

func TestFormatTodoPlain(t *testing.T) {
	tests := []struct {
		name string
		todo types.Todo
		want string
	}{
		{
			name: "open",
			todo: types.Todo{ID: 1, Title: "Buy milk"},
			want: "#1 [ ] Buy milk",
		},
		{
			name: "done and important with description",
			todo: types.Todo{ID: 12, Title: "Pay rent", Description: "before the 5th\nby transfer", IsDone: true, IsImportant: true},
			want: "#12 [x] ! Pay rent\n   └─ before the 5th",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTodo(&tt.todo, false))
		})
	}
}

func TestFormatTodoColorKeepsText(t *testing.T) {
	out := FormatTodo(&types.Todo{ID: 4, Title: "Call mom", Description: "Sunday", IsImportant: true}, true)
	assert.Contains(t, out, "#4")
	assert.Contains(t, out, "Call mom")
	assert.Contains(t, out, "Sunday")
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t, "2 open, 1 done", FormatSummary(2, 1))
}
