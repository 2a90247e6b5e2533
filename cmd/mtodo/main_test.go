package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtodo/mtodo/internal/action"
	"github.com/mtodo/mtodo/internal/config"
	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/types"
)

type cliEnv struct {
	t   *testing.T
	dir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	dir := t.TempDir()
	t.Setenv("MTODO_DATA_DIR", dir)
	t.Setenv("MTODO_OTEL_ENABLED", "")
	t.Setenv("NO_COLOR", "1")

	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() {
		isTerminal = orig
		config.ResetForTesting()
	})
	return &cliEnv{t: t, dir: dir}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	args = append(args, "--config-dir", e.dir, "--db", filepath.Join(e.dir, "mtodo.db"))
	err := run(args, &out, &errOut)
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "mtodo %v", args)
	return out
}

func TestAddListDoneDelete(t *testing.T) {
	e := newCLIEnv(t)

	assert.Equal(t, "Created #1: Buy milk\n", e.mustRun("add", "Buy", "milk", "-d", "2 litres\nsemi-skimmed"))
	assert.Equal(t, "#1 [ ] Buy milk\n   └─ 2 litres\n\n1 open, 0 done\n", e.mustRun("list"))

	assert.Equal(t, "Marked #1 done\n", e.mustRun("done", "1"))
	assert.Equal(t, "No Todo Found.\n\n0 open, 1 done\n", e.mustRun("list"))
	assert.Contains(t, e.mustRun("list", "--all"), "#1 [x] Buy milk")

	var todos []types.Todo
	require.NoError(t, json.Unmarshal([]byte(e.mustRun("list", "--all", "--json")), &todos))
	require.Len(t, todos, 1)
	assert.True(t, todos[0].IsDone)
	assert.Equal(t, "2 litres\nsemi-skimmed", todos[0].Description)

	_, err := e.run("delete", "1")
	assert.ErrorContains(t, err, "refusing to delete without --force")

	assert.Equal(t, "Deleted #1: Buy milk\n", e.mustRun("delete", "#1", "--force"))
	_, err = e.run("show", "1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, "[]\n", e.mustRun("list", "--json"))
}

func TestEditOnlyChangesGivenFlags(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "Call mom", "--description", "Sunday", "--important")

	_, err := e.run("edit", "1")
	assert.ErrorContains(t, err, "nothing to change")

	assert.Equal(t, "Updated #1\n", e.mustRun("edit", "1", "--title", "Call dad", "--important=false"))

	var todo types.Todo
	require.NoError(t, json.Unmarshal([]byte(e.mustRun("show", "1", "--json")), &todo))
	assert.Equal(t, "Call dad", todo.Title)
	assert.Equal(t, "Sunday", todo.Description)
	assert.False(t, todo.IsImportant)
	assert.False(t, todo.IsDone)

	_, err = e.run("edit", "7", "--title", "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestImportantToggle(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "Pay rent")
	assert.Equal(t, "Marked #1 important\n", e.mustRun("important", "1"))
	assert.Contains(t, e.mustRun("list"), "#1 [ ] ! Pay rent")
	assert.Equal(t, "Marked #1 not important\n", e.mustRun("important", "1"))
}

func TestAddRejectsBlankTitle(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("add", "   ")
	assert.ErrorIs(t, err, action.ErrInvalidDraft)
}

func TestInvalidID(t *testing.T) {
	e := newCLIEnv(t)
	for _, cmd := range []string{"done", "important", "show", "delete"} {
		_, err := e.run(cmd, "abc")
		assert.ErrorContains(t, err, `invalid todo id "abc"`, cmd)
	}
}

func TestQuietSuppressesStatus(t *testing.T) {
	e := newCLIEnv(t)
	assert.Empty(t, e.mustRun("add", "silent", "-q"))
	assert.Equal(t, "#1 [ ] silent\n", e.mustRun("list", "--quiet"))
}

func TestEventLogRecordsMutations(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "logged")
	e.mustRun("done", "1")

	data, err := os.ReadFile(filepath.Join(e.dir, "events.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"todo.create"`)
	assert.Contains(t, string(data), `"event":"todo.done"`)
}

func TestConfigCommands(t *testing.T) {
	e := newCLIEnv(t)

	assert.Equal(t, "Set window.width = 120\n", e.mustRun("config", "set", "window.width", "120"))
	assert.Equal(t, "120\n", e.mustRun("config", "get", "window.width"))
	assert.Equal(t, "sqlite\n", e.mustRun("config", "get", "database.backend"))

	data, err := os.ReadFile(filepath.Join(e.dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "width: 120")

	_, err = e.run("config", "set", "window.width", "-1")
	assert.ErrorContains(t, err, "non-negative integer")
	_, err = e.run("config", "set", "style.dark", "maybe")
	assert.ErrorContains(t, err, "true or false")
	_, err = e.run("config", "get", "nope")
	assert.ErrorContains(t, err, `unknown config key "nope"`)

	list := e.mustRun("config", "list")
	assert.Contains(t, list, "database.backend")
	assert.Contains(t, list, "storage backend")
}

func TestVersion(t *testing.T) {
	e := newCLIEnv(t)
	assert.Contains(t, e.mustRun("version"), "mtodo version "+Version)

	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(e.mustRun("version", "--json")), &v))
	assert.Equal(t, Version, v["version"])
}

func TestRootNeedsTerminal(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run()
	assert.ErrorContains(t, err, "needs a terminal")
}

func TestUnknownBackend(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("list", "--backend", "postgres")
	assert.ErrorContains(t, err, "unknown storage backend: postgres")
}

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{arg: "1", want: 1},
		{arg: "#42", want: 42},
		{arg: "0", wantErr: true},
		{arg: "-3", wantErr: true},
		{arg: "x1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseID(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
