package debug

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		env     bool
		verbose bool
		want    bool
	}{
		{"env set", true, false, true},
		{"verbose flag", false, true, true},
		{"both off", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldEnabled, oldVerbose := enabled, verboseMode
			defer func() { enabled, verboseMode = oldEnabled, oldVerbose }()

			enabled = tt.env
			SetVerbose(tt.verbose)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestLogfWritesToLogFile(t *testing.T) {
	oldEnabled := enabled
	defer func() { enabled = oldEnabled; Close() }()

	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, SetLogFile(path))

	enabled = false
	Logf("hidden %d\n", 1)
	enabled = true
	Logf("refresh took %dms\n", 12)
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "refresh took 12ms")
	assert.Contains(t, out, "DEBUG")
	assert.NotContains(t, out, "hidden")
}

func TestPrintNormalRespectsQuiet(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldQuiet := stdout, quietMode
	defer func() { stdout, quietMode = oldOut, oldQuiet }()
	stdout = &buf

	SetQuiet(false)
	PrintNormal("created %d\n", 3)
	PrintlnNormal("ok")
	SetQuiet(true)
	assert.True(t, IsQuiet())
	PrintNormal("suppressed\n")
	PrintlnNormal("suppressed")

	assert.Equal(t, "created 3\nok\n", buf.String())
}

func TestLogEvent(t *testing.T) {
	t.Setenv("MTODO_ACTOR", "tester")
	defer Close()

	// No log open yet: must not panic or create files.
	LogEvent("todo.create", 1, "ignored")

	path := filepath.Join(t.TempDir(), "logs", "events.log")
	require.NoError(t, OpenEventLog(path))
	LogEvent("todo.create", 7, "title=Buy milk")
	LogEvent("todo.delete", 7, "")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "todo.create", first["event"])
	assert.Equal(t, float64(7), first["todo_id"])
	assert.Equal(t, "tester", first["actor"])
	assert.Equal(t, "title=Buy milk", first["details"])
	assert.NotEmpty(t, first["ts"])
}
