package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func waitChange(t *testing.T, w *Watcher) bool {
	t.Helper()
	select {
	case _, ok := <-w.Changes():
		return ok
	case <-time.After(3 * time.Second):
		return false
	}
}

func TestWatcherReportsDatabaseWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	db := filepath.Join(dir, "mtodo.db")
	require.NoError(t, os.WriteFile(db, nil, 0o600))

	w, err := NewWatcher(db, 100*time.Millisecond)
	require.NoError(t, err)

	// a burst of writes collapses into one notification
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(db+"-wal", []byte{byte(i)}, 0o600))
	}
	assert.True(t, waitChange(t, w))

	select {
	case <-w.Changes():
		t.Fatal("expected a single notification per burst")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, w.Close())
	_, ok := <-w.Changes()
	assert.False(t, ok, "Changes is closed after Close")
	assert.NoError(t, w.Close())
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	db := filepath.Join(dir, "mtodo.db")
	w, err := NewWatcher(db, 10*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("verbose: true\n"), 0o600))
	select {
	case <-w.Changes():
		t.Fatal("unrelated file should not trigger a refresh")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherDirectoryMatchesEverything(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := NewWatcher(dir, 10*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest"), []byte("x"), 0o600))
	assert.True(t, waitChange(t, w))
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "mtodo.db"), 0)
	assert.Error(t, err)
}
