package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/types"
)

func TestBackendsRegistered(t *testing.T) {
	assert.Equal(t, []string{"dolt", "memory", "sqlite"}, Backends())
}

func TestNewDefaultsToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")
	store, err := New(context.Background(), "", path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, store.Path())
}

func TestNewMemoryIgnoresPath(t *testing.T) {
	store, err := New(context.Background(), " Memory ", "/does/not/matter")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.CreateTodo(context.Background(), &types.Todo{Title: "x"}))
	assert.Equal(t, ":memory:", store.Path())
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), "postgres", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend: postgres")
	assert.Contains(t, err.Error(), "dolt, memory, sqlite")
}

func TestRegisterBackendOverrides(t *testing.T) {
	called := false
	RegisterBackend("fake", func(context.Context, string, Options) (storage.Storage, error) {
		called = true
		return nil, assert.AnError
	})
	defer delete(backendRegistry, "fake")

	_, err := New(context.Background(), "fake", "")
	assert.True(t, called)
	assert.ErrorIs(t, err, assert.AnError)
}
