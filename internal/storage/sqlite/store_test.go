package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/testutil/teststore"
	"github.com/mtodo/mtodo/internal/types"
)

func TestSQLiteStorage(t *testing.T) {
	teststore.RunSuite(t, func(t *testing.T) storage.Storage {
		store, err := New(context.Background(), filepath.Join(t.TempDir(), "mtodo.db"))
		require.NoError(t, err)
		return store
	})
}

func TestSQLiteInMemory(t *testing.T) {
	teststore.RunSuite(t, func(t *testing.T) storage.Storage {
		store, err := New(context.Background(), ":memory:")
		require.NoError(t, err)
		return store
	})
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "mtodo.db")

	store, err := New(ctx, path)
	require.NoError(t, err)
	todo := &types.Todo{Title: "survive restart", Description: "first line\nsecond line", IsImportant: true}
	require.NoError(t, store.CreateTodo(ctx, todo))
	require.NoError(t, store.Close())

	store, err = New(ctx, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	got, err := store.GetTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, todo.Draft(), got.Draft())
	assert.Equal(t, todo.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, store.Path())
}

func TestConnString(t *testing.T) {
	tests := []struct {
		path         string
		wantPrefix   string
		wantInMemory bool
		wantWAL      bool
	}{
		{":memory:", "file::memory:?", true, false},
		{"/tmp/a.db", "file:/tmp/a.db?", false, true},
		{"file:x.db?mode=memory", "file:x.db?mode=memory&", true, false},
		{"file:y.db", "file:y.db?", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, inMemory := connString(tt.path)
			assert.Contains(t, got, "busy_timeout")
			assert.Equal(t, tt.wantInMemory, inMemory)
			assert.Equal(t, tt.wantWAL, strings.Contains(got, "journal_mode(WAL)"))
			assert.Equal(t, tt.wantPrefix, got[:len(tt.wantPrefix)])
		})
	}

	custom := "file:z.db?_pragma=busy_timeout(1)"
	got, _ := connString(custom)
	assert.Equal(t, custom, got)
}
