//go:build cgo

package dolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtodo/mtodo/internal/types"
)

func TestEmbeddedStoreCommitsEachWrite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded Dolt test in short mode")
	}
	ctx := t.Context()

	store, err := New(ctx, &Config{Path: filepath.Join(t.TempDir(), "dolt")})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	todo := &types.Todo{Title: "Water plants", IsImportant: true}
	require.NoError(t, store.CreateTodo(ctx, todo))
	require.NoError(t, store.SetDone(ctx, todo.ID, true))

	got, err := store.GetTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDone)
	assert.True(t, got.IsImportant)

	var commits int
	err = store.UnderlyingDB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM dolt_log WHERE message LIKE 'create todo%' OR message LIKE 'set todo%'").Scan(&commits)
	require.NoError(t, err)
	assert.Equal(t, 2, commits)
}
