// Package teststore provides backend-agnostic test helpers for storage tests.
//
// Every backend runs the same behaviour suite through RunSuite, so the
// sqlite, dolt and memory stores cannot drift apart.
//
// Usage:
//
//	func TestSuite(t *testing.T) {
//	    teststore.RunSuite(t, func(t *testing.T) storage.Storage {
//	        return memory.New()
//	    })
//	}
package teststore

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/types"
)

// Opener returns a fresh, empty store for one subtest.
type Opener func(t *testing.T) storage.Storage

// Env bundles a store with helpers that fail the test on error.
type Env struct {
	t     *testing.T
	Ctx   context.Context
	Store storage.Storage
}

// NewEnv wraps store and closes it when the test ends.
func NewEnv(t *testing.T, store storage.Storage) *Env {
	t.Helper()
	t.Cleanup(func() { _ = store.Close() })
	return &Env{t: t, Ctx: context.Background(), Store: store}
}

// Create inserts a todo built from d.
func (e *Env) Create(d types.Draft) *types.Todo {
	e.t.Helper()
	todo := &types.Todo{}
	todo.Apply(d)
	require.NoError(e.t, e.Store.CreateTodo(e.Ctx, todo))
	require.NotZero(e.t, todo.ID)
	return todo
}

// List returns the rows matching f.
func (e *Env) List(f types.Filter) []*types.Todo {
	e.t.Helper()
	todos, err := e.Store.ListTodos(e.Ctx, f)
	require.NoError(e.t, err)
	return todos
}

// Titles returns the titles of the rows matching f, in store order.
func (e *Env) Titles(f types.Filter) []string {
	e.t.Helper()
	var titles []string
	for _, todo := range e.List(f) {
		titles = append(titles, todo.Title)
	}
	return titles
}

// ignoreTimes drops timestamps from comparisons; backends differ in precision.
var ignoreTimes = cmpopts.IgnoreFields(types.Todo{}, "CreatedAt", "UpdatedAt")

// RunSuite exercises the full Storage contract against stores from open.
func RunSuite(t *testing.T, open Opener) {
	t.Run("CreateAndGet", func(t *testing.T) {
		env := NewEnv(t, open(t))
		created := env.Create(types.Draft{Title: "Buy milk", Description: "semi-skimmed\n2 litres", IsImportant: true})
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		got, err := env.Store.GetTodo(env.Ctx, created.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(created, got, ignoreTimes); diff != "" {
			t.Errorf("GetTodo mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("IDsIncrease", func(t *testing.T) {
		env := NewEnv(t, open(t))
		a := env.Create(types.Draft{Title: "a"})
		b := env.Create(types.Draft{Title: "b"})
		assert.Greater(t, b.ID, a.ID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		env := NewEnv(t, open(t))
		_, err := env.Store.GetTodo(env.Ctx, 4242)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		env := NewEnv(t, open(t))
		todo := env.Create(types.Draft{Title: "draft"})
		d := types.Draft{Title: "final", Description: "now with text", IsDone: true}
		require.NoError(t, env.Store.UpdateTodo(env.Ctx, todo.ID, d))

		got, err := env.Store.GetTodo(env.Ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, d, got.Draft())
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

		err = env.Store.UpdateTodo(env.Ctx, todo.ID+100, d)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Flags", func(t *testing.T) {
		env := NewEnv(t, open(t))
		todo := env.Create(types.Draft{Title: "flags"})
		require.NoError(t, env.Store.SetDone(env.Ctx, todo.ID, true))
		require.NoError(t, env.Store.SetImportant(env.Ctx, todo.ID, true))

		got, err := env.Store.GetTodo(env.Ctx, todo.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDone)
		assert.True(t, got.IsImportant)

		require.NoError(t, env.Store.SetDone(env.Ctx, todo.ID, false))
		got, err = env.Store.GetTodo(env.Ctx, todo.ID)
		require.NoError(t, err)
		assert.False(t, got.IsDone)

		assert.ErrorIs(t, env.Store.SetDone(env.Ctx, 999, true), storage.ErrNotFound)
		assert.ErrorIs(t, env.Store.SetImportant(env.Ctx, 999, true), storage.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		env := NewEnv(t, open(t))
		keep := env.Create(types.Draft{Title: "keep"})
		drop := env.Create(types.Draft{Title: "drop"})
		require.NoError(t, env.Store.DeleteTodo(env.Ctx, drop.ID))

		_, err := env.Store.GetTodo(env.Ctx, drop.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, env.Store.DeleteTodo(env.Ctx, drop.ID), storage.ErrNotFound)
		assert.Equal(t, []string{keep.Title}, env.Titles(types.Filter{}))
	})

	t.Run("FilterAndCount", func(t *testing.T) {
		env := NewEnv(t, open(t))
		env.Create(types.Draft{Title: "open 1"})
		env.Create(types.Draft{Title: "done 1", IsDone: true})
		env.Create(types.Draft{Title: "open 2", IsImportant: true})
		env.Create(types.Draft{Title: "done 2", IsDone: true, IsImportant: true})

		assert.Equal(t, []string{"open 1", "done 1", "open 2", "done 2"}, env.Titles(types.Filter{}))
		assert.Equal(t, []string{"open 1", "open 2"}, env.Titles(types.DoneFilter(false)))
		assert.Equal(t, []string{"done 1", "done 2"}, env.Titles(types.DoneFilter(true)))

		important := true
		assert.Equal(t, []string{"done 2"}, env.Titles(types.Filter{Done: types.DoneFilter(true).Done, Important: &important}))

		n, err := env.Store.CountTodos(env.Ctx, types.DoneFilter(true))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = env.Store.CountTodos(env.Ctx, types.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("EmptyList", func(t *testing.T) {
		env := NewEnv(t, open(t))
		assert.Empty(t, env.List(types.Filter{}))
		n, err := env.Store.CountTodos(env.Ctx, types.DoneFilter(true))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("ReturnedRowsAreCopies", func(t *testing.T) {
		env := NewEnv(t, open(t))
		todo := env.Create(types.Draft{Title: "original"})
		todo.Title = "mutated by caller"

		got, err := env.Store.GetTodo(env.Ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", got.Title)
	})

	t.Run("Closed", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Close())
		_, err := store.ListTodos(context.Background(), types.Filter{})
		assert.ErrorIs(t, err, storage.ErrClosed)
		assert.ErrorIs(t, store.CreateTodo(context.Background(), &types.Todo{Title: "late"}), storage.ErrClosed)
	})
}
