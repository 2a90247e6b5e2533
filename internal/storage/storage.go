// Package storage provides shared types for todo storage.
//
// Concrete backends live in sub-packages (sqlite, dolt, memory) and are
// opened through the factory package. Consumers depend on the Storage
// interface so that backends, and the telemetry decorator, can be swapped.
package storage

import (
	"context"
	"errors"

	"github.com/mtodo/mtodo/internal/types"
)

// ErrNotFound is returned when a requested todo does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrClosed is returned by operations on a store after Close.
var ErrClosed = errors.New("storage closed")

// Storage is the CRUD surface over todo rows.
type Storage interface {
	// CreateTodo inserts t and fills in its ID and timestamps.
	CreateTodo(ctx context.Context, t *types.Todo) error
	GetTodo(ctx context.Context, id int64) (*types.Todo, error)
	// UpdateTodo replaces the editable fields of the row.
	UpdateTodo(ctx context.Context, id int64, d types.Draft) error
	SetDone(ctx context.Context, id int64, done bool) error
	SetImportant(ctx context.Context, id int64, important bool) error
	DeleteTodo(ctx context.Context, id int64) error
	// ListTodos returns matching rows ordered by ID.
	ListTodos(ctx context.Context, filter types.Filter) ([]*types.Todo, error)
	CountTodos(ctx context.Context, filter types.Filter) (int, error)

	// Path returns where the data lives (":memory:" for in-process stores).
	Path() string
	Close() error
}
