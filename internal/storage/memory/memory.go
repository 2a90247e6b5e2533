// Package memory implements an in-process storage backend. It backs tests
// and `--backend memory` sessions; nothing is persisted.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/types"
)

// BackendName is the factory key for this backend.
const BackendName = "memory"

// MemoryStorage keeps todos in a map guarded by a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	todos  map[int64]*types.Todo
	nextID int64
	closed bool
	now    func() time.Time
}

// New creates an empty store.
func New() *MemoryStorage {
	return &MemoryStorage{
		todos:  make(map[int64]*types.Todo),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ storage.Storage = (*MemoryStorage)(nil)

func (m *MemoryStorage) CreateTodo(_ context.Context, t *types.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storage.ErrClosed
	}
	now := m.now()
	t.ID = m.nextID
	t.CreatedAt = now
	t.UpdatedAt = now
	m.nextID++
	m.todos[t.ID] = t.Clone()
	return nil
}

func (m *MemoryStorage) GetTodo(_ context.Context, id int64) (*types.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storage.ErrClosed
	}
	t, ok := m.todos[id]
	if !ok {
		return nil, fmt.Errorf("todo %d: %w", id, storage.ErrNotFound)
	}
	return t.Clone(), nil
}

func (m *MemoryStorage) UpdateTodo(_ context.Context, id int64, d types.Draft) error {
	return m.mutate(id, func(t *types.Todo) { t.Apply(d) })
}

func (m *MemoryStorage) SetDone(_ context.Context, id int64, done bool) error {
	return m.mutate(id, func(t *types.Todo) { t.IsDone = done })
}

func (m *MemoryStorage) SetImportant(_ context.Context, id int64, important bool) error {
	return m.mutate(id, func(t *types.Todo) { t.IsImportant = important })
}

func (m *MemoryStorage) mutate(id int64, fn func(*types.Todo)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storage.ErrClosed
	}
	t, ok := m.todos[id]
	if !ok {
		return fmt.Errorf("todo %d: %w", id, storage.ErrNotFound)
	}
	fn(t)
	t.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStorage) DeleteTodo(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storage.ErrClosed
	}
	if _, ok := m.todos[id]; !ok {
		return fmt.Errorf("todo %d: %w", id, storage.ErrNotFound)
	}
	delete(m.todos, id)
	return nil
}

func (m *MemoryStorage) ListTodos(_ context.Context, filter types.Filter) ([]*types.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storage.ErrClosed
	}
	var out []*types.Todo
	for _, t := range m.todos {
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStorage) CountTodos(_ context.Context, filter types.Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, storage.ErrClosed
	}
	n := 0
	for _, t := range m.todos {
		if filter.Matches(t) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStorage) Path() string {
	return ":memory:"
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
