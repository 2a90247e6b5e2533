// Package action maps user intents (new, edit, toggle, delete, resize) onto
// storage calls. Callers re-run Snapshot after a mutation to refresh the view.
package action

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mtodo/mtodo/internal/debug"
	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/types"
)

// ErrInvalidDraft wraps draft validation failures.
var ErrInvalidDraft = errors.New("invalid todo")

// Event codes written to the event log.
const (
	EventCreate    = "todo.create"
	EventUpdate    = "todo.update"
	EventDone      = "todo.done"
	EventImportant = "todo.important"
	EventDelete    = "todo.delete"
)

// Preferences persists UI preferences. config satisfies it via PrefsFunc.
type Preferences interface {
	SaveWindowSize(width, height int) error
}

// PrefsFunc adapts a function to Preferences.
type PrefsFunc func(width, height int) error

func (f PrefsFunc) SaveWindowSize(width, height int) error { return f(width, height) }

// Snapshot is what the list view renders after a refresh.
type Snapshot struct {
	// Items are the visible rows: open rows, or every row in show-all mode.
	Items []*types.Todo
	// DoneCount labels the counter button.
	DoneCount int
	ShowAll   bool
}

// Actions holds the store and the list's show-all mode.
type Actions struct {
	store storage.Storage
	prefs Preferences

	mu      sync.Mutex
	showAll bool
}

// New returns Actions over store. prefs may be nil.
func New(store storage.Storage, prefs Preferences) *Actions {
	return &Actions{store: store, prefs: prefs}
}

// Store returns the underlying store.
func (a *Actions) Store() storage.Storage {
	return a.store
}

// ShowAll reports whether done rows are listed.
func (a *Actions) ShowAll() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.showAll
}

// SetShowAll sets the show-all mode.
func (a *Actions) SetShowAll(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.showAll = on
}

// ToggleShowAll flips the show-all mode and returns the new value.
func (a *Actions) ToggleShowAll() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.showAll = !a.showAll
	return a.showAll
}

// Snapshot runs the two refresh queries concurrently: the done count and the
// visible rows.
func (a *Actions) Snapshot(ctx context.Context) (Snapshot, error) {
	showAll := a.ShowAll()
	snap := Snapshot{ShowAll: showAll}

	visible := types.DoneFilter(false)
	if showAll {
		visible = types.Filter{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := a.store.CountTodos(gctx, types.DoneFilter(true))
		if err != nil {
			return fmt.Errorf("count done todos: %w", err)
		}
		snap.DoneCount = n
		return nil
	})
	g.Go(func() error {
		items, err := a.store.ListTodos(gctx, visible)
		if err != nil {
			return fmt.Errorf("list todos: %w", err)
		}
		snap.Items = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{ShowAll: showAll}, err
	}
	return snap, nil
}

func prepare(d types.Draft) (types.Draft, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	return d, nil
}

// AddItem creates a todo from d.
func (a *Actions) AddItem(ctx context.Context, d types.Draft) (*types.Todo, error) {
	d, err := prepare(d)
	if err != nil {
		return nil, err
	}
	todo := &types.Todo{}
	todo.Apply(d)
	if err := a.store.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("add todo: %w", err)
	}
	debug.LogEvent(EventCreate, todo.ID, "title="+todo.Title)
	debug.Logf("action: created todo %d\n", todo.ID)
	return todo, nil
}

// EditItem replaces the editable fields of todo id.
func (a *Actions) EditItem(ctx context.Context, id int64, d types.Draft) error {
	d, err := prepare(d)
	if err != nil {
		return err
	}
	if err := a.store.UpdateTodo(ctx, id, d); err != nil {
		return fmt.Errorf("edit todo %d: %w", id, err)
	}
	debug.LogEvent(EventUpdate, id, "title="+d.Title)
	return nil
}

// ToggleDone flips the done flag and returns the new value.
func (a *Actions) ToggleDone(ctx context.Context, id int64) (bool, error) {
	todo, err := a.store.GetTodo(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle done: %w", err)
	}
	done := !todo.IsDone
	if err := a.store.SetDone(ctx, id, done); err != nil {
		return false, fmt.Errorf("toggle done: %w", err)
	}
	debug.LogEvent(EventDone, id, fmt.Sprintf("done=%t", done))
	return done, nil
}

// ToggleImportant flips the important flag and returns the new value.
func (a *Actions) ToggleImportant(ctx context.Context, id int64) (bool, error) {
	todo, err := a.store.GetTodo(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle important: %w", err)
	}
	important := !todo.IsImportant
	if err := a.store.SetImportant(ctx, id, important); err != nil {
		return false, fmt.Errorf("toggle important: %w", err)
	}
	debug.LogEvent(EventImportant, id, fmt.Sprintf("important=%t", important))
	return important, nil
}

// DeleteItem removes todo id.
func (a *Actions) DeleteItem(ctx context.Context, id int64) error {
	if err := a.store.DeleteTodo(ctx, id); err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	debug.LogEvent(EventDelete, id, "")
	return nil
}

// Resize persists the window size. Non-positive sizes are ignored.
func (a *Actions) Resize(width, height int) error {
	if a.prefs == nil || width <= 0 || height <= 0 {
		return nil
	}
	if err := a.prefs.SaveWindowSize(width, height); err != nil {
		return fmt.Errorf("save window size: %w", err)
	}
	return nil
}
