// Package sqlstore implements storage.Storage over database/sql.
//
// The sqlite and dolt backends share this implementation; they differ only
// in how the *sql.DB is opened, the DDL they run, and an optional hook that
// runs after each committed write (dolt uses it to create a version commit).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/types"
)

const timeLayout = time.RFC3339Nano

// Dialect describes the backend-specific parts of the store.
type Dialect struct {
	Name string
	// Schema is executed statement by statement on Open; it must be idempotent.
	Schema []string
	// AfterWrite, if set, runs after every successful mutation.
	AfterWrite func(ctx context.Context, db *sql.DB, message string) error
}

// Store is a storage.Storage backed by a *sql.DB.
type Store struct {
	db      *sql.DB
	path    string
	dialect Dialect
	closed  atomic.Bool
	onClose func() error

	now func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithCloser registers fn to run after the database is closed.
func WithCloser(fn func() error) Option {
	return func(s *Store) { s.onClose = fn }
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open runs the dialect schema against db and returns the store.
func Open(ctx context.Context, db *sql.DB, path string, dialect Dialect, opts ...Option) (*Store, error) {
	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to initialize %s schema: %w", dialect.Name, err)
		}
	}
	s := &Store{
		db:      db,
		path:    path,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UnderlyingDB exposes the connection pool for backend-specific queries.
func (s *Store) UnderlyingDB() *sql.DB {
	return s.db
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.db.Close()
	if s.onClose != nil {
		err = errors.Join(err, s.onClose())
	}
	return err
}

func (s *Store) checkOpen() error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	return nil
}

func (s *Store) afterWrite(ctx context.Context, msg string) error {
	if s.dialect.AfterWrite == nil {
		return nil
	}
	if err := s.dialect.AfterWrite(ctx, s.db, msg); err != nil {
		return fmt.Errorf("%s post-write hook: %w", s.dialect.Name, err)
	}
	return nil
}

// CreateTodo inserts a new row.
func (s *Store) CreateTodo(ctx context.Context, t *types.Todo) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (title, description, is_done, is_important, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.IsDone, t.IsImportant,
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return s.afterWrite(ctx, fmt.Sprintf("create todo %d", id))
}

// GetTodo fetches a single row.
func (s *Store) GetTodo(ctx context.Context, id int64) (*types.Todo, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, is_done, is_important, created_at, updated_at
		FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo %d: %w", id, err)
	}
	return t, nil
}

// UpdateTodo replaces the editable fields.
func (s *Store) UpdateTodo(ctx context.Context, id int64, d types.Draft) error {
	return s.update(ctx, id, fmt.Sprintf("update todo %d", id),
		"title = ?, description = ?, is_done = ?, is_important = ?",
		d.Title, d.Description, d.IsDone, d.IsImportant)
}

// SetDone flips the done flag.
func (s *Store) SetDone(ctx context.Context, id int64, done bool) error {
	return s.update(ctx, id, fmt.Sprintf("set todo %d done=%t", id, done), "is_done = ?", done)
}

// SetImportant flips the important flag.
func (s *Store) SetImportant(ctx context.Context, id int64, important bool) error {
	return s.update(ctx, id, fmt.Sprintf("set todo %d important=%t", id, important), "is_important = ?", important)
}

func (s *Store) update(ctx context.Context, id int64, msg, set string, args ...any) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	args = append(args, s.now().Format(timeLayout), id)
	// #nosec G202 - set is a constant column list chosen by the caller
	res, err := s.db.ExecContext(ctx, "UPDATE todos SET "+set+", updated_at = ? WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update todo %d: %w", id, err)
	}
	if err := requireAffected(res, id); err != nil {
		return err
	}
	return s.afterWrite(ctx, msg)
}

// DeleteTodo removes a row.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo %d: %w", id, err)
	}
	if err := requireAffected(res, id); err != nil {
		return err
	}
	return s.afterWrite(ctx, fmt.Sprintf("delete todo %d", id))
}

// ListTodos returns rows matching filter ordered by id.
func (s *Store) ListTodos(ctx context.Context, filter types.Filter) ([]*types.Todo, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	where, args := whereClause(filter)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, is_done, is_important, created_at, updated_at
		FROM todos`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos (%s): %w", filter, err)
	}
	defer func() { _ = rows.Close() }()

	var todos []*types.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// CountTodos counts rows matching filter.
func (s *Store) CountTodos(ctx context.Context, filter types.Filter) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	where, args := whereClause(filter)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count todos (%s): %w", filter, err)
	}
	return n, nil
}

func whereClause(f types.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Done != nil {
		conds = append(conds, "is_done = ?")
		args = append(args, *f.Done)
	}
	if f.Important != nil {
		conds = append(conds, "is_important = ?")
		args = append(args, *f.Important)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("todo %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(sc scanner) (*types.Todo, error) {
	var (
		t                types.Todo
		description      sql.NullString
		created, updated string
	)
	if err := sc.Scan(&t.ID, &t.Title, &description, &t.IsDone, &t.IsImportant, &created, &updated); err != nil {
		return nil, err
	}
	t.Description = description.String
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

// parseTime tolerates rows written by hand with a bare SQL timestamp.
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
