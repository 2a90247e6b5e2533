// Package sqlite implements the storage interface using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mtodo/mtodo/internal/debug"
	"github.com/mtodo/mtodo/internal/storage/sqlstore"

	// Import SQLite driver
	_ "modernc.org/sqlite"
)

// BackendName is the factory key for this backend.
const BackendName = "sqlite"

const openMaxElapsed = 10 * time.Second

var dialect = sqlstore.Dialect{
	Name: BackendName,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS todos (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			is_done      INTEGER NOT NULL DEFAULT 0,
			is_important INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_todos_is_done ON todos(is_done)`,
	},
}

// connString builds the driver DSN for path.
// For :memory: databases a single shared connection is used so every query
// sees the same data.
func connString(path string) (string, bool) {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(30000)"
	switch {
	case path == ":memory:":
		return "file::memory:?" + pragmas, true
	case strings.HasPrefix(path, "file:"):
		inMemory := strings.Contains(path, "mode=memory")
		if strings.Contains(path, "_pragma=") {
			return path, inMemory
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + pragmas, inMemory
	default:
		return "file:" + path + "?" + pragmas + "&_pragma=journal_mode(WAL)", false
	}
}

// New opens (creating if needed) the SQLite database at path.
func New(ctx context.Context, path string) (*sqlstore.Store, error) {
	connStr, inMemory := connString(path)
	absPath := path
	if !inMemory && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		var err error
		if absPath, err = filepath.Abs(path); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		// WAL allows one writer plus readers; cap the pool so writers don't pile up.
		db.SetMaxOpenConns(runtime.NumCPU() + 1)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(0)
	}

	// Another process may be holding the file while it migrates; retry briefly.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = openMaxElapsed
	ping := func() error {
		err := db.PingContext(ctx)
		if err != nil {
			debug.Logf("sqlite: ping %s failed, retrying: %v\n", absPath, err)
		}
		return err
	}
	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := sqlstore.Open(ctx, db, absPath, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
