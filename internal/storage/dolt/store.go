// Package dolt implements the storage interface on an embedded Dolt
// database, giving the todo list a commit history.
//
// Every mutation is followed by a DOLT_COMMIT so `dolt log` inside the
// database directory shows one commit per change. The embedded engine
// requires CGO; non-CGO builds return an error from New.
package dolt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mtodo/mtodo/internal/storage/sqlstore"
)

// BackendName is the factory key for this backend.
const BackendName = "dolt"

// Config configures the embedded store.
type Config struct {
	Path           string // directory holding the Dolt database
	Database       string // database name (default: mtodo)
	CommitterName  string
	CommitterEmail string
	ReadOnly       bool
	OpenTimeout    time.Duration // advisory lock timeout (0 = no lock)
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "mtodo"
	}
	if c.CommitterName == "" {
		c.CommitterName = "mtodo"
	}
	if c.CommitterEmail == "" {
		c.CommitterEmail = "mtodo@localhost"
	}
}

var schema = []string{
	"CREATE TABLE IF NOT EXISTS todos (" +
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, " +
		"title VARCHAR(2048) NOT NULL, " +
		"description TEXT, " +
		"is_done TINYINT(1) NOT NULL DEFAULT 0, " +
		"is_important TINYINT(1) NOT NULL DEFAULT 0, " +
		"created_at VARCHAR(40) NOT NULL, " +
		"updated_at VARCHAR(40) NOT NULL, " +
		"INDEX idx_todos_is_done (is_done))",
}

func newDialect(cfg *Config) sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:   BackendName,
		Schema: schema,
		AfterWrite: func(ctx context.Context, db *sql.DB, message string) error {
			return commit(ctx, db, message, cfg.CommitterName, cfg.CommitterEmail)
		},
	}
}

// commit stages and commits all working-set changes.
func commit(ctx context.Context, db *sql.DB, message, name, email string) error {
	author := fmt.Sprintf("%s <%s>", name, email)
	_, err := db.ExecContext(ctx, "CALL DOLT_COMMIT('-Am', ?, '--author', ?)", message, author)
	if isNothingToCommit(err) {
		return nil
	}
	return err
}

func isNothingToCommit(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "nothing to commit") || (strings.Contains(s, "no changes") && strings.Contains(s, "commit"))
}

// New opens the embedded Dolt store described by cfg.
func New(ctx context.Context, cfg *Config) (*sqlstore.Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errors.New("dolt: database path is required")
	}
	cfg.applyDefaults()
	return newEmbeddedMode(ctx, cfg)
}
