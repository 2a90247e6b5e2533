//go:build cgo

package dolt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	embedded "github.com/dolthub/driver"

	"github.com/mtodo/mtodo/internal/storage/sqlstore"
)

const embeddedOpenMaxElapsed = 30 * time.Second

func newEmbeddedOpenBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = embeddedOpenMaxElapsed
	return bo
}

func newEmbeddedMode(ctx context.Context, cfg *Config) (*sqlstore.Store, error) {
	if info, statErr := os.Stat(cfg.Path); statErr == nil && !info.IsDir() {
		return nil, fmt.Errorf("database path %q is a file, not a directory (sqlite database?)", cfg.Path)
	}
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// The embedded driver chdirs into the directory; relative paths would stack.
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	var lock *AccessLock
	if cfg.OpenTimeout > 0 {
		lock, err = AcquireAccessLock(absPath, !cfg.ReadOnly, cfg.OpenTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire dolt access lock: %w", err)
		}
	}
	release := func() {
		if lock != nil {
			lock.Release()
		}
	}

	initDSN := fmt.Sprintf("file://%s?commitname=%s&commitemail=%s",
		absPath, cfg.CommitterName, cfg.CommitterEmail)
	dbDSN := initDSN + "&database=" + cfg.Database

	if !cfg.ReadOnly {
		if err := withEmbeddedDolt(ctx, initDSN, func(ctx context.Context, db *sql.DB) error {
			_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.Database))
			return err
		}); err != nil {
			release()
			return nil, fmt.Errorf("failed to create dolt database: %w", err)
		}
	}

	openCfg, err := embedded.ParseDSN(dbDSN)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to parse Dolt DSN: %w", err)
	}
	openCfg.BackOff = newEmbeddedOpenBackoff()
	connector, err := embedded.NewConnector(openCfg)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to create Dolt connector: %w", err)
	}
	db := sql.OpenDB(connector)
	// Embedded Dolt is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	closer := func() error {
		err := ignoreContextCanceled(connector.Close())
		release()
		return err
	}

	// The driver keeps the Connect context for the session; don't hand it one
	// that the caller may cancel.
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		_ = closer()
		return nil, fmt.Errorf("failed to ping Dolt database: %w", err)
	}

	dialect := newDialect(cfg)
	if cfg.ReadOnly {
		dialect.Schema = nil
		dialect.AfterWrite = nil
	}
	store, err := sqlstore.Open(ctx, db, absPath, dialect, sqlstore.WithCloser(closer))
	if err != nil {
		_ = db.Close()
		_ = closer()
		return nil, err
	}
	return store, nil
}

// withEmbeddedDolt runs one unit of work on a short-lived connector and
// releases the engine's filesystem locks afterwards.
func withEmbeddedDolt(ctx context.Context, dsn string, fn func(ctx context.Context, db *sql.DB) error) (err error) {
	cfg, err := embedded.ParseDSN(dsn)
	if err != nil {
		return err
	}
	cfg.BackOff = newEmbeddedOpenBackoff()

	connector, err := embedded.NewConnector(cfg)
	if err != nil {
		return err
	}
	db := sql.OpenDB(connector)
	defer func() {
		cerr := errors.Join(
			ignoreContextCanceled(db.Close()),
			ignoreContextCanceled(connector.Close()),
		)
		err = errors.Join(err, cerr)
	}()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	return fn(ctx, db)
}

// Dolt close paths can surface context.Canceled from shutdown plumbing.
func ignoreContextCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
