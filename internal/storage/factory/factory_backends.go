package factory

import (
	"context"

	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/storage/dolt"
	"github.com/mtodo/mtodo/internal/storage/memory"
	"github.com/mtodo/mtodo/internal/storage/sqlite"
)

func init() {
	RegisterBackend(sqlite.BackendName, func(ctx context.Context, path string, _ Options) (storage.Storage, error) {
		return sqlite.New(ctx, path)
	})
	RegisterBackend(memory.BackendName, func(context.Context, string, Options) (storage.Storage, error) {
		return memory.New(), nil
	})
	// Non-CGO builds register dolt too; dolt.New reports the missing engine.
	RegisterBackend(dolt.BackendName, func(ctx context.Context, path string, opts Options) (storage.Storage, error) {
		return dolt.New(ctx, &dolt.Config{
			Path:        path,
			ReadOnly:    opts.ReadOnly,
			OpenTimeout: opts.LockTimeout,
		})
	})
}
