//go:build !cgo

package dolt

import (
	"context"
	"errors"
	"fmt"

	"github.com/mtodo/mtodo/internal/storage/sqlstore"
)

var errNoCGO = errors.New("dolt: this binary was built without CGO support; rebuild with CGO_ENABLED=1")

func newEmbeddedMode(_ context.Context, _ *Config) (*sqlstore.Store, error) {
	return nil, fmt.Errorf("embedded mode requires CGO: %w (use --backend sqlite instead)", errNoCGO)
}
