package memory

import (
	"testing"

	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/testutil/teststore"
)

func TestMemoryStorage(t *testing.T) {
	teststore.RunSuite(t, func(t *testing.T) storage.Storage {
		return New()
	})
}

func TestMemoryPath(t *testing.T) {
	if got := New().Path(); got != ":memory:" {
		t.Errorf("Path() = %q, want %q", got, ":memory:")
	}
}
