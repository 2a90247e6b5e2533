//go:build unix

package lockfile

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExclusiveLockExcludes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "mtodo.lock")

	first, err := Acquire(path, true, 0)
	require.NoError(t, err)
	defer first.Release()
	assert.Equal(t, path, first.Path())

	// flock locks belong to the open file description, so a second open in
	// the same process conflicts just like another process would.
	_, err = Acquire(path, true, 120*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockBusy), "want ErrLockBusy, got %v", err)

	first.Release()
	second, err := Acquire(path, true, 0)
	require.NoError(t, err)
	second.Release()
}

func TestSharedLocksCoexist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.lock")

	a, err := Acquire(path, false, 0)
	require.NoError(t, err)
	defer a.Release()

	b, err := Acquire(path, false, 0)
	require.NoError(t, err)
	defer b.Release()

	_, err = Acquire(path, true, 0)
	assert.ErrorIs(t, err, ErrLockBusy)
}

func TestReleaseIsIdempotent(t *testing.T) {
	l, err := Acquire(filepath.Join(t.TempDir(), "x.lock"), true, 0)
	require.NoError(t, err)
	l.Release()
	l.Release()

	var nilLock *Lock
	nilLock.Release()
}
