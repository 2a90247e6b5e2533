//go:build cgo

package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtodo/mtodo/internal/lockfile"
)

func TestDoltBusyReportsOtherProcess(t *testing.T) {
	e := newCLIEnv(t)

	orig := lockTimeout
	lockTimeout = 50 * time.Millisecond
	t.Cleanup(func() { lockTimeout = orig })

	// the access lock sits beside the dolt directory, as a running todo
	// window would hold it
	held, err := lockfile.Acquire(filepath.Join(e.dir, "dolt-access.lock"), true, 0)
	require.NoError(t, err)
	defer held.Release()

	_, err = e.run("list", "--backend", "dolt")
	require.Error(t, err)
	assert.ErrorIs(t, err, lockfile.ErrLockBusy)
	assert.ErrorContains(t, err, "in use by another mtodo process")
}
