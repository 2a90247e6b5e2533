// Package lockfile provides advisory file locks used to keep two mtodo
// processes from writing the same data directory at once.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrLockBusy is returned when another process holds a conflicting lock.
var ErrLockBusy = errors.New("lock held by another process")

// pollInterval is how often Acquire retries a busy lock.
const pollInterval = 50 * time.Millisecond

// Lock is a held advisory lock on a file.
type Lock struct {
	file *os.File
	path string
}

// Acquire locks path, creating it if needed. Shared locks may be held by
// several processes; an exclusive lock excludes everyone else. A busy lock
// is retried until timeout elapses; timeout <= 0 tries exactly once.
func Acquire(path string, exclusive bool, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	// #nosec G304 - controlled path derived from configuration
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	lockFn := flockSharedNonBlock
	if exclusive {
		lockFn = flockExclusiveNonBlock
	}

	deadline := time.Now().Add(timeout)
	for {
		err := lockFn(f)
		if err == nil {
			return &Lock{file: f, path: path}, nil
		}
		if !errors.Is(err, ErrLockBusy) {
			_ = f.Close()
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if !time.Now().Before(deadline) {
			_ = f.Close()
			kind := "shared"
			if exclusive {
				kind = "exclusive"
			}
			return nil, fmt.Errorf("%s lock on %s (waited %v): %w", kind, path, timeout, ErrLockBusy)
		}
		time.Sleep(pollInterval)
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks and closes the file. Safe to call more than once.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = flockUnlock(l.file)
	_ = l.file.Close()
	l.file = nil
}
