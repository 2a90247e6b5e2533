package dolt

import (
	"path/filepath"
	"time"

	"github.com/mtodo/mtodo/internal/lockfile"
)

// accessLockFile lives next to the dolt directory, not inside it, so Dolt's
// own files are never touched.
const accessLockFile = "dolt-access.lock"

// AccessLock coordinates access to the embedded Dolt database.
// Shared locks allow concurrent readers; exclusive locks ensure single-writer.
type AccessLock struct {
	*lockfile.Lock
}

// AcquireAccessLock takes the advisory lock for doltDir, polling until
// timeout expires. Returns an error wrapping lockfile.ErrLockBusy on timeout.
func AcquireAccessLock(doltDir string, exclusive bool, timeout time.Duration) (*AccessLock, error) {
	path := filepath.Join(filepath.Dir(doltDir), accessLockFile)
	l, err := lockfile.Acquire(path, exclusive, timeout)
	if err != nil {
		return nil, err
	}
	return &AccessLock{Lock: l}, nil
}
