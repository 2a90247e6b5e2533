//go:build !unix && !windows

package lockfile

import "os"

// No advisory locking on this platform; typically a single process anyway.
func flockSharedNonBlock(*os.File) error    { return nil }
func flockExclusiveNonBlock(*os.File) error { return nil }
func flockUnlock(*os.File) error            { return nil }
