//go:build !windows

package embedded

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive lock on f without blocking.
func lockFile(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == unix.EWOULDBLOCK {
		return ErrDataDirLocked.New(f.Name())
	}
	return err
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
