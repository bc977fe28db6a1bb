package fsutil

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside the data directory while a writer holds it.
const LockFileName = "tally.lock"

// ErrLocked is returned when another process already holds the data dir.
var ErrLocked = errors.New("data directory is in use by another tally process")

// DirLock is an exclusive advisory lock on a data directory.
type DirLock struct {
	fl *flock.Flock
}

// LockDir takes the lock without blocking.
func LockDir(dir string) (*DirLock, error) {
	fl := flock.New(filepath.Join(dir, LockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, dir)
	}
	return &DirLock{fl: fl}, nil
}

// Unlock releases the lock. It is safe to call more than once.
func (l *DirLock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.fl.Path(), err)
	}
	return nil
}
