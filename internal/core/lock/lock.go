// Package lock serializes subsync runs against a single config root, so
// two invocations cannot mutate the same working copies at once.
package lock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFile is the lock filename created next to the configuration.
const LockFile = ".subsync.lock"

// RunLock is a filesystem lock over one config root.
type RunLock struct {
	fl *flock.Flock
}

// New creates a lock for the given config root. The lock is not held
// until Acquire succeeds.
func New(root string) *RunLock {
	return &RunLock{fl: flock.New(filepath.Join(root, LockFile))}
}

// Acquire takes the lock without blocking. It fails when another run
// already holds it.
func (l *RunLock) Acquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another subsync run is in progress (lock held at %s)", l.fl.Path())
	}
	return nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *RunLock) Release() error {
	return l.fl.Unlock()
}
