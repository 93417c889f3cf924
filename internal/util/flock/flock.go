// Package flock provides a host-local mutual-exclusion lock backed by a
// lock file, used to keep overlapping runs of a scheduled task from
// interleaving on the same host.
package flock

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// Lock is a scoped host-local lock. Acquire it with Acquire and release
// it with Release; both are safe to call at most once per Lock value.
type Lock struct {
	fl *flock.Flock
}

// New creates a lock backed by the given lock file path. The file is
// created if it does not exist and is never deleted on release.
func New(path string) *Lock {
	return &Lock{fl: flock.New(path)}
}

// Acquire takes the lock, polling until it is available or the timeout
// elapses. A zero timeout makes a single non-blocking attempt.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		ok, err := l.fl.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", l.fl.Path(), err)
		}
		if !ok {
			return fmt.Errorf("lock %s is held by another process", l.fl.Path())
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := l.fl.TryLockContext(ctx, 500*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return fmt.Errorf("timed out acquiring lock %s", l.fl.Path())
	}
	return nil
}

// Release drops the lock. Releasing a lock that was never acquired is a
// no-op.
func (l *Lock) Release() error {
	if !l.fl.Locked() {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.fl.Path(), err)
	}
	return nil
}
