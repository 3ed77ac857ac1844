package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// MigrationLock is a file-based advisory lock serializing schema migration
// across processes. N concurrently launched workers run the idempotent DDL
// at most one-at-a-time; every worker after the first sees current
// signatures and returns fast.
type MigrationLock struct {
	fl *flock.Flock
}

// NewMigrationLock creates a lock on the given lock file path
// (conventionally "{db_path}.migration.lock" hidden under the storage root).
func NewMigrationLock(path string) *MigrationLock {
	return &MigrationLock{fl: flock.New(path)}
}

// Lock blocks until the lock is granted or ctx is done.
func (l *MigrationLock) Lock(ctx context.Context) error {
	// flock's blocking Lock ignores context, so poll with a short interval.
	ok, err := l.fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return fmt.Errorf("migration lock %s not granted", l.fl.Path())
	}
	return nil
}

// TryLock attempts to acquire the lock within timeout. Returns false when
// the deadline expires without the lock being granted.
func (l *MigrationLock) TryLock(timeout time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ok, err := l.fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire migration lock %s: %w", l.fl.Path(), err)
	}
	return ok, nil
}

// Unlock releases the lock.
func (l *MigrationLock) Unlock() error {
	return l.fl.Unlock()
}
