package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".db.migration.lock")

	first := NewMigrationLock(path)
	require.NoError(t, first.Lock(context.Background()))
	defer first.Unlock()

	// flock is per-file-description: a second Flock handle on the same path
	// within this process still contends, which is what TryLock bounds.
	second := NewMigrationLock(path)
	ok, err := second.TryLock(200 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire while first holds")

	require.NoError(t, first.Unlock())

	ok, err = second.TryLock(time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Unlock())
}

func TestMigrationLock_BlockingLockWaits(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".db.migration.lock")

	first := NewMigrationLock(path)
	require.NoError(t, first.Lock(context.Background()))

	released := make(chan struct{})
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = first.Unlock()
		close(released)
	}()

	second := NewMigrationLock(path)
	start := time.Now()
	require.NoError(t, second.Lock(context.Background()))
	defer second.Unlock()

	<-released
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
