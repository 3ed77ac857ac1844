package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jesforart/traceos-sub000/pkg/database"
)

// newTestDB opens a migrated database in a temp directory.
func newTestDB(t *testing.T) *database.Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traceos_memory.db")
	client, err := database.NewClient(context.Background(), database.Config{
		Path:             path,
		StrictSignatures: true,
	})
	require.NoError(t, err)
	require.NoError(t, client.Migrate(context.Background()))
	t.Cleanup(func() { _ = client.Close() })
	return client
}
