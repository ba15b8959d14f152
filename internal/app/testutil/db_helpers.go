package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vocal-assistant/internal/app/repository"
	"vocal-assistant/internal/app/repository/sqlite"
)

// SetupTestHistory opens a SQLite run history in a temp dir, closed when
// the test ends.
func SetupTestHistory(t *testing.T) *repository.CommonDB {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
