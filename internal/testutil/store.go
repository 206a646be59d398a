package testutil

import (
	"testing"

	"nido-go/internal/database"
	"nido-go/internal/nido"
)

// NewTestStore creates a new in-memory SQLite store migrated to the latest
// schema. The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) nido.Store {
	t.Helper()

	store, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
