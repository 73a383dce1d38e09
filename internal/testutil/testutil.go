// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"os"
	"testing"

	"github.com/halden/jotter/internal/store"
)

// TestStore creates a temporary SQLite-backed note store that is
// automatically cleaned up.
func TestStore(t *testing.T) *store.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "jotter-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
