package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/memento/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// customerPayload builds a minimal customer decomposition.
func customerPayload(id, name string) ir.IRObject {
	return ir.IRObject{
		"id":   ir.IRString(id),
		"name": ir.IRString(name),
	}
}
