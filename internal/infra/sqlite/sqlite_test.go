package sqlite

import "testing"

// newTestDB returns a fresh in-memory database with all migrations
// applied, closed automatically when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
