package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/database"
)

// SetupTestDB creates an in-memory SQLite database with all migrations
// applied. The database is automatically closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Open limits the pool to one connection, which keeps the in-memory
	// database alive until Close.
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
