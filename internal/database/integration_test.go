package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(""); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tables := []string{"accounts", "profiles", "password_resets", "migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running again must be a no-op
	if err := db.RunMigrations(""); err != nil {
		t.Fatalf("Second RunMigrations() error = %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("migrations recorded = %d, want 1", count)
	}
}

func TestUpsertProfile(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	query := db.Dialect.UpsertProfileQuery()

	if _, err := db.ExecContext(ctx, query, "user-1", `{"points":1}`, time.Now()); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, query, "user-1", `{"points":2}`, time.Now()); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var doc string
	if err := db.QueryRowContext(ctx, "SELECT document FROM profiles WHERE user_id = ?", "user-1").Scan(&doc); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if doc != `{"points":2}` {
		t.Errorf("document = %v, want %v", doc, `{"points":2}`)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	_, err = tx.ExecContext(ctx, "INSERT INTO accounts (id, email, password_hash) VALUES (?, ?, ?)",
		"a-1", "test@example.com", "hashedpass")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	tx2, err := db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}
	_, err = tx2.ExecContext(ctx, "INSERT INTO accounts (id, email, password_hash) VALUES (?, ?, ?)",
		"a-2", "test2@example.com", "hashedpass")
	if err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		t.Fatalf("Failed to count accounts: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 account after rollback, got %d", count)
	}
}
