package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"users", "products", "promotions", "orders", "order_lines", "cart_lines", "cards", "sessions"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Errorf("journal_mode: %v", err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Errorf("foreign_keys: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	var users, products, orders int
	s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users)
	s.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&products)
	s.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&orders)

	if users != 2 {
		t.Errorf("expected 2 seeded users, got %d", users)
	}
	if products == 0 {
		t.Error("expected seeded products")
	}
	if orders != 3 {
		t.Errorf("expected 3 seeded orders, got %d", orders)
	}

	// Second seed is a no-op.
	if err := s.Seed(ctx); err != nil {
		t.Fatalf("second Seed() failed: %v", err)
	}
	var usersAfter int
	s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&usersAfter)
	if usersAfter != users {
		t.Errorf("second seed changed user count: %d -> %d", users, usersAfter)
	}
}

func TestSeed_OrdersNeverEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	orders, err := s.ListAllOrders(ctx)
	if err != nil {
		t.Fatalf("ListAllOrders() failed: %v", err)
	}
	for _, o := range orders {
		if len(o.Lines) == 0 {
			t.Errorf("seeded order %s has no lines", o.ID)
		}
	}
}
