package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new temp-file store for testing.
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

// createTestUser mirrors a user and returns its id.
func createTestUser(t *testing.T, s *Store, email string) int64 {
	t.Helper()
	id, err := s.MirrorUser(context.Background(), User{
		Email:   email,
		Role:    RoleCustomer,
		Profile: Profile{DisplayName: "Test User"},
	}, "password")
	if err != nil {
		t.Fatalf("MirrorUser() failed: %v", err)
	}
	return id
}

// createTestProduct inserts a visible product and returns its id.
func createTestProduct(t *testing.T, s *Store, title string, priceCents int64) int64 {
	t.Helper()
	id, err := s.InsertProduct(context.Background(), Product{
		Title:      title,
		PriceCents: priceCents,
		Visible:    true,
	})
	if err != nil {
		t.Fatalf("InsertProduct() failed: %v", err)
	}
	return id
}

// day returns a fixed reference day for pricing tests.
func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return d
}
