package store

import (
	"context"
	"errors"
	"testing"
)

func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")
	productID := createTestProduct(t, s, "Americano", 350)

	if err := s.AddToCart(ctx, userID, productID, 2); err != nil {
		t.Fatalf("first AddToCart() failed: %v", err)
	}
	if err := s.AddToCart(ctx, userID, productID, 3); err != nil {
		t.Fatalf("second AddToCart() failed: %v", err)
	}

	lines, err := s.CartLines(ctx, userID)
	if err != nil {
		t.Fatalf("CartLines() failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", lines[0].Quantity)
	}

	count, err := s.CartLineCount(ctx, userID)
	if err != nil {
		t.Fatalf("CartLineCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestAddToCart_RejectsZeroQuantity(t *testing.T) {
	s := createTestStore(t)
	userID := createTestUser(t, s, "shopper@example.com")
	productID := createTestProduct(t, s, "Americano", 350)

	if err := s.AddToCart(context.Background(), userID, productID, 0); err == nil {
		t.Error("expected error for zero quantity, got nil")
	}
}

func TestSetCartQuantity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")
	productID := createTestProduct(t, s, "Americano", 350)

	if err := s.AddToCart(ctx, userID, productID, 2); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}
	if err := s.SetCartQuantity(ctx, userID, productID, 7); err != nil {
		t.Fatalf("SetCartQuantity() failed: %v", err)
	}

	lines, _ := s.CartLines(ctx, userID)
	if lines[0].Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", lines[0].Quantity)
	}

	// Missing line is reported, not silently inserted.
	other := createTestProduct(t, s, "Croissant", 300)
	err := s.SetCartQuantity(ctx, userID, other, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absent line, got %v", err)
	}
}

func TestRemoveFromCart(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")
	productID := createTestProduct(t, s, "Americano", 350)

	if err := s.AddToCart(ctx, userID, productID, 1); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}
	if err := s.RemoveFromCart(ctx, userID, productID); err != nil {
		t.Fatalf("RemoveFromCart() failed: %v", err)
	}

	count, _ := s.CartLineCount(ctx, userID)
	if count != 0 {
		t.Errorf("expected empty cart, got %d lines", count)
	}

	if err := s.RemoveFromCart(ctx, userID, productID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestCartIsPerUser(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")
	bob := createTestUser(t, s, "bob@example.com")
	productID := createTestProduct(t, s, "Americano", 350)

	if err := s.AddToCart(ctx, alice, productID, 2); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}

	bobCount, _ := s.CartLineCount(ctx, bob)
	if bobCount != 0 {
		t.Errorf("bob's cart should be empty, got %d lines", bobCount)
	}
}

func TestPricedCart_Totals(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")
	coffee := createTestProduct(t, s, "Americano", 350)
	pastry := createTestProduct(t, s, "Croissant", 300)

	if err := s.AddToCart(ctx, userID, coffee, 2); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}
	if err := s.AddToCart(ctx, userID, pastry, 1); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}

	view, err := s.PricedCart(ctx, userID, day(t, "2026-03-15"))
	if err != nil {
		t.Fatalf("PricedCart() failed: %v", err)
	}
	if len(view.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(view.Lines))
	}
	if view.TotalCents != 2*350+300 {
		t.Errorf("total = %d, want %d", view.TotalCents, 2*350+300)
	}
	if view.Total != "$10.00" {
		t.Errorf("formatted total = %q, want $10.00", view.Total)
	}
}
