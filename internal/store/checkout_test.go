package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// priceAndCommit mimics the reconciliation layer: price the cart, then
// commit exactly those lines.
func priceAndCommit(t *testing.T, s *Store, userID int64, orderID string, d time.Time) (Order, error) {
	t.Helper()
	cart, err := s.PricedCart(context.Background(), userID, d)
	if err != nil {
		t.Fatalf("PricedCart() failed: %v", err)
	}
	return s.CommitCheckout(context.Background(), userID, "card", orderID, d, cart)
}

func TestCommitCheckout_EmptyCart(t *testing.T) {
	s := createTestStore(t)
	userID := createTestUser(t, s, "shopper@example.com")

	_, err := priceAndCommit(t, s, userID, "", day(t, "2026-03-15"))
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	var orders int
	s.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&orders)
	if orders != 0 {
		t.Errorf("empty-cart checkout created %d orders", orders)
	}
}

// Scenario from the product walkthrough: add product A (price $100)
// twice with quantities 1 then 2, then check out.
func TestCommitCheckout_MergedLineScenario(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")
	productID := createTestProduct(t, s, "Product A", 10000)

	if err := s.AddToCart(ctx, userID, productID, 1); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}
	if err := s.AddToCart(ctx, userID, productID, 2); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}

	lines, _ := s.CartLines(ctx, userID)
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line of qty 3, got %+v", lines)
	}

	order, err := priceAndCommit(t, s, userID, "", day(t, "2026-03-15"))
	if err != nil {
		t.Fatalf("CommitCheckout() failed: %v", err)
	}

	if order.TotalCents != 30000 {
		t.Errorf("order total = %d, want 30000", order.TotalCents)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("expected 1 order line, got %d", len(order.Lines))
	}
	if order.Lines[0].Quantity != 3 || order.Lines[0].PriceAtMoment != 10000 {
		t.Errorf("order line = %+v, want qty 3 at 10000", order.Lines[0])
	}
	if order.Status != OrderPending {
		t.Errorf("order status = %s, want pending", order.Status)
	}

	count, _ := s.CartLineCount(ctx, userID)
	if count != 0 {
		t.Errorf("cart should be empty after checkout, got %d lines", count)
	}
}

func TestCommitCheckout_UsesEffectivePriceAndFreezesIt(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")
	coffee := createTestProduct(t, s, "Americano", 500)
	pastry := createTestProduct(t, s, "Croissant", 300)

	// Promotion active on checkout day.
	if err := s.UpsertPromotion(ctx, Promotion{ProductID: coffee, PriceCents: 400,
		StartDate: "2026-03-01", EndDate: "2026-03-31", Visible: true}); err != nil {
		t.Fatalf("UpsertPromotion() failed: %v", err)
	}

	if err := s.AddToCart(ctx, userID, coffee, 1); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}
	if err := s.AddToCart(ctx, userID, pastry, 2); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}

	order, err := priceAndCommit(t, s, userID, "", day(t, "2026-03-15"))
	if err != nil {
		t.Fatalf("CommitCheckout() failed: %v", err)
	}

	if order.TotalCents != 400+2*300 {
		t.Errorf("total = %d, want %d (promotional price applied)", order.TotalCents, 400+2*300)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(order.Lines))
	}

	// Later price and promotion edits must not leak into the order.
	if err := s.UpdateProduct(ctx, Product{ID: coffee, Title: "Americano",
		PriceCents: 9900, Visible: true}); err != nil {
		t.Fatalf("UpdateProduct() failed: %v", err)
	}
	if err := s.DeletePromotion(ctx, coffee); err != nil {
		t.Fatalf("DeletePromotion() failed: %v", err)
	}

	reread, err := s.OrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("OrderByID() failed: %v", err)
	}
	if reread.Lines[0].PriceAtMoment != 400 {
		t.Errorf("frozen price changed to %d after product edit", reread.Lines[0].PriceAtMoment)
	}
	if reread.TotalCents != 1000 {
		t.Errorf("order total changed to %d after product edit", reread.TotalCents)
	}
}

// A promotion landing between pricing and commit must not leak into the
// committed order: the commit freezes the lines it was handed, not the
// promotion table's current state.
func TestCommitCheckout_IgnoresEditsAfterPricing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	d := day(t, "2026-03-15")
	userID := createTestUser(t, s, "shopper@example.com")
	productID := createTestProduct(t, s, "Americano", 350)

	if err := s.AddToCart(ctx, userID, productID, 2); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}
	cart, err := s.PricedCart(ctx, userID, d)
	if err != nil {
		t.Fatalf("PricedCart() failed: %v", err)
	}

	// Cheaper promotion appears after the cart was priced.
	if err := s.UpsertPromotion(ctx, Promotion{ProductID: productID, PriceCents: 100,
		StartDate: "2026-03-01", EndDate: "2026-03-31", Visible: true}); err != nil {
		t.Fatalf("UpsertPromotion() failed: %v", err)
	}

	order, err := s.CommitCheckout(ctx, userID, "card", "", d, cart)
	if err != nil {
		t.Fatalf("CommitCheckout() failed: %v", err)
	}
	if order.TotalCents != 700 {
		t.Errorf("total = %d, want 700 (the priced total, not the new promotion)", order.TotalCents)
	}
	if order.Lines[0].PriceAtMoment != 350 {
		t.Errorf("frozen price = %d, want 350", order.Lines[0].PriceAtMoment)
	}
}

func TestCommitCheckout_MirrorsServerOrderID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")
	productID := createTestProduct(t, s, "Americano", 350)

	if err := s.AddToCart(ctx, userID, productID, 1); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}

	order, err := priceAndCommit(t, s, userID, "srv-order-42", day(t, "2026-03-15"))
	if err != nil {
		t.Fatalf("CommitCheckout() failed: %v", err)
	}
	if order.ID != "srv-order-42" {
		t.Errorf("order id = %q, want server-issued id", order.ID)
	}
}

func TestCommitCheckout_GeneratesIDWhenUnspecified(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")
	productID := createTestProduct(t, s, "Americano", 350)

	if err := s.AddToCart(ctx, userID, productID, 1); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}

	order, err := priceAndCommit(t, s, userID, "", day(t, "2026-03-15"))
	if err != nil {
		t.Fatalf("CommitCheckout() failed: %v", err)
	}
	if order.ID == "" {
		t.Error("expected a generated order id")
	}
}
