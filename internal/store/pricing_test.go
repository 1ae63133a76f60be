package store

import (
	"context"
	"testing"
)

func TestEffectivePrice_PromotionBeatsBaseInsideWindow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	productID := createTestProduct(t, s, "Latte", 500)
	err := s.UpsertPromotion(ctx, Promotion{
		ProductID:  productID,
		PriceCents: 400,
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
		Visible:    true,
	})
	if err != nil {
		t.Fatalf("UpsertPromotion() failed: %v", err)
	}

	view, err := s.ProductViewByID(ctx, productID, day(t, "2026-03-15"))
	if err != nil {
		t.Fatalf("ProductViewByID() failed: %v", err)
	}

	if view.EffectiveCents != 400 {
		t.Errorf("effective price inside window = %d, want 400", view.EffectiveCents)
	}
	if view.EffectiveCents >= view.PriceCents {
		t.Error("active promotion must be strictly below base price")
	}
	if !view.OnPromotion {
		t.Error("OnPromotion should be true inside the window")
	}
}

func TestEffectivePrice_WindowEdgesInclusive(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	productID := createTestProduct(t, s, "Latte", 500)
	if err := s.UpsertPromotion(ctx, Promotion{
		ProductID:  productID,
		PriceCents: 400,
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
		Visible:    true,
	}); err != nil {
		t.Fatalf("UpsertPromotion() failed: %v", err)
	}

	cases := []struct {
		day  string
		want int64
	}{
		{"2026-02-28", 500}, // before window
		{"2026-03-01", 400}, // first day, inclusive
		{"2026-03-31", 400}, // last day, inclusive
		{"2026-04-01", 500}, // after window
	}
	for _, tc := range cases {
		view, err := s.ProductViewByID(ctx, productID, day(t, tc.day))
		if err != nil {
			t.Fatalf("ProductViewByID(%s) failed: %v", tc.day, err)
		}
		if view.EffectiveCents != tc.want {
			t.Errorf("effective price on %s = %d, want %d", tc.day, view.EffectiveCents, tc.want)
		}
	}
}

func TestEffectivePrice_HiddenPromotionIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	productID := createTestProduct(t, s, "Latte", 500)
	if err := s.UpsertPromotion(ctx, Promotion{
		ProductID:  productID,
		PriceCents: 400,
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
		Visible:    false,
	}); err != nil {
		t.Fatalf("UpsertPromotion() failed: %v", err)
	}

	view, err := s.ProductViewByID(ctx, productID, day(t, "2026-03-15"))
	if err != nil {
		t.Fatalf("ProductViewByID() failed: %v", err)
	}
	if view.EffectiveCents != 500 {
		t.Errorf("hidden promotion applied: effective = %d, want 500", view.EffectiveCents)
	}
}

func TestEffectivePrice_SameRuleInListingAndCart(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "shopper@example.com")

	productID := createTestProduct(t, s, "Latte", 500)
	if err := s.UpsertPromotion(ctx, Promotion{
		ProductID:  productID,
		PriceCents: 400,
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
		Visible:    true,
	}); err != nil {
		t.Fatalf("UpsertPromotion() failed: %v", err)
	}
	if err := s.AddToCart(ctx, userID, productID, 2); err != nil {
		t.Fatalf("AddToCart() failed: %v", err)
	}

	d := day(t, "2026-03-15")
	listing, err := s.ListProductViews(ctx, d)
	if err != nil {
		t.Fatalf("ListProductViews() failed: %v", err)
	}
	cart, err := s.PricedCart(ctx, userID, d)
	if err != nil {
		t.Fatalf("PricedCart() failed: %v", err)
	}

	if listing[0].EffectiveCents != cart.Lines[0].UnitCents {
		t.Errorf("listing price %d != cart unit price %d",
			listing[0].EffectiveCents, cart.Lines[0].UnitCents)
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{350, "$3.50"},
		{123450, "$1,234.50"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.cents); got != tc.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
