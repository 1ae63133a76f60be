package store

import (
	"context"
	"fmt"
	"time"
)

// Seed populates a fresh database with a minimal fixture: one
// administrator, one customer, a handful of products, and three
// historical orders covering the pending/completed/cancelled states.
//
// Seeding only happens when the users table is empty, so Seed is safe to
// call on every startup; a second call is a no-op.
func (s *Store) Seed(ctx context.Context) error {
	var users int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if users > 0 {
		return nil
	}

	_, err := s.MirrorUser(ctx, User{
		Email: "admin@satchel.app",
		Role:  RoleAdministrator,
		Profile: Profile{
			DisplayName: "Store Administrator",
			Nickname:    "admin",
		},
		Prefs: Preferences{NotificationsEnabled: true},
	}, "admin123")
	if err != nil {
		return fmt.Errorf("seed: admin: %w", err)
	}

	customerID, err := s.MirrorUser(ctx, User{
		Email: "demo@satchel.app",
		Role:  RoleCustomer,
		Profile: Profile{
			DisplayName: "Demo Customer",
			Nickname:    "demo",
			Country:     "US",
		},
		Prefs: Preferences{NotificationsEnabled: true},
	}, "demo123")
	if err != nil {
		return fmt.Errorf("seed: customer: %w", err)
	}

	products := []Product{
		{Title: "Americano", Subtitle: "Double shot", PriceCents: 350, Category: "Coffee", Visible: true},
		{Title: "Flat White", Subtitle: "With oat milk", PriceCents: 450, Category: "Coffee", Visible: true},
		{Title: "Croissant", Subtitle: "Butter", PriceCents: 300, Category: "Bakery", Visible: true},
		{Title: "Club Sandwich", Subtitle: "Chicken", PriceCents: 850, Category: "Food", Visible: true},
		{Title: "Sparkling Water", PriceCents: 250, Visible: true},
	}
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		id, err := s.InsertProduct(ctx, p)
		if err != nil {
			return fmt.Errorf("seed: product %q: %w", p.Title, err)
		}
		ids = append(ids, id)
	}

	day := time.Now()
	historical := []struct {
		id      string
		status  OrderStatus
		daysAgo int
		lines   []OrderLine
	}{
		{"seed-order-completed", OrderCompleted, 21, []OrderLine{
			{ProductID: ids[0], Quantity: 2, PriceAtMoment: 350},
			{ProductID: ids[2], Quantity: 1, PriceAtMoment: 300},
		}},
		{"seed-order-cancelled", OrderCancelled, 14, []OrderLine{
			{ProductID: ids[3], Quantity: 1, PriceAtMoment: 850},
		}},
		{"seed-order-pending", OrderPending, 1, []OrderLine{
			{ProductID: ids[1], Quantity: 1, PriceAtMoment: 450},
			{ProductID: ids[4], Quantity: 2, PriceAtMoment: 250},
		}},
	}
	for _, h := range historical {
		var total int64
		for _, l := range h.lines {
			total += l.PriceAtMoment * l.Quantity
		}
		err := s.InsertOrder(ctx, Order{
			ID:         h.id,
			UserID:     customerID,
			TotalCents: total,
			Status:     h.status,
			Payment:    "seed",
			CreatedAt:  day.AddDate(0, 0, -h.daysAgo).Format(DateLayout),
			Lines:      h.lines,
		})
		if err != nil {
			return fmt.Errorf("seed: order %s: %w", h.id, err)
		}
	}

	return nil
}
