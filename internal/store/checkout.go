package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CommitCheckout atomically converts a priced cart into an order. The
// caller prices the cart with PricedCart and, when mirroring a
// server-accepted order, passes exactly the lines it submitted upstream;
// the commit freezes those prices as-is instead of re-reading
// promotions, which may have changed since the cart was priced.
//
// Within a single transaction it:
//  1. Inserts an Order row in pending status with the cart's total.
//  2. Inserts one OrderLine per cart line with price_at_moment frozen to
//     the line's unit price.
//  3. Deletes all cart lines for the user.
//
// Returns ErrEmptyCart when the priced cart has no lines. If orderID is
// empty a new UUID is generated; callers mirroring a server-created
// order pass the server's id instead. Any failure rolls the whole
// transaction back, leaving the cart untouched and no order rows behind.
func (s *Store) CommitCheckout(ctx context.Context, userID int64, payment, orderID string, day time.Time, cart CartView) (Order, error) {
	if len(cart.Lines) == 0 {
		return Order{}, ErrEmptyCart
	}
	if orderID == "" {
		orderID = uuid.NewString()
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("checkout: begin tx: %w", err)
	}
	defer tx.Rollback()

	createdAt := day.Format(DateLayout)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_cents, status, payment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, orderID, userID, cart.TotalCents, string(OrderPending), payment, createdAt); err != nil {
		return Order{}, fmt.Errorf("checkout: insert order: %w", err)
	}

	order := Order{
		ID:         orderID,
		UserID:     userID,
		TotalCents: cart.TotalCents,
		Status:     OrderPending,
		Payment:    payment,
		CreatedAt:  createdAt,
	}
	for _, l := range cart.Lines {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, price_at_moment)
			VALUES (?, ?, ?, ?)
		`, orderID, l.ProductID, l.Quantity, l.UnitCents)
		if err != nil {
			return Order{}, fmt.Errorf("checkout: insert order line: %w", err)
		}
		lineID, err := res.LastInsertId()
		if err != nil {
			return Order{}, fmt.Errorf("checkout: order line id: %w", err)
		}
		order.Lines = append(order.Lines, OrderLine{
			ID:            lineID,
			OrderID:       orderID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			PriceAtMoment: l.UnitCents,
		})
	}

	// The cart empties only in the same transaction that created the
	// order, so a crash can never destroy purchase intent.
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, userID); err != nil {
		return Order{}, fmt.Errorf("checkout: clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("checkout: commit: %w", err)
	}

	return order, nil
}
