package store

import (
	"context"
	"fmt"
	"time"
)

// CartLineView is the denormalized cart read shape: product details plus
// the effective unit price resolved for the requested day.
type CartLineView struct {
	CartLine
	Title     string
	ImageRef  string
	UnitCents int64
	UnitPrice string
	LineCents int64
	LinePrice string
}

// CartView is the whole priced cart.
type CartView struct {
	Lines      []CartLineView
	TotalCents int64
	Total      string
}

// AddToCart adds quantity of a product to the user's cart. If a line for
// (user, product) already exists its quantity is incremented, never
// duplicated - the UNIQUE constraint plus ON CONFLICT DO UPDATE makes
// this atomic.
func (s *Store) AddToCart(ctx context.Context, userID, productID, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("add to cart: quantity must be >= 1, got %d", qty)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_lines (user_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, product_id) DO UPDATE SET
			quantity = quantity + excluded.quantity
	`, userID, productID, qty)
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

// SetCartQuantity replaces the quantity of an existing cart line.
// Returns ErrNotFound when no line exists for (user, product).
func (s *Store) SetCartQuantity(ctx context.Context, userID, productID, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("set cart quantity: quantity must be >= 1, got %d", qty)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE cart_lines SET quantity = ?
		WHERE user_id = ? AND product_id = ?
	`, qty, userID, productID)
	if err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return requireRowAffected(res, "set cart quantity")
}

// RemoveFromCart deletes the cart line for (user, product).
// Returns ErrNotFound when no such line exists.
func (s *Store) RemoveFromCart(ctx context.Context, userID, productID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_lines WHERE user_id = ? AND product_id = ?
	`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	return requireRowAffected(res, "remove from cart")
}

// ClearCart removes every cart line for the user. Clearing an already
// empty cart is a no-op, not an error.
func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// CartLineCount returns the number of distinct cart lines for the user.
// This is the authoritative count the session state re-derives after
// every cart mutation.
func (s *Store) CartLineCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cart_lines WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("cart line count: %w", err)
	}
	return count, nil
}

// CartLines returns the raw cart lines for a user ordered by insertion.
func (s *Store) CartLines(ctx context.Context, userID int64) ([]CartLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, quantity
		FROM cart_lines WHERE user_id = ? ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("cart lines: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	if lines == nil {
		lines = []CartLine{}
	}
	return lines, nil
}

// PricedCart returns the user's cart with effective unit prices resolved
// for the given day, per-line totals, and the cart total. Checkout uses
// the same pricing rule, so the total shown here is the total charged.
func (s *Store) PricedCart(ctx context.Context, userID int64, day time.Time) (CartView, error) {
	lines, err := s.CartLines(ctx, userID)
	if err != nil {
		return CartView{}, err
	}

	promos, err := s.promotionsByProduct(ctx)
	if err != nil {
		return CartView{}, err
	}

	view := CartView{Lines: make([]CartLineView, 0, len(lines))}
	for _, l := range lines {
		p, err := s.ProductByID(ctx, l.ProductID)
		if err != nil {
			return CartView{}, fmt.Errorf("priced cart: product %d: %w", l.ProductID, err)
		}
		unit := EffectivePriceCents(p, promos[p.ID], day)
		lineTotal := unit * l.Quantity
		view.Lines = append(view.Lines, CartLineView{
			CartLine:  l,
			Title:     p.Title,
			ImageRef:  p.ImageRef,
			UnitCents: unit,
			UnitPrice: FormatCents(unit),
			LineCents: lineTotal,
			LinePrice: FormatCents(lineTotal),
		})
		view.TotalCents += lineTotal
	}
	view.Total = FormatCents(view.TotalCents)
	return view, nil
}
