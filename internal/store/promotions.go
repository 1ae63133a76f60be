package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertPromotion inserts or updates the promotion for a product.
// The UNIQUE(product_id) constraint plus ON CONFLICT DO UPDATE makes the
// "at most one promotion per product" invariant hold even under
// concurrent upserts for the same product.
//
// The promotion price must be strictly below the product's current base
// price; violations return ErrPromotionPrice.
func (s *Store) UpsertPromotion(ctx context.Context, promo Promotion) error {
	product, err := s.ProductByID(ctx, promo.ProductID)
	if err != nil {
		return fmt.Errorf("upsert promotion: %w", err)
	}
	if promo.PriceCents >= product.PriceCents {
		return ErrPromotionPrice
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO promotions (product_id, price_cents, start_date, end_date, visible)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			price_cents = excluded.price_cents,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			visible = excluded.visible
	`, promo.ProductID, promo.PriceCents, promo.StartDate, promo.EndDate, boolToInt(promo.Visible))
	if err != nil {
		return fmt.Errorf("upsert promotion: %w", err)
	}
	return nil
}

// DeletePromotion removes the promotion attached to a product, if any.
// Deleting a promotion never touches the product row.
func (s *Store) DeletePromotion(ctx context.Context, productID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM promotions WHERE product_id = ?`, productID)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return requireRowAffected(res, "delete promotion")
}

// PromotionForProduct returns the promotion row for a product.
// Returns ErrNotFound when the product has no promotion.
func (s *Store) PromotionForProduct(ctx context.Context, productID int64) (Promotion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, price_cents, start_date, end_date, visible
		FROM promotions WHERE product_id = ?
	`, productID)

	var p Promotion
	var visible int
	err := row.Scan(&p.ID, &p.ProductID, &p.PriceCents, &p.StartDate, &p.EndDate, &visible)
	if errors.Is(err, sql.ErrNoRows) {
		return Promotion{}, ErrNotFound
	}
	if err != nil {
		return Promotion{}, fmt.Errorf("scan promotion: %w", err)
	}
	p.Visible = visible != 0
	return p, nil
}

// ListActivePromotions returns promotions whose window covers the given
// day and which are visible, ordered by product id.
func (s *Store) ListActivePromotions(ctx context.Context, day time.Time) ([]Promotion, error) {
	d := day.Format(DateLayout)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, price_cents, start_date, end_date, visible
		FROM promotions
		WHERE visible = 1 AND start_date <= ? AND end_date >= ?
		ORDER BY product_id ASC
	`, d, d)
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}
	defer rows.Close()

	var promos []Promotion
	for rows.Next() {
		var p Promotion
		var visible int
		if err := rows.Scan(&p.ID, &p.ProductID, &p.PriceCents, &p.StartDate, &p.EndDate, &visible); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		p.Visible = visible != 0
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}
	if promos == nil {
		promos = []Promotion{}
	}
	return promos, nil
}

// promotionsByProduct loads all promotion rows keyed by product id.
// Shared by the listing and cart read paths so pricing stays uniform.
func (s *Store) promotionsByProduct(ctx context.Context) (map[int64]*Promotion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, price_cents, start_date, end_date, visible
		FROM promotions
	`)
	if err != nil {
		return nil, fmt.Errorf("load promotions: %w", err)
	}
	defer rows.Close()

	promos := make(map[int64]*Promotion)
	for rows.Next() {
		var p Promotion
		var visible int
		if err := rows.Scan(&p.ID, &p.ProductID, &p.PriceCents, &p.StartDate, &p.EndDate, &visible); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		p.Visible = visible != 0
		promo := p
		promos[p.ProductID] = &promo
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}
	return promos, nil
}
