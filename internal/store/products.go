package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const productColumns = `id, title, subtitle, price_cents, description, category, image_ref, visible`

// ProductView is the denormalized, UI-ready shape of a product: the
// effective (promotion-aware) price is resolved and formatted, and the
// base price retained for strikethrough display.
type ProductView struct {
	Product
	EffectiveCents int64
	EffectivePrice string
	BasePrice      string
	OnPromotion    bool
}

// InsertProduct adds a catalog entry and returns its local id.
// An empty category defaults to "General".
func (s *Store) InsertProduct(ctx context.Context, p Product) (int64, error) {
	if p.Category == "" {
		p.Category = "General"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (title, subtitle, price_cents, description, category, image_ref, visible)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.Subtitle, p.PriceCents, p.Description, p.Category, p.ImageRef, boolToInt(p.Visible))
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert product: last insert id: %w", err)
	}
	return id, nil
}

// UpdateProduct replaces all editable fields of a product.
func (s *Store) UpdateProduct(ctx context.Context, p Product) error {
	if p.Category == "" {
		p.Category = "General"
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET title = ?, subtitle = ?, price_cents = ?, description = ?,
			category = ?, image_ref = ?, visible = ?
		WHERE id = ?
	`, p.Title, p.Subtitle, p.PriceCents, p.Description, p.Category, p.ImageRef,
		boolToInt(p.Visible), p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireRowAffected(res, "update product")
}

// MirrorProducts upserts the remote catalog by server id in one
// transaction. Entries absent from the snapshot are left in place so
// historical order lines keep resolving; the remote service signals a
// true removal by sending the product hidden or by an explicit delete.
func (s *Store) MirrorProducts(ctx context.Context, products []Product) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("mirror products: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		if p.Category == "" {
			p.Category = "General"
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, title, subtitle, price_cents, description, category, image_ref, visible)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				subtitle = excluded.subtitle,
				price_cents = excluded.price_cents,
				description = excluded.description,
				category = excluded.category,
				image_ref = excluded.image_ref,
				visible = excluded.visible
		`, p.ID, p.Title, p.Subtitle, p.PriceCents, p.Description, p.Category,
			p.ImageRef, boolToInt(p.Visible))
		if err != nil {
			return fmt.Errorf("mirror products: upsert %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mirror products: commit: %w", err)
	}
	return nil
}

// DeleteProduct removes a product. Products referenced by existing order
// lines are soft-hidden (visible = 0) instead of deleted so historical
// orders keep their foreign keys intact.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("delete product: begin tx: %w", err)
	}
	defer tx.Rollback()

	var refs int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_lines WHERE product_id = ?`, id).Scan(&refs); err != nil {
		return fmt.Errorf("delete product: count references: %w", err)
	}

	if refs > 0 {
		res, err := tx.ExecContext(ctx, `UPDATE products SET visible = 0 WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete product: hide: %w", err)
		}
		if err := requireRowAffected(res, "delete product"); err != nil {
			return err
		}
	} else {
		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if err := requireRowAffected(res, "delete product"); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete product: commit: %w", err)
	}
	return nil
}

// ProductByID returns one product regardless of visibility.
// Returns ErrNotFound if no such product exists.
func (s *Store) ProductByID(ctx context.Context, id int64) (Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// ListProducts returns products ordered by id. When includeHidden is
// false only visible products are returned.
func (s *Store) ListProducts(ctx context.Context, includeHidden bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id ASC`
	if !includeHidden {
		query = `SELECT ` + productColumns + ` FROM products WHERE visible = 1 ORDER BY id ASC`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProductRows(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// ListProductViews returns visible products with effective pricing
// resolved for the given day. This is the listing surface the UI reads.
func (s *Store) ListProductViews(ctx context.Context, day time.Time) ([]ProductView, error) {
	products, err := s.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}

	promos, err := s.promotionsByProduct(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, makeProductView(p, promos[p.ID], day))
	}
	return views, nil
}

// ProductViewByID resolves one product with effective pricing for the day.
func (s *Store) ProductViewByID(ctx context.Context, id int64, day time.Time) (ProductView, error) {
	p, err := s.ProductByID(ctx, id)
	if err != nil {
		return ProductView{}, err
	}
	promo, err := s.PromotionForProduct(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return makeProductView(p, nil, day), nil
	}
	if err != nil {
		return ProductView{}, err
	}
	return makeProductView(p, &promo, day), nil
}

func makeProductView(p Product, promo *Promotion, day time.Time) ProductView {
	effective := EffectivePriceCents(p, promo, day)
	return ProductView{
		Product:        p,
		EffectiveCents: effective,
		EffectivePrice: FormatCents(effective),
		BasePrice:      FormatCents(p.PriceCents),
		OnPromotion:    effective != p.PriceCents,
	}
}

func scanProduct(row *sql.Row) (Product, error) {
	var p Product
	var visible int
	err := row.Scan(&p.ID, &p.Title, &p.Subtitle, &p.PriceCents, &p.Description,
		&p.Category, &p.ImageRef, &visible)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.Visible = visible != 0
	return p, nil
}

func scanProductRows(rows *sql.Rows) (Product, error) {
	var p Product
	var visible int
	err := rows.Scan(&p.ID, &p.Title, &p.Subtitle, &p.PriceCents, &p.Description,
		&p.Category, &p.ImageRef, &visible)
	if err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.Visible = visible != 0
	return p, nil
}
