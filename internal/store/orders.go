package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const orderColumns = `id, user_id, total_cents, status, payment, created_at, delivery_time, notes`

// OrderLineView is an order line joined with its product title for
// display. PriceAtMoment stays the frozen checkout-time price.
type OrderLineView struct {
	OrderLine
	Title     string
	UnitPrice string
	LinePrice string
}

// OrderView is the denormalized order summary the UI reads.
type OrderView struct {
	Order
	Total     string
	LineViews []OrderLineView
}

// InsertOrder writes a complete order (header plus lines) in one
// transaction. Used for mirroring remote order history and for seeding;
// user-driven orders go through Checkout. An order without lines is
// rejected - orders are never created empty.
func (s *Store) InsertOrder(ctx context.Context, o Order) error {
	if len(o.Lines) == 0 {
		return fmt.Errorf("insert order %s: order has no lines", o.ID)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("insert order %s: invalid status %q", o.ID, o.Status)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("insert order: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertOrderTx(ctx, tx, o); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert order: commit: %w", err)
	}
	return nil
}

func insertOrderTx(ctx context.Context, tx *sql.Tx, o Order) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_cents, status, payment, created_at, delivery_time, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, o.TotalCents, string(o.Status), o.Payment, o.CreatedAt, o.DeliveryTime, o.Notes)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}

	for _, l := range o.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, price_at_moment)
			VALUES (?, ?, ?, ?)
		`, o.ID, l.ProductID, l.Quantity, l.PriceAtMoment); err != nil {
			return fmt.Errorf("insert order %s: line for product %d: %w", o.ID, l.ProductID, err)
		}
	}
	return nil
}

// MirrorOrders replaces the user's locally cached order history with the
// authoritative list fetched from the remote service. Replace-all keeps
// the cache honest: remotely deleted orders disappear here too.
func (s *Store) MirrorOrders(ctx context.Context, userID int64, orders []Order) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("mirror orders: begin tx: %w", err)
	}
	defer tx.Rollback()

	// order_lines cascade on order delete
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("mirror orders: clear cache: %w", err)
	}

	for _, o := range orders {
		o.UserID = userID
		if len(o.Lines) == 0 {
			return fmt.Errorf("mirror orders: order %s has no lines", o.ID)
		}
		if err := insertOrderTx(ctx, tx, o); err != nil {
			return fmt.Errorf("mirror orders: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mirror orders: commit: %w", err)
	}
	return nil
}

// OrderByID returns one order with its lines.
// Returns ErrNotFound if no such order exists.
func (s *Store) OrderByID(ctx context.Context, id string) (Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err != nil {
		return Order{}, err
	}

	lines, err := s.orderLines(ctx, id)
	if err != nil {
		return Order{}, err
	}
	o.Lines = lines
	return o, nil
}

// ListOrdersForUser returns the user's orders newest-first, each with its
// lines loaded.
func (s *Store) ListOrdersForUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.collectOrders(ctx, rows)
}

// ListAllOrders returns every order, newest-first. Administrator surface.
func (s *Store) ListAllOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return s.collectOrders(ctx, rows)
}

// UpdateOrderStatus moves an order to a new status. Transitions out of a
// terminal status (completed, cancelled) are refused with
// ErrTerminalStatus; only annotations may change after that.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("update order status: invalid status %q", status)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("update order status: begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = ?`, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update order status: read current: %w", err)
	}

	if OrderStatus(current).Terminal() {
		return ErrTerminalStatus
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update order status: commit: %w", err)
	}
	return nil
}

// AnnotateOrder updates the free-text delivery-time and history notes.
// Allowed in any status, including terminal ones.
func (s *Store) AnnotateOrder(ctx context.Context, orderID, deliveryTime, notes string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET delivery_time = ?, notes = ? WHERE id = ?
	`, deliveryTime, notes, orderID)
	if err != nil {
		return fmt.Errorf("annotate order: %w", err)
	}
	return requireRowAffected(res, "annotate order")
}

// OrderViewByID returns a display-ready order with formatted prices and
// product titles resolved.
func (s *Store) OrderViewByID(ctx context.Context, id string) (OrderView, error) {
	o, err := s.OrderByID(ctx, id)
	if err != nil {
		return OrderView{}, err
	}

	view := OrderView{Order: o, Total: FormatCents(o.TotalCents)}
	for _, l := range o.Lines {
		var title string
		err := s.db.QueryRowContext(ctx,
			`SELECT title FROM products WHERE id = ?`, l.ProductID).Scan(&title)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return OrderView{}, fmt.Errorf("order view: product title: %w", err)
		}
		view.LineViews = append(view.LineViews, OrderLineView{
			OrderLine: l,
			Title:     title,
			UnitPrice: FormatCents(l.PriceAtMoment),
			LinePrice: FormatCents(l.PriceAtMoment * l.Quantity),
		})
	}
	return view, nil
}

func (s *Store) collectOrders(ctx context.Context, rows *sql.Rows) ([]Order, error) {
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		lines, err := s.orderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}

	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (s *Store) orderLines(ctx context.Context, orderID string) ([]OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_moment
		FROM order_lines WHERE order_id = ? ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order lines: %w", err)
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.PriceAtMoment); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	if lines == nil {
		lines = []OrderLine{}
	}
	return lines, nil
}

func scanOrder(row *sql.Row) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.TotalCents, &status, &o.Payment,
		&o.CreatedAt, &o.DeliveryTime, &o.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	o.Status = OrderStatus(status)
	return o, nil
}

func scanOrderRows(rows *sql.Rows) (Order, error) {
	var o Order
	var status string
	err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &status, &o.Payment,
		&o.CreatedAt, &o.DeliveryTime, &o.Notes)
	if err != nil {
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	o.Status = OrderStatus(status)
	return o, nil
}
