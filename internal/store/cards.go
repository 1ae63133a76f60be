package store

import (
	"context"
	"fmt"
)

// ReplaceCards swaps the user's cached card list for the authoritative
// one fetched from the remote service. The cache is read-through only:
// rows here are never a write source of truth, so the whole set is
// replaced in one transaction on every refresh.
func (s *Store) ReplaceCards(ctx context.Context, userID int64, cards []Card) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("replace cards: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("replace cards: clear cache: %w", err)
	}

	for _, c := range cards {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cards (id, user_id, last4, holder, expiry, brand)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ID, userID, c.Last4, c.Holder, c.Expiry, c.Brand); err != nil {
			return fmt.Errorf("replace cards: insert %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace cards: commit: %w", err)
	}
	return nil
}

// ListCards returns the cached card list for a user.
func (s *Store) ListCards(ctx context.Context, userID int64) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, last4, holder, expiry, brand
		FROM cards WHERE user_id = ? ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.Last4, &c.Holder, &c.Expiry, &c.Brand); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	if cards == nil {
		cards = []Card{}
	}
	return cards, nil
}
