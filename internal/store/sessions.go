package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveSession persists the session marker, replacing any existing one.
// A single device owns the local cache, so at most one session row exists.
func (s *Store) SaveSession(ctx context.Context, sess Session) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("save session: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("save session: clear previous: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, kind)
		VALUES (?, ?, ?, ?)
	`, sess.ID, sess.UserID, sess.Token, string(sess.Kind)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save session: commit: %w", err)
	}
	return nil
}

// CurrentSession returns the persisted session marker.
// Returns ErrNotFound when no session is stored (logged out).
func (s *Store) CurrentSession(ctx context.Context) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, kind, created_at
		FROM sessions ORDER BY created_at DESC LIMIT 1
	`)

	var sess Session
	var kind, created string
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Token, &kind, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	sess.Kind = SessionKind(kind)
	if t, err := time.Parse("2006-01-02 15:04:05", created); err == nil {
		sess.CreatedAt = t
	}
	return sess, nil
}

// ClearSessions removes the persisted marker (logout).
func (s *Store) ClearSessions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}
