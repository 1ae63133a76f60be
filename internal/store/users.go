package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail canonicalizes an email for use as the natural key:
// trimmed, lowercased, NFC-normalized. All lookups and writes go through
// this so visually identical addresses never produce distinct rows.
func NormalizeEmail(email string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(email)))
}

const userColumns = `id, email, credential, display_name, nickname, phone, gender,
	country, address, avatar_ref, role, notifications_enabled, camera_enabled, created_at`

// MirrorUser inserts or updates a user row from a successful remote
// login or registration. The plaintext credential is hashed with bcrypt
// before storage; the hash exists solely to allow offline login.
//
// Upsert is keyed on the normalized email (the natural key), so repeated
// remote logins refresh the mirror in place.
func (s *Store) MirrorUser(ctx context.Context, u User, plainCredential string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainCredential), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("mirror user: hash credential: %w", err)
	}

	email := NormalizeEmail(u.Email)
	role := u.Role
	if role == "" {
		role = RoleCustomer
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users
		(email, credential, display_name, nickname, phone, gender, country, address,
		 avatar_ref, role, notifications_enabled, camera_enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			credential = excluded.credential,
			display_name = excluded.display_name,
			nickname = excluded.nickname,
			phone = excluded.phone,
			gender = excluded.gender,
			country = excluded.country,
			address = excluded.address,
			avatar_ref = excluded.avatar_ref,
			role = excluded.role
	`,
		email, string(hash),
		u.Profile.DisplayName, u.Profile.Nickname, u.Profile.Phone, u.Profile.Gender,
		u.Profile.Country, u.Profile.Address, u.Profile.AvatarRef,
		string(role), boolToInt(u.Prefs.NotificationsEnabled), boolToInt(u.Prefs.CameraEnabled),
	)
	if err != nil {
		return 0, fmt.Errorf("mirror user: %w", err)
	}

	// On conflict LastInsertId is not reliable; resolve by email.
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		if mirrored, lookupErr := s.UserByEmail(ctx, email); lookupErr == nil {
			return mirrored.ID, nil
		}
		return id, nil
	}
	mirrored, err := s.UserByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("mirror user: resolve id: %w", err)
	}
	return mirrored.ID, nil
}

// UserByEmail looks up a user by normalized email.
// Returns ErrNotFound if no such user exists.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, NormalizeEmail(email))
	return scanUser(row)
}

// UserByID looks up a user by local id.
// Returns ErrNotFound if no such user exists.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// VerifyCredential compares a plaintext password against the stored
// bcrypt hash for the given email. Returns the user and true on match,
// the zero User and false on mismatch, and ErrNotFound when no local
// mirror exists for the email.
func (s *Store) VerifyCredential(ctx context.Context, email, plain string) (User, bool, error) {
	u, err := s.UserByEmail(ctx, email)
	if err != nil {
		return User{}, false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Credential), []byte(plain)) != nil {
		return User{}, false, nil
	}
	return u, true, nil
}

// UpdateProfile replaces the editable profile fields of a user.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, p Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET display_name = ?, nickname = ?, phone = ?, gender = ?,
			country = ?, address = ?, avatar_ref = ?
		WHERE id = ?
	`, p.DisplayName, p.Nickname, p.Phone, p.Gender, p.Country, p.Address, p.AvatarRef, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRowAffected(res, "update profile")
}

// SetPreferences stores the local notification/camera toggles.
func (s *Store) SetPreferences(ctx context.Context, userID int64, prefs Preferences) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET notifications_enabled = ?, camera_enabled = ?
		WHERE id = ?
	`, boolToInt(prefs.NotificationsEnabled), boolToInt(prefs.CameraEnabled), userID)
	if err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return requireRowAffected(res, "set preferences")
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	var role string
	var notif, camera int
	var created string
	err := row.Scan(
		&u.ID, &u.Email, &u.Credential,
		&u.Profile.DisplayName, &u.Profile.Nickname, &u.Profile.Phone, &u.Profile.Gender,
		&u.Profile.Country, &u.Profile.Address, &u.Profile.AvatarRef,
		&role, &notif, &camera, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = Role(role)
	u.Prefs.NotificationsEnabled = notif != 0
	u.Prefs.CameraEnabled = camera != 0
	if t, err := time.Parse("2006-01-02 15:04:05", created); err == nil {
		u.CreatedAt = t
	}
	return u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// requireRowAffected converts a zero-row UPDATE into ErrNotFound so
// callers can distinguish "no such row" from success.
func requireRowAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
