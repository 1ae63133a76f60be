package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMirrorUser_UpsertsByEmail(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.MirrorUser(ctx, User{
		Email:   "jo@example.com",
		Profile: Profile{DisplayName: "Jo"},
	}, "secret-one")
	if err != nil {
		t.Fatalf("first MirrorUser() failed: %v", err)
	}

	// Remote login after a profile and password change refreshes the row.
	second, err := s.MirrorUser(ctx, User{
		Email:   "JO@example.com",
		Profile: Profile{DisplayName: "Joanna"},
	}, "secret-two")
	if err != nil {
		t.Fatalf("second MirrorUser() failed: %v", err)
	}
	if first != second {
		t.Errorf("mirror created a second row: %d != %d", first, second)
	}

	var count int
	s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if count != 1 {
		t.Fatalf("expected 1 user row, got %d", count)
	}

	u, err := s.UserByEmail(ctx, "jo@example.com")
	if err != nil {
		t.Fatalf("UserByEmail() failed: %v", err)
	}
	if u.Profile.DisplayName != "Joanna" {
		t.Errorf("profile not refreshed: %q", u.Profile.DisplayName)
	}

	// Old credential no longer matches, new one does.
	if _, ok, _ := s.VerifyCredential(ctx, "jo@example.com", "secret-one"); ok {
		t.Error("stale credential should not verify after refresh")
	}
	if _, ok, _ := s.VerifyCredential(ctx, "jo@example.com", "secret-two"); !ok {
		t.Error("current credential should verify")
	}
}

func TestMirrorUser_StoresHashNotPlaintext(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.MirrorUser(ctx, User{Email: "jo@example.com"}, "hunter2"); err != nil {
		t.Fatalf("MirrorUser() failed: %v", err)
	}

	u, err := s.UserByEmail(ctx, "jo@example.com")
	if err != nil {
		t.Fatalf("UserByEmail() failed: %v", err)
	}
	if strings.Contains(u.Credential, "hunter2") {
		t.Error("credential stored in plaintext")
	}
	if !strings.HasPrefix(u.Credential, "$2") {
		t.Errorf("credential does not look like a bcrypt hash: %q", u.Credential)
	}
}

func TestVerifyCredential_UnknownEmail(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.VerifyCredential(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Jo@Example.COM ", "jo@example.com"},
		{"jo@example.com", "jo@example.com"},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "jo@example.com")

	p := Profile{DisplayName: "Jo", Nickname: "jojo", Phone: "555-0101",
		Country: "US", Address: "1 Main St", AvatarRef: "avatars/jo.png"}
	if err := s.UpdateProfile(ctx, userID, p); err != nil {
		t.Fatalf("UpdateProfile() failed: %v", err)
	}

	u, _ := s.UserByID(ctx, userID)
	if u.Profile != p {
		t.Errorf("profile = %+v, want %+v", u.Profile, p)
	}

	if err := s.UpdateProfile(ctx, 9999, p); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestSetPreferences(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "jo@example.com")

	prefs := Preferences{NotificationsEnabled: false, CameraEnabled: true}
	if err := s.SetPreferences(ctx, userID, prefs); err != nil {
		t.Fatalf("SetPreferences() failed: %v", err)
	}

	u, _ := s.UserByID(ctx, userID)
	if u.Prefs != prefs {
		t.Errorf("preferences = %+v, want %+v", u.Prefs, prefs)
	}
}

func TestSessions_SaveCurrentClear(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "jo@example.com")

	if _, err := s.CurrentSession(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any session, got %v", err)
	}

	if err := s.SaveSession(ctx, Session{ID: "sess-1", UserID: userID,
		Token: "tok-1", Kind: SessionOnline}); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	// A new session replaces the old one (single device).
	if err := s.SaveSession(ctx, Session{ID: "sess-2", UserID: userID,
		Token: "tok-2", Kind: SessionOffline}); err != nil {
		t.Fatalf("second SaveSession() failed: %v", err)
	}

	sess, err := s.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession() failed: %v", err)
	}
	if sess.ID != "sess-2" || sess.Kind != SessionOffline {
		t.Errorf("unexpected current session: %+v", sess)
	}

	var count int
	s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 session row, got %d", count)
	}

	if err := s.ClearSessions(ctx); err != nil {
		t.Fatalf("ClearSessions() failed: %v", err)
	}
	if _, err := s.CurrentSession(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after clear, got %v", err)
	}
}
