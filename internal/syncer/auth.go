package syncer

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satchel-app/satchel/internal/metrics"
	"github.com/satchel-app/satchel/internal/remote"
	"github.com/satchel-app/satchel/internal/store"
)

// Login authenticates a user. With connectivity it authenticates against
// the remote service and refreshes the local mirror (identity, profile,
// bcrypt-hashed credential). Without connectivity - or when the remote
// call fails at the transport level - it falls back to the mirrored
// credential and issues a synthetic offline session marker.
//
// A well-formed remote rejection (wrong password, disabled account)
// surfaces immediately and never consults the mirror: the service has
// spoken, and the mirror must not overrule it.
func (s *Syncer) Login(ctx context.Context, email, password string) (Identity, error) {
	op := OpLogin
	email = store.NormalizeEmail(email)

	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return Identity{}, err
	}
	if useRemote {
		resp, err := s.client.Login(ctx, email, password)
		metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
		switch {
		case err == nil:
			return s.adoptRemoteSession(ctx, op, resp, password)
		case remote.IsNetworkError(err):
			s.log.Warn("remote login unreachable, consulting local mirror",
				zap.String("email", email), zap.Error(err))
			metrics.OfflineFallbacks.WithLabelValues(string(op)).Inc()
		default:
			var apiErr *remote.APIError
			if errors.As(err, &apiErr) &&
				(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
				return Identity{}, opErr(CodeInvalidCredentials, string(op), err)
			}
			return Identity{}, remoteErr(op, err)
		}
	} else {
		metrics.OfflineFallbacks.WithLabelValues(string(op)).Inc()
	}

	return s.offlineLogin(ctx, op, email, password)
}

// Register creates an account on the remote service and mirrors it
// locally. Account creation is server-owned, so there is no offline
// path: without connectivity the attempt fails with the cart and mirror
// untouched.
func (s *Syncer) Register(ctx context.Context, profile store.Profile, email, password string) (Identity, error) {
	op := OpRegister
	email = store.NormalizeEmail(email)

	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return Identity{}, err
	}
	if !useRemote {
		return Identity{}, opErrMsg(CodeNetworkUnavailable, string(op), "no connectivity")
	}

	payload := payloadFromProfile(email, profile, store.Preferences{NotificationsEnabled: true})
	resp, err := s.client.Register(ctx, payload, password)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return Identity{}, remoteErr(op, err)
	}
	return s.adoptRemoteSession(ctx, op, resp, password)
}

// adoptRemoteSession mirrors a successful auth response and persists the
// server-issued session.
func (s *Syncer) adoptRemoteSession(ctx context.Context, op Op, resp remote.AuthResponse, password string) (Identity, error) {
	u := userFromPayload(resp.User)
	id, err := s.store.MirrorUser(ctx, u, password)
	if err != nil {
		return Identity{}, localErr(op, err)
	}
	sess := store.Session{
		ID:     uuid.NewString(),
		UserID: id,
		Token:  resp.Token,
		Kind:   store.SessionOnline,
	}
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return Identity{}, localErr(op, err)
	}
	s.client.SetToken(resp.Token)

	s.log.Info("authenticated online",
		zap.Int64("user_id", id), zap.String("role", string(u.Role)))
	return Identity{
		UserID:      id,
		Email:       u.Email,
		DisplayName: u.Profile.DisplayName,
		Role:        u.Role,
		Token:       resp.Token,
	}, nil
}

// offlineLogin verifies credentials against the local mirror. A user
// that never logged in online on this device has no mirror row, so the
// attempt fails with invalid credentials rather than a network error:
// the caller already exhausted the remote path.
func (s *Syncer) offlineLogin(ctx context.Context, op Op, email, password string) (Identity, error) {
	u, ok, err := s.store.VerifyCredential(ctx, email, password)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, opErrMsg(CodeInvalidCredentials, string(op), "no local account for "+email)
	}
	if err != nil {
		return Identity{}, localErr(op, err)
	}
	if !ok {
		return Identity{}, opErrMsg(CodeInvalidCredentials, string(op), "credential mismatch")
	}

	token, err := s.mintOfflineToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return Identity{}, localErr(op, err)
	}
	sess := store.Session{
		ID:     uuid.NewString(),
		UserID: u.ID,
		Token:  token,
		Kind:   store.SessionOffline,
	}
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return Identity{}, localErr(op, err)
	}
	// Offline markers are never sent upstream.
	s.client.ClearToken()

	s.log.Info("authenticated offline against local mirror", zap.Int64("user_id", u.ID))
	return Identity{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.Profile.DisplayName,
		Role:        u.Role,
		Token:       token,
		Offline:     true,
	}, nil
}

// Resume restores the identity from the persisted session marker, if
// any. An expired or tampered offline marker is discarded. The second
// return value reports whether a usable session existed.
func (s *Syncer) Resume(ctx context.Context) (Identity, bool, error) {
	sess, err := s.store.CurrentSession(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, localErr(OpLogin, err)
	}

	u, err := s.store.UserByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		// Session points at a user the mirror no longer has.
		if clearErr := s.store.ClearSessions(ctx); clearErr != nil {
			return Identity{}, false, localErr(OpLogin, clearErr)
		}
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, localErr(OpLogin, err)
	}

	offline := sess.Kind == store.SessionOffline
	if offline && !s.isOfflineToken(sess.Token) {
		s.log.Info("discarding expired offline session", zap.Int64("user_id", u.ID))
		if err := s.store.ClearSessions(ctx); err != nil {
			return Identity{}, false, localErr(OpLogin, err)
		}
		return Identity{}, false, nil
	}
	if !offline {
		s.client.SetToken(sess.Token)
	}

	return Identity{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.Profile.DisplayName,
		Role:        u.Role,
		Token:       sess.Token,
		Offline:     offline,
	}, true, nil
}

// Logout clears the persisted session and the client token. Purely
// local; the cart and mirrored data survive for the next login.
func (s *Syncer) Logout(ctx context.Context) error {
	s.client.ClearToken()
	if err := s.store.ClearSessions(ctx); err != nil {
		return localErr(OpLogin, err)
	}
	return nil
}

// UpdateProfile pushes profile edits to the remote service and mirrors
// the accepted result. The profile is server-owned, so there is no
// offline path.
func (s *Syncer) UpdateProfile(ctx context.Context, userID int64, p store.Profile) error {
	op := OpProfileUpdate
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return localErr(op, err)
	}
	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return err
	}
	if !useRemote {
		return opErrMsg(CodeNetworkUnavailable, string(op), "no connectivity")
	}

	accepted, err := s.client.UpdateProfile(ctx, payloadFromProfile(u.Email, p, u.Prefs))
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}
	if err := s.store.UpdateProfile(ctx, userID, userFromPayload(accepted).Profile); err != nil {
		return localErr(op, err)
	}
	return nil
}

// SetPreferences stores the notification/camera toggles locally and
// mirrors them to the remote profile on a best-effort basis: the toggles
// are device-local settings first, so a transport failure is tolerated
// and only a remote rejection aborts the change.
func (s *Syncer) SetPreferences(ctx context.Context, userID int64, prefs store.Preferences) error {
	op := OpPreferences
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return localErr(op, err)
	}

	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return err
	}
	if useRemote {
		_, err := s.client.UpdateProfile(ctx, payloadFromProfile(u.Email, u.Profile, prefs))
		metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
		switch {
		case err == nil:
		case remote.IsNetworkError(err):
			s.log.Warn("preference mirror unreachable, keeping local change", zap.Error(err))
			metrics.OfflineFallbacks.WithLabelValues(string(op)).Inc()
		default:
			return remoteErr(op, err)
		}
	}

	if err := s.store.SetPreferences(ctx, userID, prefs); err != nil {
		return localErr(op, err)
	}
	return nil
}

// RefreshProfile pulls the server's view of the profile and mirrors it.
// Remote-only, like the catalog and order refreshes: without
// connectivity the attempt fails and the local mirror stays as it was.
// The mirrored credential is untouched; only a fresh online login can
// rotate it.
func (s *Syncer) RefreshProfile(ctx context.Context, userID int64) error {
	op := OpProfileRefresh
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.planRemote(ctx, op); err != nil {
		return err
	}

	fetched, err := s.client.GetProfile(ctx)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}

	u := userFromPayload(fetched)
	if err := s.store.UpdateProfile(ctx, userID, u.Profile); err != nil {
		return localErr(op, err)
	}
	if err := s.store.SetPreferences(ctx, userID, u.Prefs); err != nil {
		return localErr(op, err)
	}
	s.log.Info("profile refreshed", zap.Int64("user_id", userID))
	return nil
}

// Profile returns the locally mirrored user record. Callers wanting the
// server's latest view call RefreshProfile first.
func (s *Syncer) Profile(ctx context.Context, userID int64) (store.User, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return store.User{}, localErr(OpProfileUpdate, err)
	}
	return u, nil
}
