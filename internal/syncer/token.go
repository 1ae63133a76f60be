package syncer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// offlineIssuer marks a token as minted locally rather than by the
// remote service. Offline tokens are never sent upstream; they exist so
// the session layer can treat both session kinds uniformly.
const offlineIssuer = "satchel-offline"

const offlineTokenTTL = 24 * time.Hour

// mintOfflineToken issues a signed local session marker for a user that
// authenticated against the mirrored credential while offline.
func (s *Syncer) mintOfflineToken(userID int64, email, role string) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    offlineIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		Audience:  jwt.ClaimStrings{role},
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(offlineTokenTTL)),
		ID:        email,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing offline session token: %w", err)
	}
	return signed, nil
}

// isOfflineToken reports whether token is a locally minted session
// marker that is still valid under the signing key.
func (s *Syncer) isOfflineToken(token string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(offlineIssuer), jwt.WithTimeFunc(s.now))
	return err == nil && parsed.Valid
}
