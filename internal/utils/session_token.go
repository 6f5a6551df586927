package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidSessionToken is returned for tokens that fail signature,
// expiry or shape checks.
var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionToken is the signed value handed to the client.  It only carries
// the opaque session id; identity and role stay on the server.
type SessionToken struct {
	Token string    // serialized JWT
	Exp   time.Time // UTC expiration time
}

// NewSessionToken signs an HS256 JWT whose subject is the session id.
// ttl bounds how long the cookie is accepted; the server-side session has
// its own idle timeout.
func NewSessionToken(secret, sessionID string, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw and returns the session id it carries.
func ParseSessionToken(secret, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// Reject anything that is not HMAC signed.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSessionToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.Subject, nil
}
