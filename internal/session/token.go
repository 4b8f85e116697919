package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ownidp/pkg/domainerrors"
)

// TokenCodec signs and verifies the browser-held session token. The token
// carries only the session ID; all state stays server-side.
type TokenCodec struct {
	key []byte
}

func NewTokenCodec(key []byte) *TokenCodec {
	return &TokenCodec{key: key}
}

// Issue creates a signed token for the session.
func (c *TokenCodec) Issue(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return token, nil
}

// Verify validates the token signature and expiry and returns the session ID.
func (c *TokenCodec) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.key, nil
	})
	if err != nil {
		return "", domainerrors.Wrap(domainerrors.CodeUnauthorized, "invalid session token", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", domainerrors.New(domainerrors.CodeUnauthorized, "session token missing subject")
	}
	return claims.Subject, nil
}
