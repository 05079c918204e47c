// Package auth issues, verifies and revokes the signed bearer tokens used by
// the API.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is how long an issued token stays valid.
const Lifetime = time.Hour

var (
	// ErrInvalidToken indicates a malformed token or a bad signature.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked indicates a token that was logged out.
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Tokens signs and verifies identity tokens and keeps the set of revoked
// token strings. The set lives for the process only; a restart forgets it.
type Tokens struct {
	secret []byte
	now    func() time.Time

	mu      sync.RWMutex
	revoked map[string]struct{}
}

// NewTokens creates a token service signing with the given secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{
		secret:  []byte(secret),
		now:     time.Now,
		revoked: make(map[string]struct{}),
	}
}

// Issue signs a token bound to userID, expiring after Lifetime.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature, expiry and revocation, in that order, and returns
// the bound user id. A token that fails cryptographic validation is reported
// as invalid even if its exact string was revoked earlier.
func (t *Tokens) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, t.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	t.mu.RLock()
	_, revoked := t.revoked[raw]
	t.mu.RUnlock()
	if revoked {
		return "", ErrTokenRevoked
	}

	return claims.Subject, nil
}

// Revoke adds the token string to the revocation set. Garbage that does not
// carry a valid signature is rejected; revoking a token twice is a no-op.
// Expiry is not checked here, an expired token fails Verify on its own.
func (t *Tokens) Revoke(raw string) error {
	_, err := jwt.Parse(raw, t.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation())
	if err != nil {
		return ErrInvalidToken
	}

	t.mu.Lock()
	t.revoked[raw] = struct{}{}
	t.mu.Unlock()
	return nil
}

func (t *Tokens) keyFunc(*jwt.Token) (any, error) {
	return t.secret, nil
}
