// ABOUTME: Scope token generation and verification for per-tab session scopes
// ABOUTME: Uses HS256 signing with configurable secret

package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope token errors
var (
	ErrInvalidToken = errors.New("invalid scope token")
	ErrExpiredToken = errors.New("scope token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// ScopeTokens issues and verifies the signed tokens a browsing context
// uses to prove ownership of its scope. A scope names one tab's
// mirrored session; the token keeps tabs from reading each other's
// snapshots.
type ScopeTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewScopeTokens creates a token issuer/verifier with the given secret and TTL.
func NewScopeTokens(secret []byte, ttl time.Duration) *ScopeTokens {
	return &ScopeTokens{secret: secret, ttl: ttl}
}

// Issue creates a signed token binding the given scope, expiring after the TTL.
func (t *ScopeTokens) Issue(scope string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": scope,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify validates the token and extracts the scope from the "sub" claim.
func (t *ScopeTokens) Verify(tokenString string) (scope string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return sub, nil
}
