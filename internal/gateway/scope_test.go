// ABOUTME: Tests for scope token issuance and verification
// ABOUTME: Covers round-trips, expiry, tampering, and wrong-secret rejection

package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeTokens_RoundTrip(t *testing.T) {
	tokens := NewScopeTokens([]byte("test-secret"), time.Hour)

	token, err := tokens.Issue("scope-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	scope, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "scope-123", scope)
}

func TestScopeTokens_Expired(t *testing.T) {
	tokens := NewScopeTokens([]byte("test-secret"), -time.Minute)

	token, err := tokens.Issue("scope-123")
	require.NoError(t, err)

	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestScopeTokens_Garbage(t *testing.T) {
	tokens := NewScopeTokens([]byte("test-secret"), time.Hour)

	_, err := tokens.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestScopeTokens_WrongSecret(t *testing.T) {
	issuer := NewScopeTokens([]byte("secret-a"), time.Hour)
	verifier := NewScopeTokens([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue("scope-123")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestScopeTokens_Tampered(t *testing.T) {
	tokens := NewScopeTokens([]byte("test-secret"), time.Hour)

	token, err := tokens.Issue("scope-123")
	require.NoError(t, err)

	_, err = tokens.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
