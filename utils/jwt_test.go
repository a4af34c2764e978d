package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, expiresAt, err := issuer.GenerateToken(7, "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _, err := issuer.GenerateToken(1, "admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenBlacklist(t *testing.T) {
	b := NewTokenBlacklist()
	b.Add("a", time.Now().Add(time.Minute))
	b.Add("old", time.Now().Add(-time.Minute))

	assert.True(t, b.Contains("a"))
	assert.False(t, b.Contains("old"))
	assert.False(t, b.Contains("b"))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc.def", BearerToken("Bearer abc.def"))
	assert.Equal(t, "abc.def", BearerToken("bearer  abc.def "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("Bearer "))
	assert.Empty(t, BearerToken(""))
}
