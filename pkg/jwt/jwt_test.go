package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m, err := NewManager("secret", "offershare", time.Hour, 0)
	require.NoError(t, err)

	token, exp, err := m.GenerateAccessToken("user-a")
	require.NoError(t, err)
	require.Greater(t, exp, time.Now().Unix())

	id, err := m.ResolveIdentity(token)
	require.NoError(t, err)
	require.Equal(t, "user-a", id)
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	issuer, err := NewManager("one", "offershare", time.Hour, 0)
	require.NoError(t, err)
	verifier, err := NewManager("two", "offershare", time.Hour, 0)
	require.NoError(t, err)

	token, _, err := issuer.GenerateAccessToken("user-a")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Expired(t *testing.T) {
	m, err := NewManager("secret", "", -time.Minute, 0)
	require.NoError(t, err)

	token, _, err := m.GenerateAccessToken("user-a")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_SubjectFallback(t *testing.T) {
	m, err := NewManager("secret", "", time.Hour, 0)
	require.NoError(t, err)

	claims := gojwt.RegisteredClaims{
		Subject:   "user-b",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	id, err := m.ResolveIdentity(token)
	require.NoError(t, err)
	require.Equal(t, "user-b", id)
}

func TestNewManager_EmptySecret(t *testing.T) {
	_, err := NewManager("", "", time.Hour, 0)
	require.ErrorIs(t, err, ErrMissingKey)
}
