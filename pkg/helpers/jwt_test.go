package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, exp, err := m.GenerateSessionToken("sid-42")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-42", claims.SessionID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).GenerateSessionToken("sid")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ParseSessionToken(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, _, err := NewJWTManager("secret", -time.Minute).GenerateSessionToken("sid")
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).ParseSessionToken(token)
	assert.Error(t, err)
}

func TestParseRejectsEmptySessionID(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := raw.SignedString(m.Secret)
	require.NoError(t, err)

	_, err = m.ParseSessionToken(signed)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	_, err := m.ParseSessionToken("not-a-jwt")
	assert.Error(t, err)
}
