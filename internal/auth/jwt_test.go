package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	iss := NewIssuer("test-secret")

	token, exp, err := iss.GenerateToken()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(tokenTTL), exp, time.Minute)

	sub, err := iss.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, _, err := NewIssuer("one").GenerateToken()
	require.NoError(t, err)

	_, err = NewIssuer("two").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	iss := NewIssuer("test-secret")
	iss.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	token, _, err := iss.GenerateToken()
	require.NoError(t, err)

	_, err = NewIssuer("test-secret").ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_WrongSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "42", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewIssuer("test-secret").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
