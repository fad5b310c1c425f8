package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestSign_RoundTrip(t *testing.T) {
	key := testKey(t)
	now := time.Now()

	token, err := GenerateSign(&Claims{
		Sub:      "user-1",
		Username: "alice",
		Iat:      now.Unix(),
		Exp:      now.Add(time.Hour).Unix(),
	}, key)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAndVerifySign(token, &key.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "alice", claims.Username)
}

func TestSign_WrongKeyRejected(t *testing.T) {
	key := testKey(t)
	otherKey := testKey(t)
	now := time.Now()

	token, err := GenerateSign(&Claims{
		Sub: "user-1",
		Iat: now.Unix(),
		Exp: now.Add(time.Hour).Unix(),
	}, key)
	require.NoError(t, err)

	claims, err := ParseAndVerifySign(token, &otherKey.PublicKey)
	assert.Error(t, err, "verification with a different public key must fail")
	assert.Nil(t, claims)
}

func TestSign_ExpiredToken(t *testing.T) {
	key := testKey(t)
	now := time.Now()

	token, err := GenerateSign(&Claims{
		Sub: "user-1",
		Iat: now.Add(-2 * time.Hour).Unix(),
		Exp: now.Add(-time.Hour).Unix(),
	}, key)
	require.NoError(t, err)

	claims, err := ParseAndVerifySign(token, &key.PublicKey)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestSign_GarbageToken(t *testing.T) {
	key := testKey(t)

	claims, err := ParseAndVerifySign("not.a.token", &key.PublicKey)
	assert.Error(t, err)
	assert.Nil(t, claims)
}
