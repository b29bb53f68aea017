package token

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test key"))
	require.NoError(t, err)
	return raw
}

func TestDecode(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "user 1"})

	sub, err := Decode(raw)

	require.NoError(t, err)
	assert.Equal(t, "user 1", sub)
}

func TestDecodeIgnoresSignature(t *testing.T) {
	// The signature is not checked, a tampered one still decodes.
	raw := signedToken(t, jwt.MapClaims{"sub": "user 1"}) + "tampered"

	sub, err := Decode(raw)

	require.NoError(t, err)
	assert.Equal(t, "user 1", sub)
}

func TestDecodeNotAToken(t *testing.T) {
	sub, err := Decode("not a token")

	assert.Empty(t, sub)
	assert.Error(t, err)
}

func TestDecodeNoSubject(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"aud": "value"})

	sub, err := Decode(raw)

	assert.Empty(t, sub)
	assert.ErrorIs(t, err, ErrNoSubject)
}
