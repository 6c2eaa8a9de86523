package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret-test-secret-test-secret")

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(secret, 42, "ann@example.com", RoleDriver, time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	require.Equal(t, RoleDriver, claims.Role)
	require.Equal(t, "ann@example.com", claims.Email)

	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
}

func TestAccessTokenRejected(t *testing.T) {
	expired, err := NewAccessToken(secret, 1, "a@b.c", RoleCustomer, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, err := NewAccessToken(secret, 1, "a@b.c", RoleCustomer, time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(valid, []byte("another-secret"))
	require.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{Role: RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(unsigned, secret)
	require.Error(t, err)
}

func TestUserIDRejectsGarbage(t *testing.T) {
	c := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	require.Error(t, err)
}
