package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	id := Identity{UserID: "u1", Username: "jo", Email: "jo@example.com", IsVIP: true}
	tok, err := NewAccessToken("secret", id, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	got, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestParseAccessTokenRejects(t *testing.T) {
	id := Identity{UserID: "u1"}

	good, err := NewAccessToken("secret", id, time.Hour)
	require.NoError(t, err)
	_, err = ParseAccessToken("other", good.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("secret", id, -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", expired.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken("secret", "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	// alg none must never be accepted
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", raw)
	require.ErrorIs(t, err, ErrInvalidToken)

	// HS512 is a valid HMAC but not the algorithm we issue
	other := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	raw, err = other.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", raw)
	require.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := NewAccessToken("secret", Identity{}, time.Hour)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", noSubject.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
