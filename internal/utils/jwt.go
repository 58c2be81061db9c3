package utils // package utils provides helpers for issuing and verifying credentials

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a credential asserts about its holder. The role flags
// are a snapshot taken at issuance; a revoked VIP or admin keeps the
// privilege until the credential expires.
type Identity struct {
	UserID   string
	Username string
	Email    string
	IsVIP    bool
	IsAdmin  bool
}

// Claims is the JWT payload.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsVIP    bool   `json:"isVIP"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// AccessToken represents a signed credential along with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// ErrInvalidToken covers malformed, expired and badly signed credentials.
var ErrInvalidToken = errors.New("invalid credential")

// NewAccessToken builds and signs an HS256 JWT for id, valid for ttl.
func NewAccessToken(secret string, id Identity, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Username: id.Username,
		Email:    id.Email,
		IsVIP:    id.IsVIP,
		IsAdmin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry of raw and
// returns the identity it carries.
func ParseAccessToken(secret, raw string) (Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		IsVIP:    claims.IsVIP,
		IsAdmin:  claims.IsAdmin,
	}, nil
}
