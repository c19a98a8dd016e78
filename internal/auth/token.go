package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blockvault/internal/domain"
)

// ErrBadToken is returned for tokens that are missing, malformed, expired,
// or signed with the wrong secret.
var ErrBadToken = errors.New("invalid or expired token")

// TokenSigner issues and validates HS256 bearer tokens whose subject is the
// checksummed wallet address.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenSigner(secret []byte, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: secret, ttl: ttl}
}

// Issue mints a token for addr valid from now for the signer's lifetime.
func (s *TokenSigner) Issue(addr domain.Address, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   addr.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Subject validates token and returns the wallet address it was issued to.
func (s *TokenSigner) Subject(token string) (domain.Address, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.Subject == "" {
		return "", ErrBadToken
	}
	return domain.Address(claims.Subject), nil
}
