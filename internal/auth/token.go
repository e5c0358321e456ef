// internal/auth/token.go
//
// Token service: issues and verifies HS256 bearer tokens that carry
// `{ "user": { "id": ... } }` plus iat/exp. There is no revocation; a token
// stays valid until it expires.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed input, wrong algorithm, expiry, or a missing user id.
var ErrInvalidToken = errors.New("invalid token")

// ClaimUser is the identity embedded in a token.
type ClaimUser struct {
	ID string `json:"id"`
}

// Claims is the token payload.
type Claims struct {
	User ClaimUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies tokens with a single process-wide secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. ttl is applied to every issued token.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID expiring at now+ttl.
func (s *TokenService) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("auth: empty user id")
	}
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		User: ClaimUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	ss, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return ss, nil
}

// Verify parses token and returns its claims, or ErrInvalidToken.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	if claims.User.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
