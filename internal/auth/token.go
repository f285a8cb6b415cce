// Package auth issues and verifies the signed access tokens that prove a
// principal's identity without a server-side session lookup.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openjournal/journal-backend/internal/models"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, malformed token, or elapsed expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the payload carried inside an access token.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens. The secret is
// read-only after construction; the service is safe for concurrent use.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
}

// NewTokenService builds a token service from the configured signing secret
// and token lifetime in seconds.
func NewTokenService(secret string, expiresInSeconds int) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: time.Duration(expiresInSeconds) * time.Second,
	}
}

// Issue signs a new token for the user and returns it with its lifetime
// in seconds.
func (s *TokenService) Issue(user *models.User) (string, int, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int(s.expiresIn.Seconds()), nil
}

// Verify parses and validates a token, returning its claims. With
// allowExpired set, an elapsed expiry is tolerated as long as the signature
// checks out; this exists only for the refresh route.
func (s *TokenService) Verify(tokenString string, allowExpired bool) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if allowExpired && errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return claims, nil
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
