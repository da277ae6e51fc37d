// Package auth issues and validates the HS256 session tokens handed to
// storefront clients.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/dmitrijs2005/mithaimart/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the registered claims plus the account role. Subject is
// the account ID and ID (jti) is unique per issued token.
type Claims struct {
	jwt.RegisteredClaims
	Role common.Role `json:"role"`
}

// now is replaced in tests.
var now = time.Now

// GenerateToken signs a token for the account valid for ttl and returns it
// together with its expiry instant.
func GenerateToken(account *models.Account, secretKey []byte, ttl time.Duration) (string, time.Time, error) {
	issuedAt := now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Role: account.Role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken validates signature, algorithm and expiry. Expired tokens map
// to common.ErrTokenExpired, every other failure to common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
