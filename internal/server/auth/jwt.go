// Package auth issues and verifies the signed session tokens carried in the
// session cookie.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/placekeeper/placekeeper/internal/common"
)

// Claims are the assertions embedded in a session token: the standard
// registered claims plus the authenticated user's id and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// GenerateToken signs a session token for the given user. A zero
// validityDuration omits the expiry claim entirely, producing a token that
// stays valid until the client discards it; any other value, including a
// negative one, stamps the claim.
func GenerateToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
	}
	if validityDuration != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validityDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the token's HMAC signature and returns its claims.
// Every verification failure, including expiry, maps to ErrInvalidToken so
// callers never have to distinguish fault modes the client cannot act on.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
