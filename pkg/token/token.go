package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"classlink/internal/core/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the identity the coordinator issued for this participant.
// The handshake sends the display name and role; the user id keys every
// outbound envelope.
type Claims struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Parse validates the signed identity token and returns its claims.
func Parse(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" || claims.DisplayName == "" {
		return nil, ErrInvalidToken
	}
	if !domain.ValidRole(domain.Role(claims.Role)) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Sign issues a token for the given identity. Used by tests and local
// tooling; production tokens come from the coordinator.
func Sign(secret string, claims *Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}
