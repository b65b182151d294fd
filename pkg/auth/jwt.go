// Package auth provides reusable JWT utilities with no HTTP dependencies.
// Middleware and the console client use it to issue and validate admin tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role claim required by admin routes
const RoleAdmin = "admin"

// ErrMissingSecret is returned when a token is issued or checked without a signing secret
var ErrMissingSecret = errors.New("jwt secret is empty")

// Claims represents the claims in the JWT token.
type Claims struct {
	User string `json:"user"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token carries role
func (c *Claims) HasRole(role string) bool {
	return c != nil && c.Role == role
}

// IssueToken signs an HS256 token for user with the given role, valid for ttl.
// A non-positive ttl issues a token without expiry.
func IssueToken(secret, user, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := Claims{
		User: user,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateToken validates a JWT token string and returns the claims if valid.
// It verifies the signature using the provided secret and ensures the token
// uses the expected HS256 signing method.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify the signing method to prevent algorithm confusion attacks
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("expected HS256 signing method, got %s", token.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// Name returns the acting user for audit rows, falling back to the subject
func (c *Claims) Name() string {
	if c == nil {
		return ""
	}
	if c.User != "" {
		return c.User
	}
	return c.Subject
}
