package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims embedded in a session token.
type Claims struct {
	UserID int64
	Role   string
	Name   string
}

var (
	ErrMissing = errors.New("missing authorization")
	ErrInvalid = errors.New("invalid token")
)

func Issue(secret string, userID int64, role, name string, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"id":   userID,
		"role": role,
		"name": name,
		"exp":  time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAuth verifies a raw Authorization header value ("Bearer <token>" or a
// bare token) and returns the embedded claims.
func ParseAuth(authHeader string, secret string) (*Claims, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if tokenStr == "" {
		return nil, ErrMissing
	}
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, ErrMissing
	}
	return Parse(tokenStr, secret)
}

func Parse(tokenStr, secret string) (*Claims, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalid
	}
	if !tok.Valid {
		return nil, ErrInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}
	return FromMapClaims(mc)
}

// FromMapClaims extracts typed claims from already-verified map claims
// (echo-jwt stores them on the context in this form).
func FromMapClaims(mc jwt.MapClaims) (*Claims, error) {
	idf, ok := mc["id"].(float64)
	if !ok {
		return nil, ErrInvalid
	}
	c := &Claims{UserID: int64(idf)}
	if s, ok := mc["role"].(string); ok {
		c.Role = s
	}
	if s, ok := mc["name"].(string); ok {
		c.Name = s
	}
	return c, nil
}
