package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserType      string `json:"user_type"`
	IssuedAtMilli int64  `json:"iat_ms,omitempty"`
	jwt.RegisteredClaims
}

// IssuedMilli is the issue time in Unix milliseconds. Tokens without iat_ms
// fall back to the start of their iat second.
func (c *Claims) IssuedMilli() int64 {
	if c.IssuedAtMilli != 0 {
		return c.IssuedAtMilli
	}
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.Time.UnixMilli()
}

// Manager issues and verifies the HS256 session tokens handed to clients
// after sign-in.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Issue(uid, userType string) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserType:      userType,
		IssuedAtMilli: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, claims, nil
}

func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}
