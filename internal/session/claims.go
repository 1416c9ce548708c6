package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

var errNoSubject = errors.New("token has no subject")

// Claims is the payload of the API access token.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Decode reads the token payload without verifying the signature. The result
// is used for display and route gating only; the API validates every call.
func Decode(token string) (*Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("decode token: %w", errNoSubject)
	}
	return &c, nil
}

// Expired reports whether the token is past its exp claim. A token without
// exp never expires.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time)
}

func (c *Claims) User() *domain.User {
	return &domain.User{
		Sub:   c.Subject,
		Role:  domain.Role(strings.ToUpper(strings.TrimSpace(c.Role))),
		Email: c.Email,
	}
}
