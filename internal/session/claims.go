package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the CLI can tell about a session token without its key.
type Claims struct {
	Subject   string    `json:"subject,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Expired   bool      `json:"expired"`
}

// Inspect decodes a JWT cookie value without verifying its signature.
// The backend is the only party that can verify it; this is for display.
func Inspect(token string, now time.Time) (*Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return nil, fmt.Errorf("not a JWT: %w", err)
	}

	c := &Claims{
		Subject: rc.Subject,
		Issuer:  rc.Issuer,
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
		c.Expired = !c.ExpiresAt.After(now)
	}
	return c, nil
}
