package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestInspect(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	tests := []struct {
		name        string
		expiresAt   time.Time
		wantExpired bool
	}{
		{"valid", now.Add(time.Hour), false},
		{"expired", now.Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signedToken(t, jwt.RegisteredClaims{
				Subject:   "user@example.com",
				Issuer:    "backend",
				IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
				ExpiresAt: jwt.NewNumericDate(tt.expiresAt),
			})

			c, err := Inspect(token, now)
			if err != nil {
				t.Fatalf("Inspect: %v", err)
			}
			if c.Subject != "user@example.com" {
				t.Errorf("Subject = %q", c.Subject)
			}
			if c.Issuer != "backend" {
				t.Errorf("Issuer = %q", c.Issuer)
			}
			if !c.ExpiresAt.Equal(tt.expiresAt) {
				t.Errorf("ExpiresAt = %v, want %v", c.ExpiresAt, tt.expiresAt)
			}
			if c.Expired != tt.wantExpired {
				t.Errorf("Expired = %v, want %v", c.Expired, tt.wantExpired)
			}
		})
	}
}

func TestInspect_NoExpiry(t *testing.T) {
	c, err := Inspect(signedToken(t, jwt.RegisteredClaims{Subject: "s"}), time.Now())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !c.ExpiresAt.IsZero() || c.Expired {
		t.Errorf("claims = %+v, want no expiry", c)
	}
}

func TestInspect_NotAToken(t *testing.T) {
	if _, err := Inspect("opaque-session-id", time.Now()); err == nil {
		t.Fatal("expected error for non-JWT value")
	}
}
