package session

import (
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestStore_PersistAndReload(t *testing.T) {
	dir := t.TempDir()
	u := mustURL(t, "http://localhost:8080/auth/refresh")

	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.SetCookies(u, []*http.Cookie{
		{Name: "access", Value: "a1", Path: "/"},
		{Name: "refresh", Value: "r1", Path: "/", MaxAge: 3600},
	})
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != FilePermissions {
		t.Errorf("permissions = %o, want %o", perm, FilePermissions)
	}

	reloaded, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore reload: %v", err)
	}
	got := reloaded.Cookies(mustURL(t, "http://localhost:8080/items"))
	if len(got) != 2 {
		t.Fatalf("Cookies = %d, want 2", len(got))
	}

	entries := reloaded.Entries()
	if len(entries) != 2 || entries[0].Name != "access" || entries[1].Name != "refresh" {
		t.Errorf("Entries = %+v", entries)
	}
	if entries[1].Expires.IsZero() {
		t.Error("MaxAge cookie should carry an expiry")
	}
}

func TestStore_DeletesOnNegativeMaxAge(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	u := mustURL(t, "http://localhost:8080/")

	s.SetCookies(u, []*http.Cookie{{Name: "access", Value: "a1", Path: "/"}})
	s.SetCookies(u, []*http.Cookie{{Name: "access", Path: "/", MaxAge: -1}})

	if n := len(s.Entries()); n != 0 {
		t.Errorf("Entries = %d, want 0", n)
	}
	if n := len(s.Cookies(u)); n != 0 {
		t.Errorf("Cookies = %d, want 0", n)
	}
}

func TestStore_PrunesExpired(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	base := time.Now()
	s.now = func() time.Time { return base }

	s.SetCookies(mustURL(t, "http://localhost:8080/"), []*http.Cookie{
		{Name: "short", Value: "x", Path: "/", MaxAge: 60},
	})
	s.now = func() time.Time { return base.Add(2 * time.Minute) }

	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Errorf("cookie file should be removed when nothing is left, stat err = %v", err)
	}
}

func TestStore_Logout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Set("http://localhost:8080", "access", "a1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if n := len(s.Cookies(mustURL(t, "http://localhost:8080/"))); n != 0 {
		t.Errorf("Cookies after logout = %d, want 0", n)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Errorf("cookie file should be gone, stat err = %v", err)
	}

	// Logging out twice is harmless.
	if err := s.Logout(); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}

func TestStore_SetValidation(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	tests := []struct {
		base, name string
	}{
		{"not a url", "access"},
		{"/relative", "access"},
		{"http://localhost:8080", ""},
	}
	for _, tt := range tests {
		if err := s.Set(tt.base, tt.name, "v"); err == nil {
			t.Errorf("Set(%q, %q) expected error", tt.base, tt.name)
		}
	}
}

func TestNewStore_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(dir+"/"+CookieFileName, []byte("{invalid"), 0600)

	if _, err := NewStore(dir); err == nil {
		t.Fatal("expected error for invalid cookie file")
	}
}
