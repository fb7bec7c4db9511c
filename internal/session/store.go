// Package session keeps the cookies that carry the backend session between
// runs and ends the session on request.
package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	CookieFileName  = "cookies.json"
	FilePermissions = os.FileMode(0600)
)

// Entry is a cookie as persisted on disk.
type Entry struct {
	Origin    string    `json:"origin"` // scheme://host the cookie was set by
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Path      string    `json:"path,omitempty"`
	Domain    string    `json:"domain,omitempty"`
	Expires   time.Time `json:"expires,omitempty"`
	Secure    bool      `json:"secure,omitempty"`
	HTTPOnly  bool      `json:"http_only,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the cookie has a past expiry.
func (e *Entry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !e.Expires.After(now)
}

// cookieFile is the on-disk format for the cookie store.
type cookieFile struct {
	Cookies map[string]*Entry `json:"cookies"`
}

// Store is an http.CookieJar that remembers what it was given so the
// session survives between runs.
type Store struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	entries map[string]*Entry
	path    string
	now     func() time.Time
}

// NewStore creates a store backed by cookies.json in configDir and loads
// whatever was persisted there.
func NewStore(configDir string) (*Store, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	s := &Store{
		jar:     jar,
		entries: make(map[string]*Entry),
		path:    filepath.Join(configDir, CookieFileName),
		now:     time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// SetCookies implements http.CookieJar.
func (s *Store) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(u, cookies)
}

// Cookies implements http.CookieJar.
func (s *Store) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

func (s *Store) setLocked(u *url.URL, cookies []*http.Cookie) {
	s.jar.SetCookies(u, cookies)

	origin := u.Scheme + "://" + u.Host
	now := s.now()
	for _, c := range cookies {
		k := key(origin, c.Name, c.Path)

		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) {
			delete(s.entries, k)
			continue
		}

		s.entries[k] = &Entry{
			Origin:    origin,
			Name:      c.Name,
			Value:     c.Value,
			Path:      c.Path,
			Domain:    c.Domain,
			Expires:   expires,
			Secure:    c.Secure,
			HTTPOnly:  c.HttpOnly,
			UpdatedAt: now,
		}
	}
}

// Set stores a cookie for baseURL, as if the backend had set it.
func (s *Store) Set(baseURL, name, value string) error {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", baseURL)
	}
	if name == "" {
		return fmt.Errorf("cookie name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	return nil
}

// Entries returns the live cookies sorted by origin and name.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Expired(now) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Origin != out[j].Origin {
			return out[i].Origin < out[j].Origin
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Logout drops every cookie and removes the persisted file.
func (s *Store) Logout() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("creating cookie jar: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar = jar
	s.entries = make(map[string]*Entry)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", s.path, err)
	}
	return nil
}

// Persist writes the current cookies to disk.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Prune expired cookies
	now := s.now()
	for k, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, k)
		}
	}

	if len(s.entries) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	data, err := json.MarshalIndent(cookieFile{Cookies: s.entries}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(s.path, data, FilePermissions)
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cookies: %w", err)
	}

	var cf cookieFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("parsing cookies: %w", err)
	}

	now := s.now()
	for k, e := range cf.Cookies {
		if e == nil || e.Expired(now) {
			continue
		}
		u, err := url.Parse(e.Origin)
		if err != nil {
			continue
		}
		s.jar.SetCookies(u, []*http.Cookie{{
			Name:     e.Name,
			Value:    e.Value,
			Path:     e.Path,
			Domain:   e.Domain,
			Expires:  e.Expires,
			Secure:   e.Secure,
			HttpOnly: e.HTTPOnly,
		}})
		s.entries[k] = e
	}
	return nil
}

func key(origin, name, path string) string {
	return origin + "|" + name + "|" + path
}
