package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

const (
	cookieName  = "session"
	staleToken  = "stale"
	freshToken  = "fresh"
	refreshOK   = "ok"
	refreshFail = "fail"
	refreshNoop = "noop"
	// refreshHold answers like refreshOK once the gate opens, and gives up
	// when the caller goes away first.
	refreshHold = "hold"
)

// fakeBackend is a cookie-session backend that answers in envelopes.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	refreshMode  string
	refreshCalls atomic.Int32

	// staleBarrier, when set, holds unauthorized replies until every
	// expected stale request has arrived.
	staleBarrier *sync.WaitGroup

	gate     chan struct{}
	gateOnce sync.Once

	mu   sync.Mutex
	hits map[string][]string // path -> request IDs in arrival order
}

func newFakeBackend(t *testing.T, refreshMode string) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		t:           t,
		refreshMode: refreshMode,
		gate:        make(chan struct{}),
		hits:        make(map[string][]string),
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/refresh", b.handleRefresh).Methods(http.MethodGet)
	r.HandleFunc("/items/{id}", b.handleItem)
	r.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, "not allowed", nil)
	})
	r.HandleFunc("/validation", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnprocessableEntity, "Invalid field", nil)
	})
	r.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	})
	r.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{
			"method":  r.Method,
			"body":    body,
			"cookie":  cookieValue(r),
			"agent":   r.UserAgent(),
			"request": r.Header.Get(HeaderRequestID),
		})
	})

	b.srv = httptest.NewServer(r)
	t.Cleanup(b.srv.Close)
	t.Cleanup(b.openGate) // runs before Close so held handlers can return
	return b
}

func (b *fakeBackend) openGate() {
	b.gateOnce.Do(func() { close(b.gate) })
}

// waitRefreshCalls blocks until the refresh endpoint has been hit n times.
func (b *fakeBackend) waitRefreshCalls(n int32) {
	b.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for b.refreshCalls.Load() < n {
		if time.Now().After(deadline) {
			b.t.Fatalf("refresh calls = %d, want %d", b.refreshCalls.Load(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	switch b.refreshMode {
	case refreshHold:
		select {
		case <-b.gate:
		case <-r.Context().Done():
			return
		}
		http.SetCookie(w, &http.Cookie{Name: cookieName, Value: freshToken, Path: "/"})
		writeEnvelope(w, http.StatusOK, "refreshed", nil)
	case refreshOK:
		http.SetCookie(w, &http.Cookie{Name: cookieName, Value: freshToken, Path: "/"})
		writeEnvelope(w, http.StatusOK, "refreshed", map[string]string{"email": "user@example.com"})
	case refreshNoop:
		writeEnvelope(w, http.StatusOK, "refreshed", nil)
	default:
		writeEnvelope(w, http.StatusUnauthorized, "refresh token expired", nil)
	}
}

func (b *fakeBackend) handleItem(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path] = append(b.hits[r.URL.Path], r.Header.Get(HeaderRequestID))
	b.mu.Unlock()

	if cookieValue(r) != freshToken {
		if b.staleBarrier != nil {
			b.staleBarrier.Done()
			b.staleBarrier.Wait()
		}
		writeEnvelope(w, http.StatusUnauthorized, "token expired", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "ok", map[string]string{"id": mux.Vars(r)["id"]})
}

func (b *fakeBackend) hitsFor(path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.hits[path]...)
}

// client returns a Client whose jar already holds token.
func (b *fakeBackend) client(token string, opts ...ClientOption) *Client {
	b.t.Helper()
	jar := newJar(b.t)
	if token != "" {
		u, _ := url.Parse(b.srv.URL)
		jar.SetCookies(u, []*http.Cookie{{Name: cookieName, Value: token, Path: "/"}})
	}
	opts = append([]ClientOption{
		WithBaseURL(b.srv.URL),
		WithHTTPClient(b.srv.Client()),
		WithCookieJar(jar),
	}, opts...)
	return NewClient(opts...)
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
		"data":    data,
	})
}

func cookieValue(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// countingSession records Logout calls.
type countingSession struct {
	calls atomic.Int32
}

func (s *countingSession) Logout() error {
	s.calls.Add(1)
	return nil
}
