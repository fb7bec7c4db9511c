package api

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

// DefaultRefreshPath is the endpoint that renews session credentials.
const DefaultRefreshPath = "/auth/refresh"

// Refresher renews the session and replays requests that failed with 401.
// It never terminates the session itself.
type Refresher struct {
	client *Client
	path   string
	shared bool
	group  singleflight.Group
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithRefreshPath overrides DefaultRefreshPath.
func WithRefreshPath(path string) RefresherOption {
	return func(r *Refresher) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		r.path = path
	}
}

// WithSharedRefresh makes concurrent refreshes share one call to the refresh
// endpoint. By default every 401 triggers its own refresh.
func WithSharedRefresh() RefresherOption {
	return func(r *Refresher) { r.shared = true }
}

// NewRefresher creates a Refresher bound to c.
func NewRefresher(c *Client, opts ...RefresherOption) *Refresher {
	r := &Refresher{client: c, path: DefaultRefreshPath}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the refresh endpoint path.
func (r *Refresher) Path() string {
	return r.path
}

// Refresh calls the refresh endpoint with credentials, bypassing interceptors.
// Any failure is returned as a *RefreshError.
func (r *Refresher) Refresh(ctx context.Context) error {
	if !r.shared {
		return r.refresh(ctx)
	}
	// The shared call outlives any single caller; each caller still stops
	// waiting when its own ctx is done.
	ch := r.group.DoChan(r.path, func() (interface{}, error) {
		return nil, r.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return &RefreshError{Wrapped: ctx.Err()}
	}
}

func (r *Refresher) refresh(ctx context.Context) error {
	req, err := NewRequest(http.MethodGet, r.path, nil)
	if err != nil {
		return &RefreshError{Wrapped: err}
	}
	if _, err := r.client.Send(ctx, req); err != nil {
		return &RefreshError{Wrapped: err}
	}
	return nil
}

// Recover refreshes the session and, on success, sends req again through the
// client. A refresh failure comes back as *RefreshError; anything else is the
// replay's own outcome.
func (r *Refresher) Recover(ctx context.Context, req *Request) (*Response, error) {
	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}
	return r.client.Do(ctx, req.markReplayed())
}
