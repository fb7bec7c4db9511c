package api

import (
	"context"
	"errors"
)

// SessionInterceptorName is the registration name used by Attach.
const SessionInterceptorName = "session"

// SessionTerminator ends the current session when it cannot be renewed.
type SessionTerminator interface {
	Logout() error
}

// SessionInterceptor recovers requests that failed with 401 by refreshing
// the session and replaying them once. When the refresh fails it logs the
// session out and hands the caller the original failure.
type SessionInterceptor struct {
	refresher *Refresher
	session   SessionTerminator
	logger    Logger
}

// NewSessionInterceptor creates the interceptor. logger may be nil.
func NewSessionInterceptor(r *Refresher, session SessionTerminator, logger Logger) *SessionInterceptor {
	if logger == nil {
		logger = nopLogger{}
	}
	return &SessionInterceptor{refresher: r, session: session, logger: logger}
}

// Attach registers the interceptor on c under SessionInterceptorName.
// Attaching again replaces the earlier registration.
func (s *SessionInterceptor) Attach(c *Client) (detach func()) {
	return c.Use(SessionInterceptorName, s.Intercept)
}

// Intercept implements Interceptor.
func (s *SessionInterceptor) Intercept(ctx context.Context, req *Request, resp *Response, err error) (*Response, error) {
	if err == nil {
		return resp, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Unauthorized() {
		return resp, err
	}

	// A replay that is still unauthorized is final.
	if req.Replayed() {
		return resp, err
	}

	s.logger.Info("session expired on %s %s, refreshing", req.Method, req.Path)
	retried, rerr := s.refresher.Recover(ctx, req)
	if rerr == nil {
		return retried, nil
	}

	var refreshErr *RefreshError
	if !errors.As(rerr, &refreshErr) {
		return retried, rerr
	}

	// The caller gave up; the backend never rejected the session.
	if ctx.Err() != nil || errors.Is(rerr, context.Canceled) || errors.Is(rerr, context.DeadlineExceeded) {
		s.logger.Info("refresh interrupted on %s %s: %v", req.Method, req.Path, refreshErr.Wrapped)
		return resp, err
	}

	s.logger.Warn("could not refresh session: %v", refreshErr.Wrapped)
	if s.session != nil {
		if lerr := s.session.Logout(); lerr != nil {
			s.logger.Warn("logout failed: %v", lerr)
		}
	}
	return resp, err
}
