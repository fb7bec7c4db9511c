package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a reply with a non-2xx status. Envelope is nil when the body
// could not be decoded.
type APIError struct {
	StatusCode int                        `json:"status_code"`
	Envelope   *Envelope[json.RawMessage] `json:"envelope,omitempty"`
	Request    *Request                   `json:"-"`
}

func (e *APIError) Error() string {
	target := ""
	if e.Request != nil {
		target = fmt.Sprintf(" (%s %s)", e.Request.Method, e.Request.Path)
	}
	if e.Envelope != nil && e.Envelope.Message != "" {
		return fmt.Sprintf("API error %d%s: %s", e.StatusCode, target, e.Envelope.Message)
	}
	return fmt.Sprintf("API error %d%s: %s", e.StatusCode, target, http.StatusText(e.StatusCode))
}

// Unauthorized reports whether the reply carried status 401.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ExitCode maps HTTP status codes to CLI exit codes.
func (e *APIError) ExitCode() int {
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return 3 // auth error
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return 1 // user error
	default:
		return 2 // API/server error
	}
}

// TransportError means no response was received at all.
type TransportError struct {
	Request *Request
	Err     error
}

func (e *TransportError) Error() string {
	if e.Request != nil {
		return fmt.Sprintf("%s %s: HTTP request failed: %v", e.Request.Method, e.Request.Path, e.Err)
	}
	return fmt.Sprintf("HTTP request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError means a successful reply arrived but its body is not an envelope.
type DecodeError struct {
	Response *Response
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Response != nil && e.Response.Request != nil {
		return fmt.Sprintf("%s %s: parsing response envelope: %v", e.Response.Request.Method, e.Response.Request.Path, e.Err)
	}
	return fmt.Sprintf("parsing response envelope: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RefreshError indicates the session could not be renewed.
type RefreshError struct {
	Wrapped error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("session refresh failed: %v", e.Wrapped)
}

func (e *RefreshError) Unwrap() error {
	return e.Wrapped
}
