package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Request describes one call against the backend. It is built once and kept
// intact so a failed call can be sent again exactly as it was.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	RequestID   string
	Credentials bool

	replayed bool
}

// NewRequest builds a credentialed request. body may be nil, raw JSON bytes,
// or any value encoding/json can marshal.
func NewRequest(method, path string, body interface{}) (*Request, error) {
	var data []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		data = b
	case json.RawMessage:
		data = b
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		data = encoded
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &Request{
		Method:      strings.ToUpper(method),
		Path:        path,
		Header:      make(http.Header),
		Body:        data,
		RequestID:   uuid.NewString(),
		Credentials: true,
	}, nil
}

// Replayed reports whether this request is a replay after a session refresh.
func (r *Request) Replayed() bool {
	return r.replayed
}

// Clone returns a deep copy. The request ID is kept so both attempts share it.
func (r *Request) Clone() *Request {
	c := *r
	if r.Query != nil {
		c.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			c.Query[k] = append([]string(nil), v...)
		}
	}
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return &c
}

// URL joins the request path and query onto base.
func (r *Request) URL(base string) string {
	full := strings.TrimRight(base, "/") + r.Path
	if qs := r.Query.Encode(); qs != "" {
		if strings.Contains(full, "?") {
			full += "&" + qs
		} else {
			full += "?" + qs
		}
	}
	return full
}

func (r *Request) markReplayed() *Request {
	c := r.Clone()
	c.replayed = true
	return c
}
