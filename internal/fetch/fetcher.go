// Package fetch provides read-only GET helpers that report failures through
// a notify.Presenter instead of returning bare errors.
package fetch

import (
	"context"
	"errors"
	"net/http"

	"github.com/nicolasacchi/sessioncli/internal/api"
	"github.com/nicolasacchi/sessioncli/internal/notify"
)

// Kind tells apart the outcomes of a fetch.
type Kind int

const (
	KindOK        Kind = iota // data decoded
	KindAPIError              // backend replied with a failure status
	KindTransport             // no reply
	KindBadReply              // reply arrived but its body is not an envelope
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindAPIError:
		return "api_error"
	case KindBadReply:
		return "bad_reply"
	default:
		return "transport"
	}
}

// Result is either Data (KindOK) or Err plus the notification shown for it.
type Result[T any] struct {
	Data   T
	Err    error
	Notice *notify.Notification
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Kind classifies the result.
func (r Result[T]) Kind() Kind {
	if r.Err == nil {
		return KindOK
	}
	var apiErr *api.APIError
	if errors.As(r.Err, &apiErr) {
		return KindAPIError
	}
	var decErr *api.DecodeError
	if errors.As(r.Err, &decErr) {
		return KindBadReply
	}
	return KindTransport
}

// Fetcher pairs the shared client with a presenter.
type Fetcher struct {
	client    *api.Client
	presenter *notify.Presenter
}

// New creates a Fetcher.
func New(c *api.Client, p *notify.Presenter) *Fetcher {
	return &Fetcher{client: c, presenter: p}
}

// Get fetches path and returns the envelope's data. Failures are presented
// and returned in the result, never as a panic or a zero value alone.
func Get[T any](ctx context.Context, f *Fetcher, path string) Result[T] {
	env, err := api.Call[T](ctx, f.client, http.MethodGet, path, nil)
	if err != nil {
		n := f.presenter.Present(err)
		return Result[T]{Err: err, Notice: &n}
	}
	return Result[T]{Data: env.Data}
}
