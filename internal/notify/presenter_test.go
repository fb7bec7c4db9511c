package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/nicolasacchi/sessioncli/internal/api"
)

type recorder struct {
	got []Notification
}

func (r *recorder) Notify(n Notification) {
	r.got = append(r.got, n)
}

func envelopeErr(status, code int, message string) error {
	return &api.APIError{
		StatusCode: status,
		Envelope:   &api.Envelope[json.RawMessage]{Code: code, Message: message},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
		wantDesc  string
	}{
		{"validation", envelopeErr(422, 422, "Invalid field"), "VALIDATION_ERROR", "Invalid field"},
		{"unknown code empty message", envelopeErr(500, 999, ""), "Error", "Something went wrong"},
		{"known code empty message", envelopeErr(404, 404, ""), "NOT_FOUND", "Something went wrong"},
		{"zero code", envelopeErr(400, 0, "bad input"), "Error", "bad input"},
		{"envelope code wins over status", envelopeErr(400, 409, "taken"), "CONFLICT", "taken"},
		{"no envelope", &api.APIError{StatusCode: 502}, "Error", "Something went wrong"},
		{"network failure", &api.TransportError{Err: errors.New("connection refused")}, "Error", "Something went wrong"},
		{"plain error", errors.New("boom"), "Error", "Something went wrong"},
		{"wrapped", fmt.Errorf("loading: %w", envelopeErr(403, 403, "nope")), "FORBIDDEN", "nope"},
		{"nil", nil, "Error", "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Classify(tt.err)
			if n.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", n.Title, tt.wantTitle)
			}
			if n.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", n.Description, tt.wantDesc)
			}
			if n.Severity != SeverityError {
				t.Errorf("Severity = %q, want %q", n.Severity, SeverityError)
			}
		})
	}
}

func TestPresenter_Notifies(t *testing.T) {
	rec := &recorder{}
	p := NewPresenter(rec)

	n := p.Present(envelopeErr(422, 422, "Invalid field"))

	if len(rec.got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(rec.got))
	}
	if rec.got[0] != n {
		t.Errorf("notified %+v, returned %+v", rec.got[0], n)
	}
	if n.Title != "VALIDATION_ERROR" || n.Description != "Invalid field" {
		t.Errorf("notification = %+v", n)
	}
}

func TestPresenter_NilNotifier(t *testing.T) {
	n := NewPresenter(nil).Present(errors.New("offline"))
	if n.Title != DefaultTitle || n.Description != DefaultDescription {
		t.Errorf("notification = %+v, want generic", n)
	}
}
