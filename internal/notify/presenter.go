// Package notify turns failed API calls into user-facing notifications.
package notify

import (
	"errors"

	"github.com/nicolasacchi/sessioncli/internal/api"
)

const (
	DefaultTitle       = "Error"
	DefaultDescription = "Something went wrong"
)

// Severity of a notification. Failures are always SeverityError.
type Severity string

const SeverityError Severity = "error"

// Notification is a message shown to the user about a failed call.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Notifier displays notifications.
type Notifier interface {
	Notify(n Notification)
}

// Classify maps err to a notification. Errors without a decoded envelope
// (network failures, non-JSON bodies) get the generic notification.
func Classify(err error) Notification {
	n := Notification{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Severity:    SeverityError,
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Envelope == nil {
		return n
	}

	if code := apiErr.Envelope.Code; code != 0 {
		n.Title = api.StatusName(code)
	}
	if msg := apiErr.Envelope.Message; msg != "" {
		n.Description = msg
	}
	return n
}

// Presenter is the terminal handler for failures a caller wants shown
// rather than propagated.
type Presenter struct {
	notifier Notifier
}

// NewPresenter creates a Presenter. A nil notifier only classifies.
func NewPresenter(n Notifier) *Presenter {
	return &Presenter{notifier: n}
}

// Present classifies err, hands the result to the notifier and returns it.
func (p *Presenter) Present(err error) Notification {
	n := Classify(err)
	if p.notifier != nil {
		p.notifier.Notify(n)
	}
	return n
}
