package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipient is returned when a request has no To address.
var ErrNoRecipient = errors.New("email has no recipient")

// SendRequest is one outgoing notification.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers notifications through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// New picks the Resend sender when apiKey is set and the logging no-op otherwise.
func New(apiKey, from string) Sender {
	if apiKey == "" {
		return NewNoopSender()
	}
	return NewResendSender(apiKey, from)
}
