package message

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for contact-form fields.
const (
	MaxNameLength    = 120
	MaxSubjectLength = 200
	MaxBodyLength    = 5000
)

// Domain errors
var (
	ErrEmptyName     = errors.New("name is required")
	ErrInvalidEmail  = errors.New("a valid email is required")
	ErrEmptyBody     = errors.New("message cannot be empty")
	ErrFieldTooLong  = errors.New("field exceeds maximum length")
	ErrMissingCreate = errors.New("created_at must be set")
)

// Message is a contact-form submission from a site visitor.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Message has valid data.
// PRE: Message struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyBody
	}
	if len(m.Name) > MaxNameLength || len(m.Subject) > MaxSubjectLength || len(m.Body) > MaxBodyLength {
		return ErrFieldTooLong
	}
	return nil
}

// ToggleRead flips the read state.
// POST: Read is negated
func (m *Message) ToggleRead() {
	m.Read = !m.Read
}

// CountUnread returns how many messages have read = false.
func CountUnread(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		if !m.Read {
			n++
		}
	}
	return n
}
