package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"portfolio/internal/adapters/email"
	"portfolio/internal/domain/message"
)

// MessageCreator stores a new contact message.
type MessageCreator interface {
	Create(ctx context.Context, m message.Message) (string, error)
}

// SubmitContactInput carries the public contact form.
type SubmitContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// SubmitContactDeps holds dependencies for SubmitContact.
type SubmitContactDeps struct {
	Messages MessageCreator
	Sender   email.Sender // nil disables notification
	NotifyTo string       // empty disables notification
	Now      func() time.Time
}

// ExecuteSubmitContact validates and stores a visitor message, then notifies the owner.
// PRE: none
// POST: a messages record with read=false exists; notification failure is only logged
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps SubmitContactDeps) (string, error) {
	now := deps.Now()
	msg := message.Message{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Subject:   strings.TrimSpace(input.Subject),
		Body:      strings.TrimSpace(input.Message),
		Read:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}

	id, err := deps.Messages.Create(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("store message: %w", err)
	}
	slog.Info("contact_event", "event", "message_received", "message_id", id, "from", msg.Email)

	if deps.Sender != nil && deps.NotifyTo != "" {
		if _, err := deps.Sender.Send(ctx, contactNotification(msg, deps.NotifyTo)); err != nil {
			slog.Warn("contact_event", "event", "notify_failed", "message_id", id, "error", err)
		}
	}
	return id, nil
}

func contactNotification(m message.Message, to string) email.SendRequest {
	subject := m.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	text := fmt.Sprintf("From: %s <%s>\nSubject: %s\n\n%s\n", m.Name, m.Email, subject, m.Body)
	body := fmt.Sprintf("<p><strong>From:</strong> %s &lt;%s&gt;</p><p><strong>Subject:</strong> %s</p><p>%s</p>",
		html.EscapeString(m.Name), html.EscapeString(m.Email), html.EscapeString(subject),
		strings.ReplaceAll(html.EscapeString(m.Body), "\n", "<br>"))
	return email.SendRequest{
		To:      []string{to},
		ReplyTo: m.Email,
		Subject: "New portfolio message: " + subject,
		Text:    text,
		HTML:    body,
	}
}
