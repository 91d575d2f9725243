package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers transactional email. Implementations must return an
// error when delivery fails so callers can surface it.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SendGridMailer delivers mail through the SendGrid API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), body, body)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed with status %d", resp.StatusCode)
	}

	return nil
}

// ConsoleMailer logs mail instead of sending it; used in development
// when no SendGrid key is configured.
type ConsoleMailer struct {
	logger *slog.Logger
}

func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

func (m *ConsoleMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "Email (console delivery)",
		"to", to,
		"subject", subject,
		"body", body)
	return nil
}
