package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/templui/passreset/internal/model"
)

// Mailer delivers a rendered message. One call is one delivery attempt.
type Mailer interface {
	Send(ctx context.Context, msg *model.DeliveryMessage) error
}

var ErrEmailNotConfigured = errors.New("email service not configured (missing RESEND_API_KEY)")

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
	}
}

// Send delivers msg through Resend. In development the message is only logged.
func (s *EmailService) Send(ctx context.Context, msg *model.DeliveryMessage) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "password_reset", "to", msg.To, "subject", msg.Subject, "url", msg.URL)
		return nil
	}

	if s.client == nil {
		return ErrEmailNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	slog.Info("email sent", "type", "password_reset", "to", msg.To)
	return nil
}

// Compile-time interface check.
var _ Mailer = (*EmailService)(nil)
