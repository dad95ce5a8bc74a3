package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// Message is an outbound email
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers email
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns a SendGrid sender, or a logging sender when no API key is configured
func New(cfg config.SendGridConfig, log *logger.Logger) Sender {
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Warn("SENDGRID_API_KEY not set, emails will only be logged")
		return &LogSender{log: log}
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
	}
}

// SendGridSender sends through the SendGrid v3 API
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// Send delivers msg; non-2xx responses are errors
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("email recipient is required")
	}

	m := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail("", msg.To), msg.Text, msg.HTML)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender writes emails to the log instead of sending them
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a logging sender
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("email recipient is required")
	}
	s.log.WithFields(map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("email (not sent)")
	return nil
}
