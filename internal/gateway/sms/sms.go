package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// Sender delivers one text message and returns the provider message id
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// New returns a Twilio sender, or a logging sender when no account SID is configured
func New(cfg config.TwilioConfig, log *logger.Logger) Sender {
	if strings.TrimSpace(cfg.AccountSID) == "" {
		log.Warn("TWILIO_ACCOUNT_SID not set, SMS will only be logged")
		return NewLogSender(log)
	}
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from: cfg.FromNumber,
	}
}

// TwilioSender sends through the Twilio Messages API
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// Send delivers body to the E.164 number
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if to == "" {
		return "", errors.New("sms recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio: %w", err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// LogSender writes messages to the log instead of sending them
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a logging sender
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message and returns a synthetic id
func (s *LogSender) Send(_ context.Context, to, body string) (string, error) {
	if to == "" {
		return "", errors.New("sms recipient is required")
	}
	id := "log-" + uuid.NewString()
	s.log.WithFields(map[string]any{
		"to":     to,
		"length": len(body),
		"id":     id,
	}).Info("sms (not sent)")
	return id, nil
}
