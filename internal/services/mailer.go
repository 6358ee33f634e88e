package services

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/desertthunder/encore/internal/shared"
)

// MailerService implements [Mailer] against a Resend-style HTTP API.
type MailerService struct {
	client *resty.Client
	from   string
}

type mailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

// NewMailerService creates a mailer from application credentials.
func NewMailerService(cfg shared.MailConfig) (*MailerService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mail api key required: %w", shared.ErrMissingCredentials)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail sender address required: %w", shared.ErrMissingCredentials)
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &MailerService{client: client, from: cfg.From}, nil
}

// Send delivers a single email. Delivery failures do not carry partial
// state; the caller may safely retry.
func (m *MailerService) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	payload := mailPayload{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSendFailed, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: provider returned status %d", shared.ErrSendFailed, resp.StatusCode())
	}

	return nil
}
