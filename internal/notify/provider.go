package notify

import (
	"fmt"
	"strings"

	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// EmailOptions selects and configures an email transport.
type EmailOptions struct {
	Provider       string
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	SESClient      sesEmailAPI
}

// BuildEmailSender returns the configured email transport. Unknown or
// unconfigured providers fall back to the stub sender.
func BuildEmailSender(opts EmailOptions, logger *logging.Logger) (EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "sendgrid":
		sender := NewSendGridSender(SendGridConfig{APIKey: opts.SendGridAPIKey, FromEmail: opts.FromEmail, FromName: opts.FromName}, logger)
		if sender == nil {
			return nil, fmt.Errorf("notify: sendgrid selected but SENDGRID_API_KEY is empty")
		}
		return sender, nil
	case "ses":
		sender := NewSESSender(opts.SESClient, SESConfig{FromEmail: opts.FromEmail, FromName: opts.FromName}, logger)
		if sender == nil {
			return nil, fmt.Errorf("notify: ses selected but no SES client configured")
		}
		return sender, nil
	case "", "stub", "log":
		return NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("notify: unknown email provider %q", opts.Provider)
	}
}

// SMSOptions selects and configures an SMS transport.
type SMSOptions struct {
	Provider   string
	AccountSID string
	AuthToken  string
	FromNumber string
}

// BuildSMSSender returns the configured SMS transport.
func BuildSMSSender(opts SMSOptions, logger *logging.Logger) (SMSSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "twilio":
		if opts.AccountSID == "" || opts.AuthToken == "" || opts.FromNumber == "" {
			return nil, fmt.Errorf("notify: twilio selected but credentials are incomplete")
		}
		return NewTwilioSender(opts.AccountSID, opts.AuthToken, opts.FromNumber, logger), nil
	case "", "stub", "log":
		return NewStubSMSSender(logger), nil
	default:
		return nil, fmt.Errorf("notify: unknown sms provider %q", opts.Provider)
	}
}
