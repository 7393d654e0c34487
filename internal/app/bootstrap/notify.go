package bootstrap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/notify"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

func simulated(provider string) bool {
	switch provider {
	case "", "stub", "log":
		return true
	}
	return false
}

// BuildNotificationSink logs alerts when no real transport is configured and
// routes them through SendGrid/SES and Twilio otherwise.
func BuildNotificationSink(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.NotificationSink, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if simulated(cfg.EmailProvider) && simulated(cfg.SMSProvider) {
		logger.Info("alert delivery is simulated")
		return notify.NewLogSink(logger), nil
	}

	emailOpts := notify.EmailOptions{
		Provider:       cfg.EmailProvider,
		SendGridAPIKey: cfg.SendGridAPIKey,
		FromEmail:      cfg.SendGridFromEmail,
		FromName:       cfg.SendGridFromName,
	}
	if cfg.EmailProvider == "ses" {
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: EMAIL_PROVIDER=ses requires AWS config")
		}
		emailOpts.SESClient = sesv2.NewFromConfig(*awsCfg)
		emailOpts.FromEmail = cfg.SESFromEmail
	}
	email, err := notify.BuildEmailSender(emailOpts, logger)
	if err != nil {
		return nil, err
	}
	sms, err := notify.BuildSMSSender(notify.SMSOptions{
		Provider:   cfg.SMSProvider,
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("alert delivery configured", "email_provider", cfg.EmailProvider, "sms_provider", cfg.SMSProvider)
	return notify.NewTransportSink(email, sms), nil
}
