package notify

import (
	"context"
	"fmt"
	"strings"
)

// TransportSink routes email to an EmailSender and SMS to an SMSSender.
type TransportSink struct {
	email EmailSender
	sms   SMSSender
}

// NewTransportSink builds a sink over real transports. Either may be nil, in
// which case deliveries on that channel fail.
func NewTransportSink(email EmailSender, sms SMSSender) *TransportSink {
	return &TransportSink{email: email, sms: sms}
}

func (s *TransportSink) Deliver(ctx context.Context, channel Channel, address string, msg Message) error {
	if strings.TrimSpace(address) == "" {
		return ErrNoAddress
	}
	switch channel {
	case ChannelEmail:
		if s.email == nil {
			return fmt.Errorf("notify: email transport not configured")
		}
		return s.email.Send(ctx, EmailMessage{To: address, Subject: msg.Subject, Body: msg.Body, Urgent: true})
	case ChannelSMS:
		if s.sms == nil {
			return fmt.Errorf("notify: sms transport not configured")
		}
		return s.sms.SendSMS(ctx, address, msg.Body)
	default:
		return fmt.Errorf("notify: unsupported channel %q", channel)
	}
}

var _ NotificationSink = (*TransportSink)(nil)
