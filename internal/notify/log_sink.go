package notify

import (
	"context"

	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// LogSink simulates delivery by logging each notification. It always succeeds.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, channel Channel, address string, msg Message) error {
	s.logger.Info("simulated notification",
		"channel", channel,
		"to", displayAddress(address),
		"subject", msg.Subject,
		"message", msg.Body,
	)
	return nil
}

var _ NotificationSink = (*LogSink)(nil)
