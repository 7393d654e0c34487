package notify

import (
	"context"
	"errors"
	"fmt"
)

// Channel is a notification transport family.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Role identifies who receives an alert.
type Role string

const (
	RoleFamily    Role = "family"
	RoleClinician Role = "clinician"
)

// Placeholder stands in for a missing contact field.
const Placeholder = "N/A"

// ErrNoAddress is returned by transports asked to deliver without a recipient.
var ErrNoAddress = errors.New("notify: recipient address not available")

// Message is the content of one notification.
type Message struct {
	Subject string
	Body    string
}

// NotificationSink delivers one message on one channel. Implementations can be
// swapped (log-only, real transports) without changing the dispatcher.
type NotificationSink interface {
	Deliver(ctx context.Context, channel Channel, address string, msg Message) error
}

// Delivery is the outcome of one send.
type Delivery struct {
	Channel Channel
	Role    Role
	Address string
	Err     error
}

// OK reports whether the send succeeded.
func (d Delivery) OK() bool { return d.Err == nil }

// Report collects every delivery attempted for one alert.
type Report struct {
	AlertID    string
	Deliveries []Delivery
}

// OK is true when every delivery succeeded.
func (r Report) OK() bool {
	for _, d := range r.Deliveries {
		if d.Err != nil {
			return false
		}
	}
	return true
}

// Failed lists the deliveries that errored.
func (r Report) Failed() []Delivery {
	var out []Delivery
	for _, d := range r.Deliveries {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}

// Err joins the per-delivery failures, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, d := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s to %s (%s): %w", d.Channel, d.Role, displayAddress(d.Address), d.Err))
	}
	return errors.Join(errs...)
}

// Result summarises the report for logs and metrics.
func (r Report) Result() string {
	failed := len(r.Failed())
	switch {
	case failed == 0:
		return "sent"
	case failed == len(r.Deliveries):
		return "failed"
	default:
		return "partial"
	}
}

func displayAddress(addr string) string {
	if addr == "" {
		return Placeholder
	}
	return addr
}
