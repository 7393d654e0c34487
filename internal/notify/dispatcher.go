package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/internal/vitals"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// AlertEvent exists only for the duration of one dispatch.
type AlertEvent struct {
	ID          string
	PatientName string
	Description string
	Family      vitals.Contact
	Clinician   vitals.Contact
	Raised      time.Time
}

// Dispatcher fans one emergency alert out to family and clinician over email and SMS.
type Dispatcher struct {
	sink    NotificationSink
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
	now     func() time.Time
}

// NewDispatcher builds a dispatcher. m may be nil.
func NewDispatcher(sink NotificationSink, logger *logging.Logger, m *metrics.PipelineMetrics) *Dispatcher {
	if sink == nil {
		panic("notify: notification sink cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sink: sink, logger: logger, metrics: m, now: time.Now}
}

// NewAlertEvent stamps an alert with an id and time.
func (d *Dispatcher) NewAlertEvent(patientName, description string, family, clinician vitals.Contact) AlertEvent {
	return AlertEvent{
		ID:          uuid.NewString(),
		PatientName: patientName,
		Description: description,
		Family:      family,
		Clinician:   clinician,
		Raised:      d.now(),
	}
}

// DispatchAlert composes and sends the alert in one call.
func (d *Dispatcher) DispatchAlert(ctx context.Context, patientName, description string, family, clinician vitals.Contact) Report {
	return d.Dispatch(ctx, d.NewAlertEvent(patientName, description, family, clinician))
}

// Dispatch issues the four sends concurrently. A failure on one never stops
// or rolls back the others; every outcome lands in the report.
func (d *Dispatcher) Dispatch(ctx context.Context, evt AlertEvent) Report {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	body := AlertBody(evt.PatientName, evt.Description)
	plan := []struct {
		channel Channel
		role    Role
		address string
		subject string
	}{
		{ChannelEmail, RoleFamily, evt.Family.Email, FamilySubject(evt.PatientName)},
		{ChannelEmail, RoleClinician, evt.Clinician.Email, ClinicianSubject(evt.PatientName)},
		{ChannelSMS, RoleFamily, evt.Family.Phone, ""},
		{ChannelSMS, RoleClinician, evt.Clinician.Phone, ""},
	}

	logger := d.logger.With("alert_id", evt.ID, "patient_name", evt.PatientName)
	logger.Warn("emergency notification triggered", "readings", evt.Description)

	deliveries := make([]Delivery, len(plan))
	var g errgroup.Group
	for i, p := range plan {
		i, p := i, p
		g.Go(func() error {
			err := d.sink.Deliver(ctx, p.channel, p.address, Message{Subject: p.subject, Body: body})
			deliveries[i] = Delivery{Channel: p.channel, Role: p.role, Address: p.address, Err: err}
			d.metrics.ObserveDelivery(string(p.channel), string(p.role), err == nil)
			if err != nil {
				logger.Error("notify: delivery failed", "channel", p.channel, "role", p.role, "to", displayAddress(p.address), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{AlertID: evt.ID, Deliveries: deliveries}
	d.metrics.ObserveAlert(report.Result())
	logger.Info("emergency notification finished", "result", report.Result(), "failed", len(report.Failed()))
	return report
}

// AlertBody is the shared message sent on every channel.
func AlertBody(patientName, description string) string {
	return fmt.Sprintf("CRITICAL ALERT: Patient %s vital signs are outside safe ranges.\nReadings: %s\nImmediate attention required.", patientName, description)
}

// FamilySubject is the email subject sent to family.
func FamilySubject(patientName string) string {
	return "EMERGENCY ALERT - " + patientName
}

// ClinicianSubject is the email subject sent to the clinician.
func ClinicianSubject(patientName string) string {
	return "CRITICAL CLINICAL ALERT - " + patientName
}

// DescribeReadings renders a sample for the alert body.
func DescribeReadings(s vitals.Sample) string {
	return fmt.Sprintf("HR: %dbpm, SpO2: %d%%, Temp: %.1fC", s.HeartRateBPM, s.SpO2Percent, s.TemperatureC)
}
