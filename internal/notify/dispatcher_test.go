package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/internal/vitals"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

type sent struct {
	channel Channel
	address string
	msg     Message
}

type recordingSink struct {
	mu      sync.Mutex
	sent    []sent
	failFor map[string]error
}

func (s *recordingSink) Deliver(ctx context.Context, channel Channel, address string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{channel: channel, address: address, msg: msg})
	return s.failFor[address]
}

func (s *recordingSink) find(channel Channel, address string) (sent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.sent {
		if m.channel == channel && m.address == address {
			return m, true
		}
	}
	return sent{}, false
}

var (
	family    = vitals.Contact{Email: "fam@example.com", Phone: "+15550001111"}
	clinician = vitals.Contact{Email: "doc@example.com", Phone: "+15550002222"}
)

func TestDispatchAlert_FourDeliveries(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, nil, nil)

	report := d.DispatchAlert(context.Background(), "Ana", "HR: 58bpm, SpO2: 90%, Temp: 39.0C", family, clinician)

	require.Len(t, sink.sent, 4)
	require.Len(t, report.Deliveries, 4)
	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
	assert.Equal(t, "sent", report.Result())
	assert.NotEmpty(t, report.AlertID)

	wantBody := "CRITICAL ALERT: Patient Ana vital signs are outside safe ranges.\nReadings: HR: 58bpm, SpO2: 90%, Temp: 39.0C\nImmediate attention required."

	m, ok := sink.find(ChannelEmail, family.Email)
	require.True(t, ok)
	assert.Equal(t, "EMERGENCY ALERT - Ana", m.msg.Subject)
	assert.Equal(t, wantBody, m.msg.Body)

	m, ok = sink.find(ChannelEmail, clinician.Email)
	require.True(t, ok)
	assert.Equal(t, "CRITICAL CLINICAL ALERT - Ana", m.msg.Subject)

	for _, phone := range []string{family.Phone, clinician.Phone} {
		m, ok = sink.find(ChannelSMS, phone)
		require.True(t, ok, phone)
		assert.Equal(t, wantBody, m.msg.Body)
	}
}

func TestDispatchAlert_PartialFailure(t *testing.T) {
	sink := &recordingSink{failFor: map[string]error{family.Phone: errors.New("carrier down")}}
	reg := prometheus.NewRegistry()
	m := metrics.NewPipelineMetrics(reg)
	d := NewDispatcher(sink, nil, m)

	report := d.DispatchAlert(context.Background(), "Ana", "desc", family, clinician)

	assert.Len(t, sink.sent, 4, "remaining deliveries still attempted")
	assert.False(t, report.OK())
	assert.Equal(t, "partial", report.Result())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, ChannelSMS, failed[0].Channel)
	assert.Equal(t, RoleFamily, failed[0].Role)
	assert.ErrorContains(t, report.Err(), "carrier down")
	n, err := testutil.GatherAndCount(reg, "vitalwatch_alerts_dispatch_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = testutil.GatherAndCount(reg, "vitalwatch_alerts_deliveries_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestDispatchAlert_MissingContactUsesPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")
	d := NewDispatcher(NewLogSink(logger), logger, nil)

	report := d.DispatchAlert(context.Background(), "Ana", "desc", vitals.Contact{Phone: "+15550001111"}, clinician)

	assert.True(t, report.OK())
	assert.Contains(t, buf.String(), `"to":"N/A"`)
}

func TestDispatchAlert_TransportSinkRejectsMissingAddress(t *testing.T) {
	sink := NewTransportSink(NewStubEmailSender(nil), NewStubSMSSender(nil))
	d := NewDispatcher(sink, nil, nil)

	report := d.DispatchAlert(context.Background(), "Ana", "desc", vitals.Contact{}, clinician)

	assert.Equal(t, "partial", report.Result())
	for _, f := range report.Failed() {
		assert.Equal(t, RoleFamily, f.Role)
		assert.ErrorIs(t, f.Err, ErrNoAddress)
	}
	assert.ErrorContains(t, report.Err(), "(N/A)")
}

func TestTransportSink_Routing(t *testing.T) {
	sink := NewTransportSink(nil, nil)
	assert.Error(t, sink.Deliver(context.Background(), ChannelEmail, "a@example.com", Message{}))
	assert.Error(t, sink.Deliver(context.Background(), ChannelSMS, "+1555", Message{}))
	assert.Error(t, sink.Deliver(context.Background(), Channel("fax"), "x", Message{}))
}

type capturingEmail struct{ sent []EmailMessage }

func (c *capturingEmail) Send(ctx context.Context, msg EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestTransportSink_AlertEmailIsUrgent(t *testing.T) {
	email := &capturingEmail{}
	sink := NewTransportSink(email, nil)

	require.NoError(t, sink.Deliver(context.Background(), ChannelEmail, "doc@example.com", Message{Subject: "CRITICAL CLINICAL ALERT - Ana", Body: "b"}))
	require.Len(t, email.sent, 1)
	assert.Equal(t, EmailMessage{To: "doc@example.com", Subject: "CRITICAL CLINICAL ALERT - Ana", Body: "b", Urgent: true}, email.sent[0])
}

func TestReport_AllFailed(t *testing.T) {
	r := Report{Deliveries: []Delivery{{Err: errors.New("a")}, {Err: errors.New("b")}}}
	assert.Equal(t, "failed", r.Result())
}

func TestDescribeReadings(t *testing.T) {
	s := vitals.Sample{HeartRateBPM: 58, TemperatureC: 39, SpO2Percent: 90}
	assert.Equal(t, "HR: 58bpm, SpO2: 90%, Temp: 39.0C", DescribeReadings(s))
}
