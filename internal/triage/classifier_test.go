package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

func sample(hr int, temp float64, spo2 int) vitals.Sample {
	return vitals.Sample{HeartRateBPM: hr, TemperatureC: temp, SpO2Percent: spo2}
}

func TestClassifyLatest(t *testing.T) {
	c := NewClassifier(DefaultPolicies())

	tests := []struct {
		name string
		s    vitals.Sample
		want vitals.Status
	}{
		{"normal", sample(75, 36.8, 98), vitals.StatusNormal},
		{"bradycardia critical", sample(59, 36.8, 98), vitals.StatusCritical},
		{"hr 60 is not low", sample(60, 36.8, 98), vitals.StatusNormal},
		{"tachycardia critical", sample(101, 36.8, 98), vitals.StatusCritical},
		{"hr 100 is warning", sample(100, 36.8, 98), vitals.StatusWarning},
		{"hr 91 warning", sample(91, 36.8, 98), vitals.StatusWarning},
		{"hr 90 normal", sample(90, 36.8, 98), vitals.StatusNormal},
		{"fever critical", sample(75, 38.1, 98), vitals.StatusCritical},
		{"temp 38 warning", sample(75, 38.0, 98), vitals.StatusWarning},
		{"temp 37.5 normal", sample(75, 37.5, 98), vitals.StatusNormal},
		{"spo2 93 critical", sample(75, 36.8, 93), vitals.StatusCritical},
		{"spo2 94 warning", sample(75, 36.8, 94), vitals.StatusWarning},
		{"spo2 96 normal", sample(75, 36.8, 96), vitals.StatusNormal},
		{"critical wins over warning", sample(95, 36.8, 90), vitals.StatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyLatest(vitals.Window{tt.s}))
		})
	}
}

func TestClassifyLatestUsesNewestSample(t *testing.T) {
	c := NewClassifier(DefaultPolicies())
	w := vitals.Window{sample(40, 40, 80), sample(75, 36.8, 98)}
	assert.Equal(t, vitals.StatusNormal, c.ClassifyLatest(w))
}

func TestEmptyWindow(t *testing.T) {
	c := NewClassifier(DefaultPolicies())
	assert.Equal(t, vitals.StatusNoData, c.ClassifyLatest(nil))
	assert.False(t, c.EvaluateAlertGate(nil))
	assert.Nil(t, c.GateReasons(nil))
	assert.Equal(t, vitals.StatusCritical, c.LegacyClassifyLatest(nil))
}

func TestAlertGateIsStricterThanDashboard(t *testing.T) {
	c := NewClassifier(DefaultPolicies())

	w := vitals.Window{sample(102, 36.0, 97)}
	assert.Equal(t, vitals.StatusCritical, c.ClassifyLatest(w))
	assert.False(t, c.EvaluateAlertGate(w))

	w = vitals.Window{sample(58, 39.0, 90)}
	assert.Equal(t, vitals.StatusCritical, c.ClassifyLatest(w))
	assert.True(t, c.EvaluateAlertGate(w))
	assert.ElementsMatch(t, []string{
		"heart_rate 58 < 60",
		"temperature 39 > 38.5",
		"spo2 90 < 92",
	}, c.GateReasons(w))
}

func TestAlertGateBoundaries(t *testing.T) {
	c := NewClassifier(DefaultPolicies())
	tests := []struct {
		s    vitals.Sample
		want bool
	}{
		{sample(105, 36.8, 98), false},
		{sample(106, 36.8, 98), true},
		{sample(60, 36.8, 98), false},
		{sample(75, 38.5, 98), false},
		{sample(75, 38.6, 98), true},
		{sample(75, 36.8, 92), false},
		{sample(75, 36.8, 91), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.EvaluateAlertGate(vitals.Window{tt.s}), "%+v", tt.s)
	}
}

func TestDangerFlag(t *testing.T) {
	c := NewClassifier(DefaultPolicies())
	assert.False(t, c.DangerFlag(sample(110, 38.0, 90)))
	assert.True(t, c.DangerFlag(sample(111, 37.0, 98)))
	assert.True(t, c.DangerFlag(sample(75, 34.9, 98)))
	assert.True(t, c.DangerFlag(sample(75, 36.8, 89)))
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "alert_gate{hr<60 hr>105 temp>38.5 spo2<92}", DefaultPolicies().AlertGate.String())
}
