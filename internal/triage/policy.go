package triage

import (
	"fmt"
	"strings"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

// Policy names. Each set of cutoffs is tuned on its own; they are deliberately
// not merged into one severity scale.
const (
	PolicyMediaRespiratory  = "media_respiratory"
	PolicyMediaFever        = "media_fever"
	PolicyMediaCardiac      = "media_cardiac"
	PolicyDashboardCritical = "dashboard_critical"
	PolicyDashboardWarning  = "dashboard_warning"
	PolicyAlertGate         = "alert_gate"
	PolicyWardDanger        = "ward_danger"
)

// Bounds are strict cutoffs. A nil bound is not checked.
type Bounds struct {
	HeartRateBelow   *float64 `yaml:"heart_rate_below,omitempty"`
	HeartRateAbove   *float64 `yaml:"heart_rate_above,omitempty"`
	TemperatureBelow *float64 `yaml:"temperature_below,omitempty"`
	TemperatureAbove *float64 `yaml:"temperature_above,omitempty"`
	SpO2Below        *float64 `yaml:"spo2_below,omitempty"`
}

// Policy is a named threshold set.
type Policy struct {
	Name   string
	Bounds Bounds
}

// Breached reports whether any bound is crossed by the given readings.
func (p Policy) Breached(a vitals.Averages) bool {
	b := p.Bounds
	switch {
	case b.HeartRateBelow != nil && a.HeartRate < *b.HeartRateBelow:
		return true
	case b.HeartRateAbove != nil && a.HeartRate > *b.HeartRateAbove:
		return true
	case b.TemperatureBelow != nil && a.Temperature < *b.TemperatureBelow:
		return true
	case b.TemperatureAbove != nil && a.Temperature > *b.TemperatureAbove:
		return true
	case b.SpO2Below != nil && a.SpO2 < *b.SpO2Below:
		return true
	}
	return false
}

// Reasons lists every crossed bound, e.g. "spo2 90 < 92".
func (p Policy) Reasons(a vitals.Averages) []string {
	b := p.Bounds
	var out []string
	if b.HeartRateBelow != nil && a.HeartRate < *b.HeartRateBelow {
		out = append(out, fmt.Sprintf("heart_rate %g < %g", a.HeartRate, *b.HeartRateBelow))
	}
	if b.HeartRateAbove != nil && a.HeartRate > *b.HeartRateAbove {
		out = append(out, fmt.Sprintf("heart_rate %g > %g", a.HeartRate, *b.HeartRateAbove))
	}
	if b.TemperatureBelow != nil && a.Temperature < *b.TemperatureBelow {
		out = append(out, fmt.Sprintf("temperature %g < %g", a.Temperature, *b.TemperatureBelow))
	}
	if b.TemperatureAbove != nil && a.Temperature > *b.TemperatureAbove {
		out = append(out, fmt.Sprintf("temperature %g > %g", a.Temperature, *b.TemperatureAbove))
	}
	if b.SpO2Below != nil && a.SpO2 < *b.SpO2Below {
		out = append(out, fmt.Sprintf("spo2 %g < %g", a.SpO2, *b.SpO2Below))
	}
	return out
}

// String renders the policy for logs.
func (p Policy) String() string {
	return p.Name + "{" + strings.Join(p.describe(), " ") + "}"
}

func (p Policy) describe() []string {
	b := p.Bounds
	var parts []string
	if b.HeartRateBelow != nil {
		parts = append(parts, fmt.Sprintf("hr<%g", *b.HeartRateBelow))
	}
	if b.HeartRateAbove != nil {
		parts = append(parts, fmt.Sprintf("hr>%g", *b.HeartRateAbove))
	}
	if b.TemperatureBelow != nil {
		parts = append(parts, fmt.Sprintf("temp<%g", *b.TemperatureBelow))
	}
	if b.TemperatureAbove != nil {
		parts = append(parts, fmt.Sprintf("temp>%g", *b.TemperatureAbove))
	}
	if b.SpO2Below != nil {
		parts = append(parts, fmt.Sprintf("spo2<%g", *b.SpO2Below))
	}
	return parts
}

// PolicySet groups every threshold set the pipeline uses.
type PolicySet struct {
	MediaRespiratory  Policy
	MediaFever        Policy
	MediaCardiac      Policy
	DashboardCritical Policy
	DashboardWarning  Policy
	AlertGate         Policy
	WardDanger        Policy
}

func f(v float64) *float64 { return &v }

// DefaultPolicies returns the built-in clinical cutoffs.
func DefaultPolicies() PolicySet {
	return PolicySet{
		MediaRespiratory: Policy{Name: PolicyMediaRespiratory, Bounds: Bounds{
			SpO2Below: f(96),
		}},
		MediaFever: Policy{Name: PolicyMediaFever, Bounds: Bounds{
			TemperatureAbove: f(37.5),
		}},
		MediaCardiac: Policy{Name: PolicyMediaCardiac, Bounds: Bounds{
			HeartRateBelow: f(60),
			HeartRateAbove: f(90),
		}},
		DashboardCritical: Policy{Name: PolicyDashboardCritical, Bounds: Bounds{
			HeartRateBelow:   f(60),
			HeartRateAbove:   f(100),
			TemperatureAbove: f(38),
			SpO2Below:        f(94),
		}},
		DashboardWarning: Policy{Name: PolicyDashboardWarning, Bounds: Bounds{
			HeartRateAbove:   f(90),
			TemperatureAbove: f(37.5),
			SpO2Below:        f(96),
		}},
		AlertGate: Policy{Name: PolicyAlertGate, Bounds: Bounds{
			HeartRateBelow:   f(60),
			HeartRateAbove:   f(105),
			TemperatureAbove: f(38.5),
			SpO2Below:        f(92),
		}},
		WardDanger: Policy{Name: PolicyWardDanger, Bounds: Bounds{
			HeartRateBelow:   f(60),
			HeartRateAbove:   f(110),
			TemperatureBelow: f(35),
			TemperatureAbove: f(38),
			SpO2Below:        f(90),
		}},
	}
}

// byName exposes the set's policies for override lookups.
func (s *PolicySet) byName() map[string]*Policy {
	return map[string]*Policy{
		PolicyMediaRespiratory:  &s.MediaRespiratory,
		PolicyMediaFever:        &s.MediaFever,
		PolicyMediaCardiac:      &s.MediaCardiac,
		PolicyDashboardCritical: &s.DashboardCritical,
		PolicyDashboardWarning:  &s.DashboardWarning,
		PolicyAlertGate:         &s.AlertGate,
		PolicyWardDanger:        &s.WardDanger,
	}
}
