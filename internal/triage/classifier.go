package triage

import "github.com/wolfman30/vitalwatch/internal/vitals"

// Classifier applies the dashboard, alert-gate and ward policies to samples.
type Classifier struct {
	policies PolicySet
}

// NewClassifier builds a classifier over the given policy set.
func NewClassifier(policies PolicySet) *Classifier {
	return &Classifier{policies: policies}
}

// Policies returns the active policy set.
func (c *Classifier) Policies() PolicySet {
	return c.policies
}

// ClassifySample labels one reading. Critical is checked before warning.
func (c *Classifier) ClassifySample(s vitals.Sample) vitals.Status {
	a := vitals.Of(s)
	switch {
	case c.policies.DashboardCritical.Breached(a):
		return vitals.StatusCritical
	case c.policies.DashboardWarning.Breached(a):
		return vitals.StatusWarning
	default:
		return vitals.StatusNormal
	}
}

// ClassifyLatest labels the newest sample in the window, or reports no data.
func (c *Classifier) ClassifyLatest(w vitals.Window) vitals.Status {
	s, ok := w.Latest()
	if !ok {
		return vitals.StatusNoData
	}
	return c.ClassifySample(s)
}

// LegacyClassifyLatest classifies a zero sample when the window is empty, so
// patients without readings show as critical.
func (c *Classifier) LegacyClassifyLatest(w vitals.Window) vitals.Status {
	return c.ClassifySample(w.LegacyLatest())
}

// EvaluateAlertGate reports whether the newest sample crosses the alert gate.
// An empty window never trips the gate.
func (c *Classifier) EvaluateAlertGate(w vitals.Window) bool {
	s, ok := w.Latest()
	if !ok {
		return false
	}
	return c.policies.AlertGate.Breached(vitals.Of(s))
}

// GateReasons lists the alert-gate bounds the newest sample crossed.
func (c *Classifier) GateReasons(w vitals.Window) []string {
	s, ok := w.Latest()
	if !ok {
		return nil
	}
	return c.policies.AlertGate.Reasons(vitals.Of(s))
}

// DangerFlag is the ward list's red marker for a single reading.
func (c *Classifier) DangerFlag(s vitals.Sample) bool {
	return c.policies.WardDanger.Breached(vitals.Of(s))
}
