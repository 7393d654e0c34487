package monitor

import (
	"context"
	"strings"

	"github.com/wolfman30/vitalwatch/internal/media"
	"github.com/wolfman30/vitalwatch/internal/narrative"
	"github.com/wolfman30/vitalwatch/internal/notify"
	"github.com/wolfman30/vitalwatch/internal/observability/metrics"
	"github.com/wolfman30/vitalwatch/internal/triage"
	"github.com/wolfman30/vitalwatch/internal/vitals"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// Assessment is the dashboard view of one patient's window.
type Assessment struct {
	Status     vitals.Status
	Media      vitals.MediaReference
	Concern    media.Concern
	DangerFlag bool
	Gate       bool
	Latest     vitals.Sample
	HasData    bool
}

// Outcome is the result of evaluating one ingestion event.
type Outcome struct {
	Assessment Assessment
	Alerted    bool
	Suppressed bool
	Report     notify.Report
}

// Pipeline wires triage, media advice, narratives and alert dispatch together.
type Pipeline struct {
	classifier *triage.Classifier
	advisor    *media.Advisor
	generator  *narrative.Generator
	dispatcher *notify.Dispatcher
	suppressor Suppressor
	metrics    *metrics.PipelineMetrics
	logger     *logging.Logger
	windowSize int
}

// Deps are the collaborators a Pipeline needs. Suppressor and Metrics are optional.
type Deps struct {
	Classifier *triage.Classifier
	Advisor    *media.Advisor
	Generator  *narrative.Generator
	Dispatcher *notify.Dispatcher
	Suppressor Suppressor
	Metrics    *metrics.PipelineMetrics
	Logger     *logging.Logger
	WindowSize int
}

// NewPipeline validates deps and returns a ready pipeline.
func NewPipeline(deps Deps) *Pipeline {
	if deps.Classifier == nil {
		panic("monitor: classifier cannot be nil")
	}
	if deps.Advisor == nil {
		panic("monitor: advisor cannot be nil")
	}
	if deps.Generator == nil {
		panic("monitor: generator cannot be nil")
	}
	if deps.Dispatcher == nil {
		panic("monitor: dispatcher cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.WindowSize <= 0 {
		deps.WindowSize = vitals.DefaultWindowSize
	}
	return &Pipeline{
		classifier: deps.Classifier,
		advisor:    deps.Advisor,
		generator:  deps.Generator,
		dispatcher: deps.Dispatcher,
		suppressor: deps.Suppressor,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		windowSize: deps.WindowSize,
	}
}

// WindowSize is the number of samples loaded per patient.
func (p *Pipeline) WindowSize() int { return p.windowSize }

func (p *Pipeline) ClassifyLatest(w vitals.Window) vitals.Status {
	return p.classifier.ClassifyLatest(w)
}

func (p *Pipeline) AdviseMedia(w vitals.Window) vitals.MediaReference {
	ref, _ := p.advisor.AdviseWindow(w)
	return ref
}

func (p *Pipeline) EvaluateAlertGate(w vitals.Window) bool {
	return p.classifier.EvaluateAlertGate(w)
}

// GenerateSummary never fails; remote errors degrade to the local summary.
func (p *Pipeline) GenerateSummary(ctx context.Context, w vitals.Window, patientName string) vitals.Summary {
	return p.generator.Generate(ctx, w, patientName)
}

func (p *Pipeline) DispatchAlert(ctx context.Context, patientName, description string, family, clinician vitals.Contact) notify.Report {
	return p.dispatcher.DispatchAlert(ctx, patientName, description, family, clinician)
}

// Assess builds the dashboard view for a window.
func (p *Pipeline) Assess(w vitals.Window) Assessment {
	ref, concern := p.advisor.AdviseWindow(w)
	a := Assessment{
		Status:  p.classifier.ClassifyLatest(w),
		Media:   ref,
		Concern: concern,
		Gate:    p.classifier.EvaluateAlertGate(w),
	}
	if latest, ok := w.Latest(); ok {
		a.Latest = latest
		a.HasData = true
		a.DangerFlag = p.classifier.DangerFlag(latest)
	}
	return a
}

// Ingest evaluates the window after a new sample arrives and raises an alert
// when the newest sample crosses the gate. Delivery failures are reported in
// the outcome, not as an error.
func (p *Pipeline) Ingest(ctx context.Context, patient vitals.Patient, w vitals.Window) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	logger := p.logger.ForPatient(patient.ID)

	out := Outcome{Assessment: p.Assess(w)}
	p.metrics.ObserveClassification(out.Assessment.Status.String())
	if !out.Assessment.Gate {
		return out, nil
	}
	p.metrics.ObserveGateTrip()

	reasons := p.classifier.GateReasons(w)
	allowed := true
	if p.suppressor != nil {
		ok, err := p.suppressor.Allow(ctx, patient.ID)
		if err != nil {
			// An unreachable suppressor must not swallow an emergency.
			logger.Warn("alert suppressor unavailable, dispatching anyway", "error", err)
		} else {
			allowed = ok
		}
	}
	if !allowed {
		out.Suppressed = true
		p.metrics.ObserveAlert("suppressed")
		logger.Info("alert suppressed during cooldown", "reasons", strings.Join(reasons, ", "))
		return out, nil
	}

	logger.Warn("alert gate tripped", "reasons", strings.Join(reasons, ", "))
	out.Report = p.dispatcher.DispatchAlert(ctx, patient.Name, notify.DescribeReadings(out.Assessment.Latest), patient.Family, patient.Clinician)
	out.Alerted = true
	return out, nil
}
