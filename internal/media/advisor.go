package media

import (
	"github.com/wolfman30/vitalwatch/internal/triage"
	"github.com/wolfman30/vitalwatch/internal/vitals"
)

// Concern names the first-aid topic a video covers.
type Concern string

const (
	ConcernNone        Concern = ""
	ConcernRespiratory Concern = "respiratory"
	ConcernFever       Concern = "fever"
	ConcernCardiac     Concern = "cardiac"
)

// Catalog references. All use the embeddable link form.
const (
	RespiratoryVideo vitals.MediaReference = "https://www.youtube.com/embed/gDmy0of0XAk" // breathing / unresponsive
	FeverVideo       vitals.MediaReference = "https://www.youtube.com/embed/fS5R-b8vWvM"
	CardiacVideo     vitals.MediaReference = "https://www.youtube.com/embed/gDAt7GZp3u0" // heart attack
)

type rule struct {
	policy  triage.Policy
	concern Concern
	ref     vitals.MediaReference
}

// Advisor picks a first-aid video from window averages. Rules are checked in
// priority order and the first match wins.
type Advisor struct {
	rules []rule
}

// NewAdvisor builds an advisor from the media policies in the set.
func NewAdvisor(policies triage.PolicySet) *Advisor {
	return &Advisor{rules: []rule{
		{policy: policies.MediaRespiratory, concern: ConcernRespiratory, ref: RespiratoryVideo},
		{policy: policies.MediaFever, concern: ConcernFever, ref: FeverVideo},
		{policy: policies.MediaCardiac, concern: ConcernCardiac, ref: CardiacVideo},
	}}
}

// Suggest returns the video for the averages, or none when all are in range.
func (a *Advisor) Suggest(avg vitals.Averages) (vitals.MediaReference, Concern) {
	for _, r := range a.rules {
		if r.policy.Breached(avg) {
			return r.ref, r.concern
		}
	}
	return "", ConcernNone
}

// AdviseWindow averages the window and suggests a video. An empty window has
// no suggestion.
func (a *Advisor) AdviseWindow(w vitals.Window) (vitals.MediaReference, Concern) {
	avg, ok := w.Averages()
	if !ok {
		return "", ConcernNone
	}
	return a.Suggest(avg)
}
