package vitals

// Status is the severity label derived from a reading. It is never stored.
type Status int

const (
	// StatusNoData means there was nothing to classify.
	StatusNoData Status = iota
	StatusNormal
	StatusWarning
	StatusCritical
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	default:
		return "no_data"
	}
}

// MediaReference points at an instructional first-aid video. Empty means none.
type MediaReference string

// None reports whether no video is attached.
func (m MediaReference) None() bool { return m == "" }

// Contact is how to reach a family member or clinician.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Patient is the identity and contact data supplied by storage.
type Patient struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Family    Contact `json:"family"`
	Clinician Contact `json:"clinician"`
}

// SummarySource records which path produced a summary.
type SummarySource string

const (
	SourceAI       SummarySource = "ai"
	SourceFallback SummarySource = "fallback"
	SourceNoData   SummarySource = "no_data"
)

// Summary is the narrative handed to report rendering.
type Summary struct {
	Narrative string
	Media     MediaReference
	Source    SummarySource
}
