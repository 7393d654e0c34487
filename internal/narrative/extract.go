package narrative

import (
	"regexp"
	"strings"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

const (
	embedPrefix       = "https://www.youtube.com/embed/"
	videoSectionLabel = "FIRST AID VIDEO:"
)

var (
	embedLinkPattern = regexp.MustCompile(`https://www\.youtube\.com/embed/[\w-]+`)
	watchLinkPattern = regexp.MustCompile(`https://www\.youtube\.com/watch\?v=([\w-]+)`)
	videoSection     = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(videoSectionLabel) + `.*`)
)

// ExtractMedia finds a video link in generated text. An embeddable link wins;
// a watch link is rewritten to the embeddable form; otherwise baseline is kept.
func ExtractMedia(text string, baseline vitals.MediaReference) vitals.MediaReference {
	if m := embedLinkPattern.FindString(text); m != "" {
		return vitals.MediaReference(m)
	}
	if m := watchLinkPattern.FindStringSubmatch(text); len(m) == 2 {
		return vitals.MediaReference(embedPrefix + m[1])
	}
	return baseline
}

// StripVideoSection drops everything from the video label onward and trims
// the remainder.
func StripVideoSection(text string) string {
	return strings.TrimSpace(videoSection.ReplaceAllString(text, ""))
}

// ParseResponse splits generated text into the narrative shown to readers and
// the structured media reference.
func ParseResponse(text string, baseline vitals.MediaReference) (string, vitals.MediaReference) {
	return StripVideoSection(text), ExtractMedia(text, baseline)
}
