package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wolfman30/vitalwatch/internal/vitals"
)

// PromptReadings is how many of the newest samples are quoted in the prompt.
const PromptReadings = 5

// The response parser depends on this layout, in particular the
// "FIRST AID VIDEO:" line, so keep headings and order stable.
const promptTemplate = `Act as a professional medical health analyst. Analyze the following vital sign data for patient: %[1]s

RECENT READINGS:
%[2]s

AVERAGES:
- Heart Rate: %.1[3]f bpm
- SpO2: %.1[4]f%%
- Body Temperature: %.1[5]fC

REQUIRED OUTPUT STRUCTURE (MATCH EXACTLY):
AI HEALTH SUMMARY FOR %[1]s
(Write 2-3 sentences here)

ASSESSMENT: (One-line status)

RECOMMENDATION:
- (Step 1)
- (Step 2)

FIRST AID VIDEO: [Insert one relevant medical YouTube link here if vitals are abnormal, else 'None']

IMPORTANT: Use simple hyphens (-) for bullet points. Do not use symbols like '•'.
Do not use bold symbols (**) or heading symbols (#).
`

const fallbackTemplate = `AI HEALTH SUMMARY FOR %s
Vitals are HR:%.1f, SpO2:%.1f%%, Temp:%.1fC.

ASSESSMENT: Patient monitoring in progress.

RECOMMENDATION:
- Continue regular monitoring.`

// BuildPrompt renders the analyst prompt for a non-empty window.
func BuildPrompt(patientName string, w vitals.Window, avg vitals.Averages) string {
	return fmt.Sprintf(promptTemplate,
		patientName,
		FormatReadings(w.Recent(PromptReadings)),
		avg.HeartRate,
		avg.SpO2,
		avg.Temperature,
	)
}

// FormatReadings renders one hyphen bullet per sample.
func FormatReadings(w vitals.Window) string {
	lines := make([]string, 0, len(w))
	for _, s := range w {
		lines = append(lines, fmt.Sprintf("- HR: %dbpm, SpO2: %d%%, Temp: %sC", s.HeartRateBPM, s.SpO2Percent, formatTemperature(s.TemperatureC)))
	}
	return strings.Join(lines, "\n")
}

// FallbackNarrative is the local summary used when the remote call is unusable.
func FallbackNarrative(patientName string, avg vitals.Averages) string {
	return fmt.Sprintf(fallbackTemplate, patientName, avg.HeartRate, avg.SpO2, avg.Temperature)
}

// NoDataNarrative is returned for a patient without readings.
func NoDataNarrative(patientName string) string {
	return fmt.Sprintf("No health data available for %s.", patientName)
}

// formatTemperature keeps at least one decimal ("37.0") without padding
// values that carry more ("36.65").
func formatTemperature(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
