package vitals

import (
	"sort"
	"time"
)

// DefaultWindowSize is how many recent samples narrative and report callers load.
const DefaultWindowSize = 20

// Sample is one reading from a patient's monitor.
type Sample struct {
	HeartRateBPM int       `json:"heart_rate"`
	TemperatureC float64   `json:"temperature"`
	SpO2Percent  int       `json:"spo2"`
	Timestamp    time.Time `json:"timestamp"`
}

// Window is a chronological (oldest first) run of samples for one patient.
type Window []Sample

// Averages holds arithmetic means over a window.
type Averages struct {
	HeartRate   float64
	Temperature float64
	SpO2        float64
}

// Of returns the averages of a single sample.
func Of(s Sample) Averages {
	return Averages{
		HeartRate:   float64(s.HeartRateBPM),
		Temperature: s.TemperatureC,
		SpO2:        float64(s.SpO2Percent),
	}
}

// Latest returns the most recent sample.
func (w Window) Latest() (Sample, bool) {
	if len(w) == 0 {
		return Sample{}, false
	}
	return w[len(w)-1], true
}

// LegacyLatest returns the most recent sample, or a zero sample when the window
// is empty. Zero readings classify as critical under every threshold set.
func (w Window) LegacyLatest() Sample {
	s, _ := w.Latest()
	return s
}

// Recent returns at most n of the newest samples, still oldest first.
func (w Window) Recent(n int) Window {
	if n <= 0 {
		return Window{}
	}
	if len(w) <= n {
		return w
	}
	return w[len(w)-n:]
}

// Averages computes the mean of each vital across the window.
func (w Window) Averages() (Averages, bool) {
	if len(w) == 0 {
		return Averages{}, false
	}
	var hr, temp, spo2 float64
	for _, s := range w {
		hr += float64(s.HeartRateBPM)
		temp += s.TemperatureC
		spo2 += float64(s.SpO2Percent)
	}
	n := float64(len(w))
	return Averages{HeartRate: hr / n, Temperature: temp / n, SpO2: spo2 / n}, true
}

// Chronological returns a copy sorted oldest first. Storage may hand windows
// back newest first; the pipeline normalises once at the boundary.
func (w Window) Chronological() Window {
	out := make(Window, len(w))
	copy(out, w)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// WithSample returns a copy of the window with s appended unless a sample with
// the same timestamp is already present. Older samples are trimmed so the
// result holds at most limit entries (limit <= 0 means unbounded).
func (w Window) WithSample(s Sample, limit int) Window {
	for _, existing := range w {
		if existing.Timestamp.Equal(s.Timestamp) {
			return w.trim(limit)
		}
	}
	out := make(Window, 0, len(w)+1)
	out = append(out, w...)
	out = append(out, s)
	return out.Chronological().trim(limit)
}

func (w Window) trim(limit int) Window {
	if limit <= 0 {
		return w
	}
	return w.Recent(limit)
}
