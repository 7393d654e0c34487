package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/vitalwatch/internal/media"
	"github.com/wolfman30/vitalwatch/internal/vitals"
)

func TestExtractMedia(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		baseline vitals.MediaReference
		want     vitals.MediaReference
	}{
		{
			name: "embed link",
			text: "FIRST AID VIDEO: https://www.youtube.com/embed/abc_12-3",
			want: "https://www.youtube.com/embed/abc_12-3",
		},
		{
			name: "embed preferred over watch",
			text: "see https://www.youtube.com/watch?v=zzz then https://www.youtube.com/embed/yyy",
			want: "https://www.youtube.com/embed/yyy",
		},
		{
			name: "watch rewritten",
			text: "FIRST AID VIDEO: https://www.youtube.com/watch?v=Q9x-7",
			want: "https://www.youtube.com/embed/Q9x-7",
		},
		{
			name:     "none keeps baseline",
			text:     "FIRST AID VIDEO: None",
			baseline: media.FeverVideo,
			want:     media.FeverVideo,
		},
		{
			name:     "other hosts ignored",
			text:     "FIRST AID VIDEO: https://vimeo.com/12345",
			baseline: "",
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMedia(tt.text, tt.baseline))
		})
	}
}

func TestStripVideoSection(t *testing.T) {
	text := "\n  AI HEALTH SUMMARY FOR A. Lee\nStable.\n\nRECOMMENDATION:\n- Rest.\n\nFIRST AID VIDEO: https://www.youtube.com/embed/x\nextra line\n"
	assert.Equal(t, "AI HEALTH SUMMARY FOR A. Lee\nStable.\n\nRECOMMENDATION:\n- Rest.", StripVideoSection(text))
	assert.Equal(t, "no marker here", StripVideoSection("  no marker here  "))
}

func TestParseResponse(t *testing.T) {
	text, ref := ParseResponse("Summary.\nFIRST AID VIDEO: https://www.youtube.com/watch?v=abc", media.CardiacVideo)
	assert.Equal(t, "Summary.", text)
	assert.Equal(t, vitals.MediaReference("https://www.youtube.com/embed/abc"), ref)
}
