package ingest

import (
	"testing"

	"github.com/chartflow/backend/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		ext  string
		want models.Lane
	}{
		{"png", models.LaneImageOCR},
		{"jpg", models.LaneImageOCR},
		{"jpeg", models.LaneImageOCR},
		{"JPEG", models.LaneImageOCR},
		{".png", models.LaneImageOCR},
		{"csv", models.LaneTabularDirect},
		{"CSV", models.LaneTabularDirect},
		{"gif", models.LaneImagePassthrough},
		{"mp3", models.LaneAudioPassthrough},
		{"wav", models.LaneAudioPassthrough},
		{"WaV", models.LaneAudioPassthrough},
		{"xlsx", models.LaneUnsupported},
		{"tsv", models.LaneUnsupported},
		{"webp", models.LaneUnsupported},
		{"", models.LaneUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := Classify(tt.ext); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLaneIsPassthrough(t *testing.T) {
	if !Classify("gif").IsPassthrough() || !Classify("mp3").IsPassthrough() {
		t.Error("gif and mp3 should be passthrough lanes")
	}
	if Classify("png").IsPassthrough() || Classify("csv").IsPassthrough() {
		t.Error("png and csv should not be passthrough lanes")
	}
}
