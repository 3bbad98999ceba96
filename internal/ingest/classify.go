package ingest

import (
	"strings"

	"github.com/chartflow/backend/internal/models"
)

var lanesByExtension = map[string]models.Lane{
	"png":  models.LaneImageOCR,
	"jpg":  models.LaneImageOCR,
	"jpeg": models.LaneImageOCR,
	"csv":  models.LaneTabularDirect,
	"gif":  models.LaneImagePassthrough,
	"mp3":  models.LaneAudioPassthrough,
	"wav":  models.LaneAudioPassthrough,
}

// Classify maps a file extension (with or without the leading dot) to its
// handling lane. Matching is case-insensitive.
func Classify(extension string) models.Lane {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
	if lane, ok := lanesByExtension[ext]; ok {
		return lane
	}
	return models.LaneUnsupported
}
