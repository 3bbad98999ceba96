package models

import "time"

// UploadedAsset describes a file persisted by the storage gateway.
type UploadedAsset struct {
	ID           string    `json:"id"`         // uuid prefix, also the chart namespace
	StoredName   string    `json:"storedName"` // "<id>_<originalName>"
	OriginalName string    `json:"originalName"`
	Extension    string    `json:"extension"` // lowercased, no dot
	Path         string    `json:"-"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// TabularAsset is a CSV file ready for the analysis engine.
type TabularAsset struct {
	Path       string `json:"path"`
	SourceLane Lane   `json:"sourceLane"`
}

// ChartArtifact is one image written by the analysis engine.
type ChartArtifact struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
