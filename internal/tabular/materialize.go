// Package tabular decides whether text is delimited data and turns it into
// CSV files for the analysis engine.
package tabular

import (
	"strings"

	"github.com/chartflow/backend/internal/models"
)

// CSVSuffix is appended to the stored name of an OCR'd image.
const CSVSuffix = ".csv"

// DerivedWriter persists files derived from an uploaded asset.
type DerivedWriter interface {
	WriteDerived(asset *models.UploadedAsset, suffix string, data []byte) (string, error)
}

// LooksTabular reports whether text contains a comma or a tab. This is a
// heuristic, not a CSV grammar check.
func LooksTabular(text string) bool {
	return strings.ContainsAny(text, ",\t")
}

// Materialize writes OCR text verbatim to "<storedName>.csv". It returns
// nil, nil when the text has no delimiter evidence.
func Materialize(w DerivedWriter, asset *models.UploadedAsset, result *models.ExtractionResult) (*models.TabularAsset, error) {
	if result == nil || !result.IsTabularLooking {
		return nil, nil
	}

	path, err := w.WriteDerived(asset, CSVSuffix, []byte(result.RawText))
	if err != nil {
		return nil, err
	}

	return &models.TabularAsset{Path: path, SourceLane: models.LaneImageOCR}, nil
}

// Direct wraps an uploaded CSV without copying it.
func Direct(asset *models.UploadedAsset) *models.TabularAsset {
	return &models.TabularAsset{Path: asset.Path, SourceLane: models.LaneTabularDirect}
}
