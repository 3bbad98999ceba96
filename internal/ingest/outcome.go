package ingest

import "github.com/chartflow/backend/internal/models"

// Failure messages shown to clients.
const (
	MsgUnsupported      = "Unsupported file type or OCR failed to extract text"
	MsgEngineMissing    = "OCR Error: engine not installed"
	MsgAnalysisComplete = "Analysis Complete"
	MsgAnalysisFromOCR  = "Analysis Complete (OCR Source)"
	msgOCRFailedPrefix  = "OCR Error: "
	msgAnalysisPrefix   = "Analysis engine failed: "
	msgAnalysisMissing  = "Analysis Error: analysis engine not installed"
	msgTimeoutPrefix    = "Timed out: "
	msgInternalPrefix   = "Internal error: "
)

// OutcomeKind tags the Outcome variant.
type OutcomeKind string

const (
	OutcomeCSV              OutcomeKind = "csv"
	OutcomeImagePassthrough OutcomeKind = "image"
	OutcomeAudioPassthrough OutcomeKind = "audio"
	OutcomeFailure          OutcomeKind = "failure"
)

// Outcome is the single value handed from the pipeline to the response
// layer. Only the fields of the active Kind are set.
type Outcome struct {
	Kind OutcomeKind

	// OutcomeCSV
	Charts       []models.ChartArtifact
	SourceWasOCR bool
	Profile      *models.TableProfile

	// passthrough
	URL string

	// OutcomeFailure
	Reason  string
	IsFatal bool
	Err     error
}

// CSVResult builds a successful analysis outcome.
func CSVResult(charts []models.ChartArtifact, sourceWasOCR bool) Outcome {
	if charts == nil {
		charts = []models.ChartArtifact{}
	}
	return Outcome{Kind: OutcomeCSV, Charts: charts, SourceWasOCR: sourceWasOCR}
}

// ImagePassthrough returns the stored image as-is.
func ImagePassthrough(url string) Outcome {
	return Outcome{Kind: OutcomeImagePassthrough, URL: url}
}

// AudioPassthrough returns the stored audio as-is.
func AudioPassthrough(url string) Outcome {
	return Outcome{Kind: OutcomeAudioPassthrough, URL: url}
}

// Failure is a terminal error outcome.
func Failure(reason string, fatal bool, err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Reason: reason, IsFatal: fatal, Err: err}
}

// Message is the human-readable summary for a CSV outcome.
func (o Outcome) Message() string {
	if o.SourceWasOCR {
		return MsgAnalysisFromOCR
	}
	return MsgAnalysisComplete
}

// ChartURLs lists the chart references in order.
func (o Outcome) ChartURLs() []string {
	urls := make([]string, 0, len(o.Charts))
	for _, c := range o.Charts {
		urls = append(urls, c.URL)
	}
	return urls
}
