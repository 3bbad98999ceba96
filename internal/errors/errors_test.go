package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkedErrorsClassify(t *testing.T) {
	base := New("exec: \"tesseract\": executable file not found in $PATH")
	err := Mark(Wrap(base, "running tesseract"), ErrEngineUnavailable)

	assert.True(t, Is(err, ErrEngineUnavailable))
	assert.False(t, Is(err, ErrExtraction))
	assert.Contains(t, err.Error(), "running tesseract")
	assert.Contains(t, err.Error(), "executable file not found")
}

func TestKindsAreDistinct(t *testing.T) {
	kinds := []error{
		ErrEmptyUpload,
		ErrUnsupportedFormat,
		ErrEngineUnavailable,
		ErrExtraction,
		ErrAnalysisEngine,
		ErrTimeout,
	}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j {
				assert.False(t, Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestDetailsSurvive(t *testing.T) {
	err := WithDetail(Mark(New("exit status 1"), ErrAnalysisEngine), "Error in read.csv: no lines available")
	assert.True(t, Is(err, ErrAnalysisEngine))
	assert.Contains(t, FlattenDetails(err), "no lines available")
}
