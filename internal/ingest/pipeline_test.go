package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartflow/backend/internal/analysis"
	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/models"
	"github.com/chartflow/backend/internal/storage"
	"github.com/chartflow/backend/internal/testutil"
)

const (
	uploadBase = "http://localhost:5000/static/uploads"
	chartBase  = "http://localhost:5000/static/charts"
)

type fixture struct {
	store    *storage.LocalStore
	ocr      *testutil.FakeOCR
	analysis *testutil.FakeAnalysis
	pipeline *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    testutil.NewTempStore(t),
		ocr:      &testutil.FakeOCR{},
		analysis: &testutil.FakeAnalysis{},
	}
	f.pipeline = New(f.store, f.ocr, f.analysis, analysis.NewCollector(chartBase), uploadBase)
	return f
}

func (f *fixture) upload(t *testing.T, name, content string) *models.UploadedAsset {
	t.Helper()
	asset, err := f.store.Store(name, strings.NewReader(content))
	require.NoError(t, err)
	return asset
}

func TestPipeline_DirectCSV(t *testing.T) {
	f := newFixture(t)
	f.analysis.Charts = []string{"chart1.png"}
	asset := f.upload(t, "data.csv", "x,y\n1,2")

	out := f.pipeline.Run(context.Background(), asset)

	require.Equal(t, OutcomeCSV, out.Kind, "reason: %s", out.Reason)
	assert.False(t, out.SourceWasOCR)
	assert.Equal(t, MsgAnalysisComplete, out.Message())
	require.Len(t, out.Charts, 1)
	assert.Equal(t, "chart1.png", out.Charts[0].Filename)
	assert.True(t, strings.HasPrefix(out.Charts[0].URL, chartBase+"/"+asset.ID+"/chart1.png?t="), out.Charts[0].URL)

	require.Equal(t, 1, f.analysis.CallCount())
	assert.Equal(t, asset.Path, f.analysis.Inputs[0].Path)
	assert.Equal(t, 0, f.ocr.CallCount())
}

func TestPipeline_ChartsAreIsolatedPerRequest(t *testing.T) {
	f := newFixture(t)
	f.analysis.Charts = []string{"chart1.png", "chart2.png"}

	first := f.pipeline.Run(context.Background(), f.upload(t, "a.csv", "a,b"))
	f.analysis.Charts = []string{"only.png"}
	second := f.pipeline.Run(context.Background(), f.upload(t, "b.csv", "a,b"))

	assert.Len(t, first.Charts, 2)
	require.Len(t, second.Charts, 1)
	assert.Equal(t, "only.png", second.Charts[0].Filename)
}

func TestPipeline_OCRToCSV(t *testing.T) {
	f := newFixture(t)
	f.ocr.Text = "a,b,c\n1,2,3"
	f.analysis.Charts = []string{"bar.png", "line.png"}
	asset := f.upload(t, "table.png", "png-bytes")

	out := f.pipeline.Run(context.Background(), asset)

	require.Equal(t, OutcomeCSV, out.Kind, "reason: %s", out.Reason)
	assert.True(t, out.SourceWasOCR)
	assert.Equal(t, MsgAnalysisFromOCR, out.Message())
	assert.Len(t, out.Charts, 2)

	require.Equal(t, 1, f.analysis.CallCount())
	input := f.analysis.Inputs[0]
	assert.Equal(t, models.LaneImageOCR, input.SourceLane)
	assert.Equal(t, asset.StoredName+".csv", filepath.Base(input.Path))
	data, err := os.ReadFile(input.Path)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n1,2,3", string(data))
}

func TestPipeline_OCRWithoutDelimiters(t *testing.T) {
	f := newFixture(t)
	f.ocr.Text = "hello world"

	out := f.pipeline.Run(context.Background(), f.upload(t, "note.png", "png"))

	assert.Equal(t, OutcomeFailure, out.Kind)
	assert.Equal(t, MsgUnsupported, out.Reason)
	assert.False(t, out.IsFatal)
	assert.True(t, errors.Is(out.Err, errors.ErrUnsupportedFormat))
	assert.Equal(t, 0, f.analysis.CallCount(), "analysis must not run")
}

func TestPipeline_OCREngineMissing(t *testing.T) {
	f := newFixture(t)
	f.ocr.Err = errors.Mark(errors.New(`exec: "tesseract": executable file not found in $PATH`), errors.ErrEngineUnavailable)

	out := f.pipeline.Run(context.Background(), f.upload(t, "scan.jpg", "jpg"))

	assert.Equal(t, OutcomeFailure, out.Kind)
	assert.True(t, out.IsFatal)
	assert.Equal(t, MsgEngineMissing, out.Reason)
	assert.Equal(t, 0, f.analysis.CallCount())
}

func TestPipeline_OCROtherFailure(t *testing.T) {
	f := newFixture(t)
	f.ocr.Err = errors.Mark(errors.New("Error in pixReadStream: Unknown format"), errors.ErrExtraction)

	out := f.pipeline.Run(context.Background(), f.upload(t, "scan.jpeg", "jpg"))

	assert.Equal(t, OutcomeFailure, out.Kind)
	assert.False(t, out.IsFatal)
	assert.Equal(t, "OCR Error: Error in pixReadStream: Unknown format", out.Reason)
}

func TestPipeline_AnalysisFailure(t *testing.T) {
	f := newFixture(t)
	f.analysis.Err = errors.Mark(&analysis.AnalysisError{ExitCode: 1, Stderr: "Error in read.csv: more columns than column names"}, errors.ErrAnalysisEngine)

	out := f.pipeline.Run(context.Background(), f.upload(t, "data.csv", "x,y\n1,2,3"))

	assert.Equal(t, OutcomeFailure, out.Kind)
	assert.False(t, out.IsFatal)
	assert.Contains(t, out.Reason, "more columns than column names")
}

func TestPipeline_AnalysisEngineMissingAndTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"missing", errors.Mark(errors.New("exec: Rscript not found"), errors.ErrEngineUnavailable), msgAnalysisMissing},
		{"timeout", errors.Mark(errors.New("Rscript exceeded 2m0s"), errors.ErrTimeout), msgTimeoutPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.analysis.Err = tt.err

			out := f.pipeline.Run(context.Background(), f.upload(t, "data.csv", "x,y"))

			assert.Equal(t, OutcomeFailure, out.Kind)
			assert.True(t, out.IsFatal)
			assert.True(t, strings.HasPrefix(out.Reason, tt.msg), out.Reason)
		})
	}
}

func TestPipeline_Passthrough(t *testing.T) {
	f := newFixture(t)

	audio := f.upload(t, "clip.mp3", "id3")
	out := f.pipeline.Run(context.Background(), audio)
	assert.Equal(t, OutcomeAudioPassthrough, out.Kind)
	assert.Equal(t, uploadBase+"/"+audio.StoredName, out.URL)

	wav := f.pipeline.Run(context.Background(), f.upload(t, "tone.WAV", "riff"))
	assert.Equal(t, OutcomeAudioPassthrough, wav.Kind)

	gif := f.upload(t, "loop.gif", "GIF89a")
	out = f.pipeline.Run(context.Background(), gif)
	assert.Equal(t, OutcomeImagePassthrough, out.Kind)
	assert.Equal(t, uploadBase+"/"+gif.StoredName, out.URL)

	assert.Equal(t, 0, f.ocr.CallCount())
	assert.Equal(t, 0, f.analysis.CallCount())
}

func TestPipeline_Unsupported(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"report.pdf", "README"} {
		out := f.pipeline.Run(context.Background(), f.upload(t, name, "x"))
		assert.Equal(t, OutcomeFailure, out.Kind)
		assert.Equal(t, MsgUnsupported, out.Reason)
		assert.False(t, out.IsFatal)
	}
	assert.Equal(t, 0, f.ocr.CallCount())
	assert.Equal(t, 0, f.analysis.CallCount())
}

func TestPipeline_Profile(t *testing.T) {
	t.Run("attached on success", func(t *testing.T) {
		f := newFixture(t)
		profile := &models.TableProfile{Rows: 1, Columns: []models.ColumnShape{{Name: "x", Type: "BIGINT"}}}
		f.pipeline.WithProfiler(testutil.StaticProfiler{Result: profile})

		out := f.pipeline.Run(context.Background(), f.upload(t, "data.csv", "x\n1"))
		require.Equal(t, OutcomeCSV, out.Kind)
		assert.Equal(t, profile, out.Profile)
	})

	t.Run("failure does not fail the pipeline", func(t *testing.T) {
		f := newFixture(t)
		f.pipeline.WithProfiler(testutil.StaticProfiler{Err: errors.New("sniff failed")})

		out := f.pipeline.Run(context.Background(), f.upload(t, "data.csv", "x,y\n1,2"))
		assert.Equal(t, OutcomeCSV, out.Kind)
		assert.Nil(t, out.Profile)
	})
}

func TestCSVResultNeverNilCharts(t *testing.T) {
	out := CSVResult(nil, false)
	assert.NotNil(t, out.Charts)
	assert.Empty(t, out.ChartURLs())
}
