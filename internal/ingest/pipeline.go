// Package ingest routes an uploaded asset through classification, OCR,
// tabular conversion and analysis, and reduces the result to an Outcome.
package ingest

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/chartflow/backend/internal/analysis"
	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/logger"
	"github.com/chartflow/backend/internal/models"
	"github.com/chartflow/backend/internal/ocr"
	"github.com/chartflow/backend/internal/tabular"
)

// Storage is what the pipeline needs from the storage gateway.
type Storage interface {
	tabular.DerivedWriter
	ChartDir(assetID string) (string, error)
}

// ChartCollector lists the charts in an output directory.
type ChartCollector interface {
	Collect(dir, assetID string) ([]models.ChartArtifact, error)
}

// Pipeline wires the stages together. Profiler is optional.
type Pipeline struct {
	Store         Storage
	OCR           ocr.Engine
	Analysis      analysis.Runner
	Collector     ChartCollector
	Profiler      tabular.Profiler
	UploadBaseURL string // e.g. http://localhost:5000/static/uploads

	log *zap.SugaredLogger
}

// New creates a pipeline.
func New(store Storage, engine ocr.Engine, runner analysis.Runner, collector ChartCollector, uploadBaseURL string) *Pipeline {
	return &Pipeline{
		Store:         store,
		OCR:           engine,
		Analysis:      runner,
		Collector:     collector,
		UploadBaseURL: strings.TrimRight(uploadBaseURL, "/"),
		log:           logger.ComponentLogger("ingest"),
	}
}

// WithProfiler enables CSV profiling of tabular inputs.
func (p *Pipeline) WithProfiler(profiler tabular.Profiler) *Pipeline {
	p.Profiler = profiler
	return p
}

// Run processes one stored asset end to end. Every stage error becomes a
// terminal Failure; nothing is retried.
func (p *Pipeline) Run(ctx context.Context, asset *models.UploadedAsset) Outcome {
	log := p.logger().With(logger.FieldAssetID, asset.ID, logger.FieldFile, asset.OriginalName)

	lane := Classify(asset.Extension)
	log.Infow("classified upload", logger.FieldLane, lane)

	if lane.IsPassthrough() {
		if lane == models.LaneAudioPassthrough {
			return AudioPassthrough(p.uploadURL(asset))
		}
		return ImagePassthrough(p.uploadURL(asset))
	}

	switch lane {
	case models.LaneTabularDirect:
		return p.analyse(ctx, log, asset, tabular.Direct(asset))
	case models.LaneImageOCR:
		input, failure := p.extractTable(ctx, log, asset)
		if failure != nil {
			return *failure
		}
		return p.analyse(ctx, log, asset, input)
	default:
		return Failure(MsgUnsupported, false, errors.Mark(errors.Newf("extension %q", asset.Extension), errors.ErrUnsupportedFormat))
	}
}

// extractTable runs OCR and materializes the text as CSV.
func (p *Pipeline) extractTable(ctx context.Context, log *zap.SugaredLogger, asset *models.UploadedAsset) (*models.TabularAsset, *Outcome) {
	result, err := p.OCR.Extract(ctx, asset.Path)
	if err != nil {
		log.Warnw("OCR failed", logger.FieldError, err)
		out := failureFor(err, msgOCRFailedPrefix)
		return nil, &out
	}

	if !result.IsTabularLooking {
		log.Infow("OCR text has no delimiters", logger.FieldSize, len(result.RawText))
		out := Failure(MsgUnsupported, false, errors.Mark(errors.New("no delimiter in OCR text"), errors.ErrUnsupportedFormat))
		return nil, &out
	}

	input, err := tabular.Materialize(p.Store, asset, result)
	if err != nil {
		out := Failure(msgInternalPrefix+err.Error(), true, err)
		return nil, &out
	}
	log.Infow("OCR text materialized", logger.FieldFile, input.Path)
	return input, nil
}

// analyse runs the engine on input and collects its charts.
func (p *Pipeline) analyse(ctx context.Context, log *zap.SugaredLogger, asset *models.UploadedAsset, input *models.TabularAsset) Outcome {
	outDir, err := p.Store.ChartDir(asset.ID)
	if err != nil {
		return Failure(msgInternalPrefix+err.Error(), true, err)
	}

	if err := p.Analysis.Invoke(ctx, input, outDir); err != nil {
		log.Warnw("analysis failed", logger.FieldError, err)
		return failureFor(err, msgAnalysisPrefix)
	}

	charts, err := p.Collector.Collect(outDir, asset.ID)
	if err != nil {
		return Failure(msgInternalPrefix+err.Error(), true, err)
	}
	log.Infow("analysis complete", logger.FieldCount, len(charts))

	out := CSVResult(charts, input.SourceLane == models.LaneImageOCR)
	if p.Profiler != nil {
		profile, err := p.Profiler.Profile(ctx, input.Path)
		if err != nil {
			log.Warnw("profiling failed", logger.FieldError, err)
		} else {
			out.Profile = profile
		}
	}
	return out
}

// failureFor maps a marked stage error to its Failure. prefix introduces
// the diagnostic of non-fatal stage errors.
func failureFor(err error, prefix string) Outcome {
	switch {
	case errors.Is(err, errors.ErrEngineUnavailable):
		if prefix == msgAnalysisPrefix {
			return Failure(msgAnalysisMissing, true, err)
		}
		return Failure(MsgEngineMissing, true, err)
	case errors.Is(err, errors.ErrTimeout):
		return Failure(msgTimeoutPrefix+err.Error(), true, err)
	case errors.Is(err, errors.ErrAnalysisEngine), errors.Is(err, errors.ErrExtraction):
		return Failure(prefix+diagnostic(err), false, err)
	default:
		return Failure(msgInternalPrefix+err.Error(), true, err)
	}
}

// diagnostic returns the innermost message, which is the engine's own text.
func diagnostic(err error) string {
	var aerr *analysis.AnalysisError
	if errors.As(err, &aerr) {
		return aerr.Error()
	}
	return errors.UnwrapAll(err).Error()
}

func (p *Pipeline) uploadURL(asset *models.UploadedAsset) string {
	return p.UploadBaseURL + "/" + url.PathEscape(asset.StoredName)
}

func (p *Pipeline) logger() *zap.SugaredLogger {
	if p.log == nil {
		return logger.ComponentLogger("ingest")
	}
	return p.log
}
