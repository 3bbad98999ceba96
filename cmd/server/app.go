package main

import (
	"os"
	"path/filepath"

	"github.com/chartflow/backend/internal/analysis"
	"github.com/chartflow/backend/internal/config"
	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/ingest"
	"github.com/chartflow/backend/internal/logger"
	"github.com/chartflow/backend/internal/ocr"
	"github.com/chartflow/backend/internal/storage"
	"github.com/chartflow/backend/internal/tabular"
)

// app holds the components shared by serve and ingest.
type app struct {
	cfg      *config.AppConfig
	store    *storage.LocalStore
	ocr      *ocr.TesseractEngine
	pipeline *ingest.Pipeline
	profiler *tabular.DuckProfiler
}

// resolveConfigPath returns the --config flag, or chartflow.yaml next to
// the executable.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, "failed to get executable path")
	}
	return filepath.Join(filepath.Dir(exePath), config.DefaultConfigFile), nil
}

func loadConfig() (*config.AppConfig, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, path, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, path, errors.Wrap(err, "failed to create directories")
	}
	return cfg, path, nil
}

// newApp builds the pipeline from cfg. The logger must be initialized
// first since components capture it on construction.
func newApp(cfg *config.AppConfig) (*app, error) {
	store, err := storage.NewLocalStore(cfg.Storage.UploadsDirectory, cfg.Storage.ChartsDirectory)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize storage")
	}

	candidates := cfg.OCR.Candidates
	if len(candidates) == 0 {
		candidates = ocr.DefaultCandidates
	}
	engine := ocr.NewTesseractEngine(ocr.Config{
		Command:    cfg.OCR.Command,
		Candidates: candidates,
		Language:   cfg.OCR.Language,
		Timeout:    cfg.OCRTimeout(),
	})

	invoker, err := analysis.NewInvoker(analysis.Config{
		Command:       cfg.Analysis.Command,
		WorkDir:       cfg.Analysis.WorkDirectory,
		Timeout:       cfg.AnalysisTimeout(),
		MaxConcurrent: cfg.Analysis.MaxConcurrent,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:   cfg,
		store: store,
		ocr:   engine,
		pipeline: ingest.New(store, engine, invoker,
			analysis.NewCollector(cfg.ChartBaseURL()), cfg.UploadBaseURL()),
	}

	if cfg.Advanced.EnableProfiling {
		profiler, err := tabular.NewDuckProfiler(cfg.Advanced.DuckDBThreads, cfg.Advanced.DuckDBMemoryLimit)
		if err != nil {
			logger.Logger.Warnw("table profiling disabled", logger.FieldError, err)
		} else {
			a.profiler = profiler
			a.pipeline.WithProfiler(profiler)
		}
	}

	return a, nil
}

func (a *app) Close() {
	if a.profiler != nil {
		if err := a.profiler.Close(); err != nil {
			logger.Logger.Warnw("closing profiler", logger.FieldError, err)
		}
	}
}
