// Package ocr extracts raw text from images with the tesseract engine.
package ocr

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/logger"
	"github.com/chartflow/backend/internal/models"
	"github.com/chartflow/backend/internal/process"
	"github.com/chartflow/backend/internal/tabular"
)

// Engine turns an image into text.
type Engine interface {
	Extract(ctx context.Context, imagePath string) (*models.ExtractionResult, error)
}

// Config configures the tesseract engine.
type Config struct {
	Command    string        // explicit executable, used as-is when set
	Candidates []string      // tried in order
	Fallback   string        // used when no candidate exists, resolved via PATH
	Language   string        // passed as -l when set
	Timeout    time.Duration // per image
}

// TesseractEngine runs the tesseract CLI and reads the text from stdout.
type TesseractEngine struct {
	cfg Config
	log *zap.SugaredLogger
}

// NewTesseractEngine creates an engine. An empty Fallback means "tesseract".
func NewTesseractEngine(cfg Config) *TesseractEngine {
	if cfg.Fallback == "" {
		cfg.Fallback = "tesseract"
	}
	return &TesseractEngine{cfg: cfg, log: logger.ComponentLogger("ocr")}
}

// Executable reports which binary the next Extract call would run.
func (e *TesseractEngine) Executable() string {
	if e.cfg.Command != "" {
		return e.cfg.Command
	}
	return ResolveExecutable(e.cfg.Candidates, e.cfg.Fallback)
}

// Extract runs recognition over imagePath.
//
// A missing or misconfigured engine yields an error marked
// errors.ErrEngineUnavailable; a non-zero exit for any other reason is
// marked errors.ErrExtraction and carries the engine's stderr.
func (e *TesseractEngine) Extract(ctx context.Context, imagePath string) (*models.ExtractionResult, error) {
	exe := e.Executable()

	args := []string{imagePath, "stdout"}
	if e.cfg.Language != "" {
		args = append(args, "-l", e.cfg.Language)
	}

	e.log.Debugw("running OCR", logger.FieldBinary, exe, logger.FieldFile, imagePath)
	res, err := process.Run(ctx, process.Command{
		Path:    exe,
		Args:    args,
		Timeout: e.cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	if res.ExitCode != 0 {
		diag := strings.TrimSpace(string(res.Stderr))
		cause := errors.Newf("tesseract exited with status %d", res.ExitCode)
		if diag != "" {
			cause = errors.New(diag)
		}
		if isMisconfigured(diag) {
			return nil, errors.Mark(cause, errors.ErrEngineUnavailable)
		}
		return nil, errors.Mark(cause, errors.ErrExtraction)
	}

	text := string(res.Stdout)
	e.log.Debugw("OCR complete",
		logger.FieldFile, imagePath,
		logger.FieldSize, len(text),
		logger.FieldDurationMS, res.Duration.Milliseconds())

	return &models.ExtractionResult{
		RawText:          text,
		IsTabularLooking: tabular.LooksTabular(text),
	}, nil
}

// isMisconfigured matches tesseract diagnostics for a broken install,
// typically missing traineddata files.
func isMisconfigured(diag string) bool {
	d := strings.ToLower(diag)
	return strings.Contains(d, "error opening data file") ||
		strings.Contains(d, "failed loading language") ||
		strings.Contains(d, "tessdata_prefix") ||
		strings.Contains(d, "is not installed")
}
