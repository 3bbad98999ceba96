// Package analysis runs the external charting engine and collects the
// images it writes.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/logger"
	"github.com/chartflow/backend/internal/models"
	"github.com/chartflow/backend/internal/process"
)

// OutputDirEnv names the environment variable carrying the per-request
// chart directory to the engine.
const OutputDirEnv = "CHART_OUTPUT_DIR"

// AnalysisError is returned when the engine exits non-zero.
type AnalysisError struct {
	ExitCode int
	Stderr   string
}

func (e *AnalysisError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("analysis engine exited with status %d", e.ExitCode)
	}
	return e.Stderr
}

// Runner is the analysis step of the pipeline.
type Runner interface {
	Invoke(ctx context.Context, input *models.TabularAsset, outputDir string) error
}

// Config configures the engine invocation.
type Config struct {
	Command       string        // e.g. "Rscript analysis.R"; the CSV path is appended
	WorkDir       string        // working directory for the engine, "" for the current one
	Timeout       time.Duration // per invocation
	MaxConcurrent int           // engine processes allowed at once, <= 0 for unlimited
}

// Invoker runs the configured command once per tabular asset.
type Invoker struct {
	argv    []string
	workDir string
	timeout time.Duration
	sem     chan struct{}
	log     *zap.SugaredLogger
}

// NewInvoker parses cfg.Command with shell quoting rules.
func NewInvoker(cfg Config) (*Invoker, error) {
	argv, err := shellquote.Split(cfg.Command)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing analysis command %q", cfg.Command)
	}
	if len(argv) == 0 {
		return nil, errors.New("analysis command is empty")
	}

	inv := &Invoker{
		argv:    argv,
		workDir: cfg.WorkDir,
		timeout: cfg.Timeout,
		log:     logger.ComponentLogger("analysis"),
	}
	if cfg.MaxConcurrent > 0 {
		inv.sem = make(chan struct{}, cfg.MaxConcurrent)
	}
	return inv, nil
}

// Invoke blocks until the engine finishes. The input path is the sole
// positional argument; outputDir is exported as CHART_OUTPUT_DIR.
//
// A non-zero exit yields an *AnalysisError marked errors.ErrAnalysisEngine.
func (i *Invoker) Invoke(ctx context.Context, input *models.TabularAsset, outputDir string) error {
	if input == nil {
		return errors.New("no tabular input")
	}

	if i.sem != nil {
		select {
		case i.sem <- struct{}{}:
			defer func() { <-i.sem }()
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for an analysis slot")
		}
	}

	args := append(append([]string{}, i.argv[1:]...), input.Path)

	i.log.Infow("running analysis engine",
		logger.FieldBinary, i.argv[0],
		logger.FieldFile, input.Path,
		"output_dir", outputDir)

	res, err := process.Run(ctx, process.Command{
		Path:    i.argv[0],
		Args:    args,
		Env:     map[string]string{OutputDirEnv: outputDir},
		Dir:     i.workDir,
		Timeout: i.timeout,
	})
	if err != nil {
		return err
	}

	if out := strings.TrimSpace(string(res.Stdout)); out != "" {
		i.log.Debugw("analysis engine output", "stdout", out)
	}

	if res.ExitCode != 0 {
		aerr := &AnalysisError{ExitCode: res.ExitCode, Stderr: strings.TrimSpace(string(res.Stderr))}
		i.log.Warnw("analysis engine failed",
			"exit_code", res.ExitCode,
			logger.FieldError, aerr.Stderr)
		return errors.Mark(aerr, errors.ErrAnalysisEngine)
	}

	i.log.Infow("analysis engine finished", logger.FieldDurationMS, res.Duration.Milliseconds())
	return nil
}
