// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chartflow/backend/internal/errors"
)

// Standard field names for structured logging.
const (
	FieldRequestID  = "request_id"
	FieldJobID      = "job_id"
	FieldAssetID    = "asset_id"
	FieldFile       = "file"
	FieldLane       = "lane"
	FieldBinary     = "binary"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldDurationMS = "duration_ms"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldAddress    = "address"
)

// Logger is the global logger instance.
var Logger *zap.SugaredLogger

func init() {
	// Safe no-op until Initialize runs.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger on stdout. level is one of debug,
// info, warn, error; unknown values fall back to info.
func Initialize(level string, jsonOutput bool) error {
	return InitializeTo(os.Stdout, level, jsonOutput)
}

// InitializeTo is Initialize with an explicit sink, e.g. os.Stderr when
// stdout carries command output.
func InitializeTo(w io.Writer, level string, jsonOutput bool) error {
	if w == nil {
		return errors.New("logger: nil output")
	}
	lvl := parseLevel(level)
	sink := zapcore.AddSync(w)

	var zapLogger *zap.Logger
	if jsonOutput {
		zapLogger = zap.New(
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, lvl),
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapLogger = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, lvl))
	}

	Logger = zapLogger.Sugar()
	return nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// ComponentLogger returns a named logger for a specific component.
//
//	type Invoker struct {
//	    log *zap.SugaredLogger
//	}
//
//	func NewInvoker() *Invoker {
//	    return &Invoker{log: logger.ComponentLogger("analysis")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
