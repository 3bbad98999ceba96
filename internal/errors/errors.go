// Package errors provides error handling for chartflow.
//
// It re-exports github.com/cockroachdb/errors and declares the ingestion
// error taxonomy. Stages attach a kind to an error with Mark and callers
// classify it with Is:
//
//	return errors.Mark(errors.Wrap(err, "running tesseract"), errors.ErrEngineUnavailable)
//
//	if errors.Is(err, errors.ErrEngineUnavailable) {
//	    // fatal
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint        = crdb.WithHint
	WithHintf       = crdb.WithHintf
	WithDetail      = crdb.WithDetail
	WithDetailf     = crdb.WithDetailf
	GetAllHints     = crdb.GetAllHints
	GetAllDetails   = crdb.GetAllDetails
	FlattenHints    = crdb.FlattenHints
	FlattenDetails  = crdb.FlattenDetails
	WithSafeDetails = crdb.WithSafeDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Mark      = crdb.Mark
)

// Ingestion error kinds.
var (
	// ErrEmptyUpload is returned when no file (or no file name) was supplied.
	ErrEmptyUpload = New("empty upload")

	// ErrUnsupportedFormat covers unknown extensions and OCR text without delimiters.
	ErrUnsupportedFormat = New("unsupported format")

	// ErrEngineUnavailable means an external engine binary could not be found or started.
	ErrEngineUnavailable = New("engine unavailable")

	// ErrExtraction is any other OCR failure.
	ErrExtraction = New("extraction failed")

	// ErrAnalysisEngine means the analysis process exited non-zero.
	ErrAnalysisEngine = New("analysis engine failed")

	// ErrTimeout means an external process exceeded its time budget.
	ErrTimeout = New("external process timed out")
)
