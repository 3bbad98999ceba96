// errors.go - Structured error handling for API responses
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/logger"
)

// Error codes carried next to the message.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeEngineUnavailable  = "ENGINE_UNAVAILABLE"
	CodeExtractionFailed   = "EXTRACTION_FAILED"
	CodeAnalysisFailed     = "ANALYSIS_FAILED"
	CodeTimeout            = "TIMEOUT"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeHTTPError          = "HTTP_ERROR"
	CodeUnknownError       = "UNKNOWN_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ShowErrorDetails controls whether error bodies carry the underlying
// cause. Set from advanced.debug through SetupMiddleware.
var ShowErrorDetails = false

// APIError represents a structured API error response. The message is
// serialized as "error" so clients can read body.error uniformly.
type APIError struct {
	Status  int    `json:"-" msgpack:"-"`
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"error" msgpack:"error"`
	Details string `json:"details,omitempty" msgpack:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
	}
	if cause != nil && ShowErrorDetails {
		err.Details = cause.Error()
	}
	return err
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: message,
	}
	if cause != nil && ShowErrorDetails {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeServiceUnavailable,
		Message: message,
	}
}

// codeFor names the failure kind of a marked pipeline error.
func codeFor(err error) string {
	switch {
	case err == nil:
		return CodeInternalError
	case errors.Is(err, errors.ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, errors.ErrEngineUnavailable):
		return CodeEngineUnavailable
	case errors.Is(err, errors.ErrExtraction):
		return CodeExtractionFailed
	case errors.Is(err, errors.ErrAnalysisEngine):
		return CodeAnalysisFailed
	case errors.Is(err, errors.ErrTimeout):
		return CodeTimeout
	default:
		return CodeInternalError
	}
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    CodeHTTPError,
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    CodeUnknownError,
			Message: "An unexpected error occurred",
		}
		if ShowErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.ComponentLogger("api").Errorw("request failed",
			logger.FieldPath, c.Request().URL.Path,
			logger.FieldStatus, apiErr.Status,
			logger.FieldError, err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.Status)
		return
	}
	_ = respond(c, apiErr.Status, apiErr)
}
