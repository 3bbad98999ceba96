// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	ocr     string
}

// NewHealthHandler creates a new health handler. ocrExecutable is
// reported so operators can see which engine was resolved.
func NewHealthHandler(version, ocrExecutable string) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		ocr:     ocrExecutable,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"ocr":     h.ocr,
	})
}
