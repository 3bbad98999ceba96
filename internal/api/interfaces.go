// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/chartflow/backend/internal/ingest"
	"github.com/chartflow/backend/internal/models"
	"github.com/chartflow/backend/internal/upload"
)

// UploadHandler handles synchronous and asynchronous ingestion
type UploadHandler interface {
	HandleUpload(c echo.Context) error
	HandleUploadAsync(c echo.Context) error
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleGetUpload(c echo.Context) error
}

// JobHandler exposes async job state
type JobHandler interface {
	HandleGetJob(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Pipeline runs one stored asset to an outcome.
type Pipeline interface {
	Run(ctx context.Context, asset *models.UploadedAsset) ingest.Outcome
}

// JobManager starts and looks up async ingest jobs.
type JobManager interface {
	StartJob(asset *models.UploadedAsset) upload.Job
	GetJob(id string) (upload.Job, bool)
}
