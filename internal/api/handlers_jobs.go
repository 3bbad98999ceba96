// handlers_jobs.go - Async ingest job handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chartflow/backend/internal/upload"
)

// JobHandlerImpl implements the JobHandler interface
type JobHandlerImpl struct {
	jobs JobManager
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs JobManager) JobHandler {
	return &JobHandlerImpl{jobs: jobs}
}

// JobResponse is a job plus, once finished, the response the synchronous
// endpoint would have returned.
type JobResponse struct {
	upload.Job
	ResultStatus int `json:"resultStatus,omitempty"`
	Result       any `json:"result,omitempty"`
}

// HandleGetJob returns the state of one async job
func (h *JobHandlerImpl) HandleGetJob(c echo.Context) error {
	if h.jobs == nil {
		return NewServiceUnavailableError("async ingestion is disabled")
	}

	id := c.Param("id")
	job, ok := h.jobs.GetJob(id)
	if !ok {
		return NewNotFoundError("job", id)
	}

	resp := JobResponse{Job: job}
	if job.Outcome != nil {
		resp.ResultStatus, resp.Result = Assemble(*job.Outcome)
	}
	return c.JSON(http.StatusOK, resp)
}
