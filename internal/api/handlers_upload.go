// handlers_upload.go - File ingestion handlers
package api

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/logger"
	"github.com/chartflow/backend/internal/models"
	"github.com/chartflow/backend/internal/storage"
)

// Messages for malformed upload requests.
const (
	MsgNoFilePart     = "No file part"
	MsgNoSelectedFile = "No selected file"
)

const formFileField = "file"

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	store    storage.Store
	pipeline Pipeline
	jobs     JobManager
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(store storage.Store, pipeline Pipeline, jobs JobManager) UploadHandler {
	return &UploadHandlerImpl{
		store:    store,
		pipeline: pipeline,
		jobs:     jobs,
	}
}

// HandleUpload stores the multipart "file" field and runs the pipeline on
// it before responding.
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	asset, err := h.receive(c)
	if err != nil {
		return err
	}

	out := h.pipeline.Run(c.Request().Context(), asset)
	status, body := Assemble(out)
	return respond(c, status, body)
}

// HandleUploadAsync stores the file and hands it to the job manager.
func (h *UploadHandlerImpl) HandleUploadAsync(c echo.Context) error {
	if h.jobs == nil {
		return NewServiceUnavailableError("async ingestion is disabled")
	}

	asset, err := h.receive(c)
	if err != nil {
		return err
	}

	job := h.jobs.StartJob(asset)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"jobId":   job.ID,
		"assetId": job.AssetID,
		"status":  job.Status,
	})
}

// HandleGetRecentFiles returns the most recently stored uploads
func (h *UploadHandlerImpl) HandleGetRecentFiles(c echo.Context) error {
	files, err := h.store.List(20)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns the metadata of one upload stored by this process.
func (h *UploadHandlerImpl) HandleGetFile(c echo.Context) error {
	name := c.Param("name")
	asset, err := h.store.Get(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("file", name)
		}
		return NewInternalError("failed to look up file", err)
	}
	return c.JSON(http.StatusOK, asset)
}

// HandleGetUpload serves a stored upload or derived file by its stored name.
func (h *UploadHandlerImpl) HandleGetUpload(c echo.Context) error {
	name := c.Param("name")
	path, err := h.store.UploadPath(name)
	if err != nil {
		return NewNotFoundError("upload", name)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return NewNotFoundError("upload", name)
	}
	return c.File(path)
}

// receive validates the multipart request and persists the file.
func (h *UploadHandlerImpl) receive(c echo.Context) (*models.UploadedAsset, error) {
	file, err := c.FormFile(formFileField)
	if err != nil {
		// A file part sent without a filename is parsed as a plain value.
		if form := c.Request().MultipartForm; form != nil {
			if _, ok := form.Value[formFileField]; ok {
				return nil, NewBadRequestError(MsgNoSelectedFile, err)
			}
		}
		return nil, NewBadRequestError(MsgNoFilePart, err)
	}
	if file.Filename == "" {
		return nil, NewBadRequestError(MsgNoSelectedFile, nil)
	}

	src, err := file.Open()
	if err != nil {
		return nil, NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	asset, err := h.store.Store(file.Filename, src)
	if err != nil {
		if errors.Is(err, errors.ErrEmptyUpload) {
			return nil, NewBadRequestError(MsgNoSelectedFile, err)
		}
		return nil, NewInternalError("failed to save file", err)
	}

	logger.ComponentLogger("api").Infow("upload stored",
		logger.FieldAssetID, asset.ID,
		logger.FieldFile, asset.OriginalName,
		logger.FieldSize, asset.Size)
	return asset, nil
}
