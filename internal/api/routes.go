// routes.go - Route registration helpers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/chartflow/backend/internal/logger"
	"github.com/chartflow/backend/internal/storage"
	"github.com/chartflow/backend/internal/upload"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store         storage.Store
	Pipeline      Pipeline
	Jobs          *upload.Manager // nil disables the async endpoints
	StaticDir     string
	OCRExecutable string
	Version       string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Upload UploadHandler
	Job    JobHandler

	staticDir string
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	var jobs JobManager
	if deps.Jobs != nil {
		jobs = deps.Jobs
	}

	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.OCRExecutable),
		Upload:    NewUploadHandler(deps.Store, deps.Pipeline, jobs),
		Job:       NewJobHandler(jobs),
		staticDir: deps.StaticDir,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Legacy clients post to /upload directly.
	e.POST("/upload", handlers.Upload.HandleUpload)

	apiGroup := e.Group("/api")
	apiGroup.POST("/upload", handlers.Upload.HandleUpload)
	apiGroup.POST("/upload/async", handlers.Upload.HandleUploadAsync)
	apiGroup.GET("/jobs/:id", handlers.Job.HandleGetJob)
	apiGroup.GET("/files/recent", handlers.Upload.HandleGetRecentFiles)
	apiGroup.GET("/files/:name", handlers.Upload.HandleGetFile)

	// Registered ahead of the static tree so names are checked by the store.
	e.GET("/static/uploads/:name", handlers.Upload.HandleGetUpload)

	if handlers.staticDir != "" {
		e.Static("/static", handlers.staticDir)
	}
}

// MiddlewareOptions selects the optional middleware.
type MiddlewareOptions struct {
	EnableCORS       bool
	AllowOrigins     string
	BodyLimit        string
	RequestLogging   bool
	ShowErrorDetails bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	ShowErrorDetails = opts.ShowErrorDetails
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	if opts.RequestLogging {
		e.Use(RequestLogger())
	}

	if opts.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: splitOrigins(opts.AllowOrigins),
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		}))
	}

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}
}

// RequestLogger feeds echo's request log values into zap.
func RequestLogger() echo.MiddlewareFunc {
	log := logger.ComponentLogger("http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				logger.FieldMethod, v.Method,
				logger.FieldPath, v.URI,
				logger.FieldStatus, v.Status,
				logger.FieldDurationMS, v.Latency.Milliseconds(),
				logger.FieldRequestID, v.RequestID,
			}
			if v.Error != nil {
				log.Warnw("request", append(fields, logger.FieldError, v.Error)...)
				return nil
			}
			log.Infow("request", fields...)
			return nil
		},
	})
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
