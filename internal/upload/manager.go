// Package upload runs the ingest pipeline asynchronously and tracks the
// resulting jobs.
package upload

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chartflow/backend/internal/ingest"
	"github.com/chartflow/backend/internal/logger"
	"github.com/chartflow/backend/internal/models"
)

// Status represents the job processing status.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Job represents an async ingest job.
type Job struct {
	ID          string     `json:"id"`
	AssetID     string     `json:"assetId"`
	FileName    string     `json:"fileName"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Outcome is set once the job leaves StatusProcessing.
	Outcome *ingest.Outcome `json:"-"`
}

// Runner is the pipeline entry point.
type Runner interface {
	Run(ctx context.Context, asset *models.UploadedAsset) ingest.Outcome
}

// Manager handles async ingest processing.
type Manager struct {
	jobs   map[string]*Job
	mu     sync.RWMutex
	runner Runner
	ctx    context.Context
	wg     sync.WaitGroup
	log    *zap.SugaredLogger
}

// NewManager creates a job manager. Cancelling ctx aborts running jobs.
func NewManager(ctx context.Context, runner Runner) *Manager {
	return &Manager{
		jobs:   make(map[string]*Job),
		runner: runner,
		ctx:    ctx,
		log:    logger.ComponentLogger("jobs"),
	}
}

// StartJob begins async processing of a stored asset.
func (m *Manager) StartJob(asset *models.UploadedAsset) Job {
	job := &Job{
		ID:        uuid.New().String(),
		AssetID:   asset.ID,
		FileName:  asset.OriginalName,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.wg.Add(1)
	go m.processJob(job, asset)

	return m.snapshot(job)
}

// GetJob returns a copy of the job with the given ID.
func (m *Manager) GetJob(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Wait blocks until every started job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) processJob(job *Job, asset *models.UploadedAsset) {
	defer m.wg.Done()
	log := m.log.With(logger.FieldJobID, job.ID, logger.FieldAssetID, asset.ID)

	m.setStatus(job, StatusProcessing)
	log.Infow("job started", logger.FieldFile, asset.OriginalName)

	out := m.runner.Run(m.ctx, asset)

	m.mu.Lock()
	now := time.Now()
	job.Outcome = &out
	job.CompletedAt = &now
	if out.Kind == ingest.OutcomeFailure {
		job.Status = StatusError
		job.Error = out.Reason
	} else {
		job.Status = StatusComplete
	}
	status := job.Status
	m.mu.Unlock()

	log.Infow("job finished", logger.FieldStatus, status, logger.FieldDurationMS, now.Sub(job.CreatedAt).Milliseconds())
}

func (m *Manager) setStatus(job *Job, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = status
}

func (m *Manager) snapshot(job *Job) Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *job
}

// CleanupOldJobs removes finished jobs older than maxAge and returns how
// many were removed.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status == StatusComplete || job.Status == StatusError {
			if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
				delete(m.jobs, id)
				removed++
			}
		}
	}
	return removed
}

// RunCleanup prunes old jobs every interval until ctx is done.
func (m *Manager) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CleanupOldJobs(maxAge); n > 0 {
				m.log.Debugw("pruned jobs", logger.FieldCount, n)
			}
		}
	}
}
