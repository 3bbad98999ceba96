package upload

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartflow/backend/internal/ingest"
	"github.com/chartflow/backend/internal/models"
)

type stubRunner struct {
	out     ingest.Outcome
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (s *stubRunner) Run(ctx context.Context, asset *models.UploadedAsset) ingest.Outcome {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	return s.out
}

func testAsset() *models.UploadedAsset {
	return &models.UploadedAsset{ID: "asset-1", StoredName: "asset-1_data.csv", OriginalName: "data.csv", Extension: "csv"}
}

func TestManager_CompletesJob(t *testing.T) {
	runner := &stubRunner{out: ingest.CSVResult([]models.ChartArtifact{{Filename: "a.png", URL: "u"}}, false)}
	m := NewManager(context.Background(), runner)

	job := m.StartJob(testAsset())
	assert.Equal(t, StatusQueued, job.Status)
	assert.Equal(t, "asset-1", job.AssetID)
	assert.Equal(t, "data.csv", job.FileName)

	m.Wait()

	got, ok := m.GetJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusComplete, got.Status)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, ingest.OutcomeCSV, got.Outcome.Kind)
	assert.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.Error)
}

func TestManager_FailureOutcome(t *testing.T) {
	runner := &stubRunner{out: ingest.Failure(ingest.MsgUnsupported, false, nil)}
	m := NewManager(context.Background(), runner)

	job := m.StartJob(testAsset())
	m.Wait()

	got, _ := m.GetJob(job.ID)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, ingest.MsgUnsupported, got.Error)
}

func TestManager_ProcessingStatus(t *testing.T) {
	runner := &stubRunner{out: ingest.AudioPassthrough("u"), release: make(chan struct{})}
	m := NewManager(context.Background(), runner)

	job := m.StartJob(testAsset())
	require.Eventually(t, func() bool {
		got, _ := m.GetJob(job.ID)
		return got.Status == StatusProcessing
	}, time.Second, 5*time.Millisecond)

	close(runner.release)
	m.Wait()

	got, _ := m.GetJob(job.ID)
	assert.Equal(t, StatusComplete, got.Status)
}

func TestManager_GetJobMissing(t *testing.T) {
	m := NewManager(context.Background(), &stubRunner{})
	_, ok := m.GetJob("nope")
	assert.False(t, ok)
}

func TestManager_CleanupOldJobs(t *testing.T) {
	runner := &stubRunner{out: ingest.ImagePassthrough("u")}
	m := NewManager(context.Background(), runner)

	job := m.StartJob(testAsset())
	m.Wait()

	assert.Equal(t, 0, m.CleanupOldJobs(time.Hour), "recent job kept")

	old := time.Now().Add(-2 * time.Hour)
	m.mu.Lock()
	m.jobs[job.ID].CompletedAt = &old
	m.mu.Unlock()

	assert.Equal(t, 1, m.CleanupOldJobs(time.Hour))
	_, ok := m.GetJob(job.ID)
	assert.False(t, ok)
}

func TestManager_RunCleanupStops(t *testing.T) {
	m := NewManager(context.Background(), &stubRunner{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.RunCleanup(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop")
	}
}
