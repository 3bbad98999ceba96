// fakes.go - Stand-ins for the external OCR and analysis engines
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/chartflow/backend/internal/models"
	"github.com/chartflow/backend/internal/storage"
	"github.com/chartflow/backend/internal/tabular"
)

// NewTempStore creates a LocalStore rooted in a test temp directory.
func NewTempStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(filepath.Join(dir, "uploads"), filepath.Join(dir, "charts"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

// FakeOCR returns fixed text or a fixed error.
type FakeOCR struct {
	mu    sync.Mutex
	Text  string
	Err   error
	Calls []string
}

func (f *FakeOCR) Extract(ctx context.Context, imagePath string) (*models.ExtractionResult, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, imagePath)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return &models.ExtractionResult{
		RawText:          f.Text,
		IsTabularLooking: tabular.LooksTabular(f.Text),
	}, nil
}

// CallCount reports how many images were extracted.
func (f *FakeOCR) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// FakeAnalysis writes empty chart files named Charts into the output
// directory, or fails with Err.
type FakeAnalysis struct {
	mu     sync.Mutex
	Charts []string
	Err    error
	Inputs []*models.TabularAsset
}

func (f *FakeAnalysis) Invoke(ctx context.Context, input *models.TabularAsset, outputDir string) error {
	f.mu.Lock()
	f.Inputs = append(f.Inputs, input)
	f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	for _, name := range f.Charts {
		if err := os.WriteFile(filepath.Join(outputDir, name), []byte("png"), 0644); err != nil {
			return err
		}
	}
	return nil
}

// CallCount reports how many times the engine ran.
func (f *FakeAnalysis) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Inputs)
}

// StaticProfiler returns a fixed profile.
type StaticProfiler struct {
	Result *models.TableProfile
	Err    error
}

func (s StaticProfiler) Profile(ctx context.Context, path string) (*models.TableProfile, error) {
	return s.Result, s.Err
}
