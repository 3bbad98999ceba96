package storage

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/models"
)

// ErrNotFound marks lookups of unknown stored names.
var ErrNotFound = errors.New("asset not found")

// Store defines the interface for asset storage.
type Store interface {
	Store(originalName string, r io.Reader) (*models.UploadedAsset, error)
	WriteDerived(asset *models.UploadedAsset, suffix string, data []byte) (string, error)
	Get(storedName string) (*models.UploadedAsset, error)
	List(limit int) ([]*models.UploadedAsset, error)
	UploadPath(storedName string) (string, error)
	ChartDir(assetID string) (string, error)
}

// LocalStore implements Store using the local filesystem. Uploads and
// derived files live in uploadDir; each asset gets its own chart
// directory under chartDir.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	chartDir  string
	assets    map[string]*models.UploadedAsset
}

// NewLocalStore creates a new LocalStore and both of its directories.
func NewLocalStore(uploadDir, chartDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating upload directory")
	}
	if err := os.MkdirAll(chartDir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating chart directory")
	}

	return &LocalStore{
		uploadDir: uploadDir,
		chartDir:  chartDir,
		assets:    make(map[string]*models.UploadedAsset),
	}, nil
}

// Store writes r under "<uuid>_<originalName>". Only the base name of
// originalName is kept.
func (s *LocalStore) Store(originalName string, r io.Reader) (*models.UploadedAsset, error) {
	name := filepath.Base(strings.TrimSpace(originalName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, errors.Mark(errors.New("no file name supplied"), errors.ErrEmptyUpload)
	}

	id := uuid.New().String()
	storedName := id + "_" + name
	path := filepath.Join(s.uploadDir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating file")
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, errors.Wrap(err, "writing file")
	}

	asset := &models.UploadedAsset{
		ID:           id,
		StoredName:   storedName,
		OriginalName: name,
		Extension:    Extension(name),
		Path:         path,
		Size:         size,
		UploadedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[storedName] = asset

	return asset, nil
}

// WriteDerived writes data verbatim to "<storedName><suffix>" next to the
// upload and returns its path.
func (s *LocalStore) WriteDerived(asset *models.UploadedAsset, suffix string, data []byte) (string, error) {
	path := filepath.Join(s.uploadDir, asset.StoredName+suffix)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "writing derived file %s", filepath.Base(path))
	}
	return path, nil
}

// Get retrieves asset metadata by stored name.
func (s *LocalStore) Get(storedName string) (*models.UploadedAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asset, ok := s.assets[storedName]
	if !ok {
		return nil, errors.Mark(errors.Newf("asset not found: %s", storedName), ErrNotFound)
	}

	return asset, nil
}

// List returns the most recent assets.
func (s *LocalStore) List(limit int) ([]*models.UploadedAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.UploadedAsset, 0, len(s.assets))
	for _, asset := range s.assets {
		list = append(list, asset)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// UploadPath resolves a stored name to a path inside the upload directory.
func (s *LocalStore) UploadPath(storedName string) (string, error) {
	if storedName == "" || storedName != filepath.Base(storedName) {
		return "", errors.Newf("invalid stored name: %q", storedName)
	}
	return filepath.Join(s.uploadDir, storedName), nil
}

// ChartDir returns the chart output directory for one asset, creating it
// if needed.
func (s *LocalStore) ChartDir(assetID string) (string, error) {
	if _, err := uuid.Parse(assetID); err != nil {
		return "", errors.Wrapf(err, "invalid asset id: %q", assetID)
	}

	dir := filepath.Join(s.chartDir, assetID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "creating chart directory")
	}
	return dir, nil
}

// Extension returns the lowercased text after the last dot of name, or ""
// when name has no extension.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
