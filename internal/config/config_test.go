package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DATA_DIR", "PUBLIC_BASE_URL", "TESSERACT_CMD", "ANALYSIS_COMMAND", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "Rscript analysis.R", cfg.Analysis.Command)
	assert.Equal(t, filepath.Join(dir, "static", "uploads"), cfg.Storage.UploadsDirectory)
	assert.Equal(t, filepath.Join(dir, "static", "charts"), cfg.Storage.ChartsDirectory)
	assert.Equal(t, "http://localhost:5000/static/charts", cfg.ChartBaseURL())
	assert.Equal(t, "http://localhost:5000/static/uploads", cfg.UploadBaseURL())
	assert.Empty(t, cfg.OCR.Command, "no explicit OCR command by default")
	assert.False(t, cfg.Advanced.EnableProfiling)
	assert.False(t, cfg.Advanced.Debug)
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
server:
  port: 8080
  public_base_url: https://charts.example.com/
ocr:
  candidates: ["/opt/tess/bin/tesseract"]
  language: deu
  timeout_seconds: 5
analysis:
  command: python3 plot.py --quiet
  max_concurrent: 0
advanced:
  debug: true
  enable_profiling: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://charts.example.com/static/charts", cfg.ChartBaseURL())
	assert.Equal(t, []string{"/opt/tess/bin/tesseract"}, cfg.OCR.Candidates)
	assert.Equal(t, "deu", cfg.OCR.Language)
	assert.Equal(t, 5*time.Second, cfg.OCRTimeout())
	assert.Equal(t, "python3 plot.py --quiet", cfg.Analysis.Command)
	assert.Equal(t, 0, cfg.Analysis.MaxConcurrent, "zero keeps the engine unbounded")
	assert.True(t, cfg.Advanced.Debug)
	assert.True(t, cfg.Advanced.EnableProfiling)
	// unspecified fields keep defaults
	assert.Equal(t, 300*time.Second, cfg.AnalysisTimeout())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("TESSERACT_CMD", "/usr/bin/tesseract")
	t.Setenv("ANALYSIS_COMMAND", "Rscript other.R")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(dir, DefaultConfigFile))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dataDir, "uploads"), cfg.Storage.UploadsDirectory)
	assert.Equal(t, "/usr/bin/tesseract", cfg.OCR.Command)
	assert.Equal(t, "Rscript other.R", cfg.Analysis.Command)
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PUBLIC_BASE_URL")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PUBLIC_BASE_URL=http://10.0.0.5:5000\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PUBLIC_BASE_URL") })

	cfg, err := LoadConfig(filepath.Join(dir, DefaultConfigFile))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:5000/static/uploads", cfg.UploadBaseURL())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Analysis.Command = "  "
	assert.Error(t, cfg.Validate())
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.resolvePaths(dir)

	require.NoError(t, cfg.EnsureDirectories())
	for _, d := range []string{cfg.Storage.UploadsDirectory, cfg.Storage.ChartsDirectory} {
		st, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	}
}

func TestGetServerAddr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0:5000", cfg.GetServerAddr())
}
