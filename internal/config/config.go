// Package config provides YAML-based configuration with .env and
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/chartflow/backend/internal/errors"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "chartflow.yaml"

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	OCR      OCRConfig      `yaml:"ocr"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port          int    `yaml:"port"`
	BindAddress   string `yaml:"bind_address"`
	PublicBaseURL string `yaml:"public_base_url"`
	EnableCORS    bool   `yaml:"enable_cors"`
	AllowOrigins  string `yaml:"allow_origins"`
	ReadTimeout   int    `yaml:"read_timeout_seconds"`
	WriteTimeout  int    `yaml:"write_timeout_seconds"`
	IdleTimeout   int    `yaml:"idle_timeout_seconds"`
	BodyLimit     string `yaml:"body_limit"`
}

// StorageConfig contains file storage settings. Uploads and charts live
// under the static directory so both are reachable through /static.
type StorageConfig struct {
	StaticDirectory  string `yaml:"static_directory"`
	UploadsDirectory string `yaml:"uploads_directory"`
	ChartsDirectory  string `yaml:"charts_directory"`
}

// OCRConfig configures the text extraction engine. An explicit Command
// wins over Candidates; with neither, "tesseract" is looked up on PATH.
type OCRConfig struct {
	Candidates     []string `yaml:"candidates"`
	Command        string   `yaml:"command"`
	Language       string   `yaml:"language"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// AnalysisConfig configures the external charting engine.
type AnalysisConfig struct {
	Command        string `yaml:"command"`
	WorkDirectory  string `yaml:"work_directory"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxConcurrent  int    `yaml:"max_concurrent"` // <= 0 for unlimited
}

// JobsConfig controls the async ingest job table.
type JobsConfig struct {
	RetentionMinutes       int `yaml:"retention_minutes"`
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
}

// AdvancedConfig contains logging and profiling options
type AdvancedConfig struct {
	Debug                bool   `yaml:"debug"` // error bodies carry their cause
	LogLevel             string `yaml:"log_level"`
	LogFormat            string `yaml:"log_format"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
	EnableProfiling      bool   `yaml:"enable_profiling"`
	DuckDBThreads        int    `yaml:"duckdb_threads"`
	DuckDBMemoryLimit    string `yaml:"duckdb_memory_limit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:          5000,
			BindAddress:   "0.0.0.0",
			PublicBaseURL: "http://localhost:5000",
			EnableCORS:    true,
			AllowOrigins:  "*",
			ReadTimeout:   30,
			WriteTimeout:  600,
			IdleTimeout:   120,
			BodyLimit:     "64M",
		},
		Storage: StorageConfig{
			StaticDirectory:  "./static",
			UploadsDirectory: "./static/uploads",
			ChartsDirectory:  "./static/charts",
		},
		OCR: OCRConfig{
			TimeoutSeconds: 60,
		},
		Analysis: AnalysisConfig{
			Command:        "Rscript analysis.R",
			WorkDirectory:  ".",
			TimeoutSeconds: 300,
			MaxConcurrent:  2,
		},
		Jobs: JobsConfig{
			RetentionMinutes:       60,
			CleanupIntervalMinutes: 5,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "console",
			EnableRequestLogging: true,
			EnableProfiling:      false,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "256MB",
		},
	}
}

// LoadConfig loads configuration from a YAML file, creating it with
// defaults when missing. A .env file next to the config is loaded before
// environment overrides are applied.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", configPath)
		}
	}

	configDir := filepath.Dir(configPath)

	// Missing .env is fine; existing variables win.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	config.applyEnvironmentOverrides()
	config.resolvePaths(configDir)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration as YAML.
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	header := []byte("# chartflow configuration\n# This file is auto-generated on first run\n\n")
	if err := os.WriteFile(configPath, append(header, output...), 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR moves the whole static tree.
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.StaticDirectory = dataDir
		c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
		c.Storage.ChartsDirectory = filepath.Join(dataDir, "charts")
	}

	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		c.Server.PublicBaseURL = base
	}
	if cmd := os.Getenv("TESSERACT_CMD"); cmd != "" {
		c.OCR.Command = cmd
	}
	if cmd := os.Getenv("ANALYSIS_COMMAND"); cmd != "" {
		c.Analysis.Command = cmd
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Storage.StaticDirectory,
		&c.Storage.UploadsDirectory,
		&c.Storage.ChartsDirectory,
		&c.Analysis.WorkDirectory,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
}

// Validate rejects settings the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf("invalid server port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Analysis.Command) == "" {
		return errors.WithHint(errors.New("analysis command is empty"),
			"set analysis.command in the config file or ANALYSIS_COMMAND")
	}
	return nil
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// UploadBaseURL is the public prefix of stored uploads.
func (c *AppConfig) UploadBaseURL() string {
	return c.publicBase() + "/static/uploads"
}

// ChartBaseURL is the public prefix of generated charts.
func (c *AppConfig) ChartBaseURL() string {
	return c.publicBase() + "/static/charts"
}

func (c *AppConfig) publicBase() string {
	return strings.TrimRight(c.Server.PublicBaseURL, "/")
}

// OCRTimeout returns the OCR timeout, zero meaning unbounded.
func (c *AppConfig) OCRTimeout() time.Duration {
	return time.Duration(c.OCR.TimeoutSeconds) * time.Second
}

// AnalysisTimeout returns the analysis timeout, zero meaning unbounded.
func (c *AppConfig) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}

// JobRetention returns how long finished jobs are kept.
func (c *AppConfig) JobRetention() time.Duration {
	return time.Duration(c.Jobs.RetentionMinutes) * time.Minute
}

// CleanupInterval returns the job pruning period.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Jobs.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Jobs.CleanupIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.StaticDirectory,
		c.Storage.UploadsDirectory,
		c.Storage.ChartsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}
