package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chartflow/backend/internal/api"
	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/logger"
)

var ingestVerbose bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Run the pipeline once on a local file and print the JSON result",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "log pipeline progress")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries the result.
	level := "warn"
	if ingestVerbose {
		level = cfg.Advanced.LogLevel
	}
	if err := logger.InitializeTo(cmd.ErrOrStderr(), level, false); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrapf(err, "opening %s", args[0])
	}
	defer f.Close()

	asset, err := a.store.Store(filepath.Base(args[0]), f)
	if err != nil {
		return err
	}

	status, body := api.Assemble(a.pipeline.Run(cmd.Context(), asset))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		return err
	}
	if status >= 400 {
		return errors.Newf("ingestion failed with status %d", status)
	}
	return nil
}
