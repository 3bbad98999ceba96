package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chartflow/backend/internal/logger"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "chartflow",
	Short: "chartflow - turn uploaded files into charts",
	Long: `chartflow accepts CSV files, pictures of tables, images and audio clips.

Tabular input (directly or recovered with OCR) is handed to an external
analysis engine whose charts are returned as URLs. Other images and audio
are returned as-is.

Examples:
  chartflow serve                    # Start the HTTP server
  chartflow ingest sales.csv         # Run the pipeline once and print the result
  chartflow --config /etc/chartflow.yaml serve`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: chartflow.yaml next to the executable)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "chartflow %s (built %s)\n", Version, BuildTime)
	},
}
