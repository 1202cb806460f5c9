package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "logcost",
	Short: "LogCost - logging cost attribution and monitoring",
	Long: `LogCost measures what application logging costs. It aggregates log
volume per call site, prices it against cloud ingestion rates, and flags
the anti-patterns that inflate the bill.

It provides:
  - Snapshot analysis: top cost drivers, anti-patterns, recommendations
  - ROI estimates for proposed logging cleanups
  - Snapshot diffs between two points in time
  - A sidecar that watches snapshots, keeps history and posts Slack
    cost reports

For more information, visit: https://github.com/logcost/logcost-go`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
