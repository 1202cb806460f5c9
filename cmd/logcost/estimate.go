package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/cli"
	"github.com/logcost/logcost-go/pkg/export"
)

var estimateFlags struct {
	reduction float64
	hours     float64
	rate      float64
}

var estimateCmd = &cobra.Command{
	Use:   "estimate <stats-file>",
	Short: "Estimate the ROI of a logging cleanup",
	Long: `Estimate the return on a proposed logging cleanup: how much of the
snapshot's cost a volume reduction would save, against the engineering
hours it takes.

Examples:
  # Cutting 30% of volume for 8 hours at $95/h
  logcost estimate stats.json --reduction 0.3 --hours 8 --rate 95`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().Float64Var(&estimateFlags.reduction, "reduction", 0, "fraction of log volume to eliminate (0 to 1)")
	estimateCmd.Flags().Float64Var(&estimateFlags.hours, "hours", 0, "engineering hours the cleanup takes")
	estimateCmd.Flags().Float64Var(&estimateFlags.rate, "rate", 0, "hourly rate")
	_ = estimateCmd.MarkFlagRequired("reduction")
	_ = estimateCmd.MarkFlagRequired("hours")
	_ = estimateCmd.MarkFlagRequired("rate")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	snap, err := export.ReadSnapshot(args[0])
	if err != nil {
		return cli.NewCommandError("estimate", err)
	}

	pricing, err := analyzer.PricingFor("gcp")
	if err != nil {
		return cli.NewCommandError("estimate", err)
	}
	report := analyzer.New(pricing, analyzer.DefaultThresholds()).BuildReport(snap, 1)

	result, err := analyzer.ROI(report.TotalCost, estimateFlags.reduction, estimateFlags.hours, estimateFlags.rate)
	if err != nil {
		return cli.NewCommandError("estimate", err)
	}
	return cli.WriteROI(os.Stdout, result)
}
