package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/cli"
	"github.com/logcost/logcost-go/pkg/export"
)

var analyzeFlags struct {
	provider string
	currency string
	top      int
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <stats-file>",
	Short: "Display top cost drivers",
	Long: `Analyze an exported snapshot: price every call site, rank the top
cost drivers, and list detected anti-patterns and recommendations.

Examples:
  # Top 10 drivers at GCP pricing
  logcost analyze /var/log/logcost/stats.json

  # Top 3 at AWS pricing
  logcost analyze stats.json --provider aws --top 3`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFlags.provider, "provider", "gcp", "pricing provider (gcp, aws, azure)")
	analyzeCmd.Flags().StringVar(&analyzeFlags.currency, "currency", "USD", "currency label shown in the report")
	analyzeCmd.Flags().IntVar(&analyzeFlags.top, "top", 10, "number of top cost drivers to show")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	snap, err := export.ReadSnapshot(args[0])
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}

	pricing, err := analyzer.PricingFor(analyzeFlags.provider)
	if err != nil {
		return cli.NewConfigError("provider", err.Error())
	}
	if analyzeFlags.currency != "" {
		pricing.Currency = analyzeFlags.currency
	}

	report := analyzer.New(pricing, analyzer.DefaultThresholds()).BuildReport(snap, analyzeFlags.top)
	return cli.WriteAnalysis(os.Stdout, report)
}
