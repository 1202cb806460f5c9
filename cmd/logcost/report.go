package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/cli"
	"github.com/logcost/logcost-go/pkg/export"
	"github.com/logcost/logcost-go/pkg/tracker"
)

var reportFlags struct {
	provider string
	currency string
	format   string
	top      int
}

var reportCmd = &cobra.Command{
	Use:   "report <stats-file> <output>",
	Short: "Write an analysis report to a file",
	Long: `Write a snapshot analysis to a file.

Formats:
  json        full report: totals, ranked entries, findings (default)
  html        standalone report page
  csv         one row per call site, spreadsheet-ready
  prometheus  textfile-collector metrics

The csv and prometheus formats export the snapshot as-is; json and html
price it first.

Examples:
  logcost report stats.json report.json
  logcost report stats.json report.html --format html --provider aws
  logcost report stats.json logcost.prom --format prometheus`,
	Args: cobra.ExactArgs(2),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportFlags.provider, "provider", "gcp", "pricing provider (gcp, aws, azure)")
	reportCmd.Flags().StringVar(&reportFlags.currency, "currency", "USD", "currency label shown in the report")
	reportCmd.Flags().StringVar(&reportFlags.format, "format", "json", "output format (json, html, csv, prometheus)")
	reportCmd.Flags().IntVar(&reportFlags.top, "top", 10, "top entries to include")
}

func runReport(cmd *cobra.Command, args []string) error {
	statsFile, output := args[0], args[1]

	snap, err := export.ReadSnapshot(statsFile)
	if err != nil {
		return cli.NewCommandError("report", err)
	}

	switch reportFlags.format {
	case "csv":
		if err := export.WriteCSVFile(output, snap); err != nil {
			return cli.NewCommandError("report", err)
		}
		fmt.Printf("Wrote CSV to %s\n", output)
		return nil

	case "prometheus":
		if err := export.WriteTextfile(output, snap); err != nil {
			return cli.NewCommandError("report", err)
		}
		fmt.Printf("Wrote Prometheus metrics to %s\n", output)
		return nil

	case "html":
		report, err := buildReport(snap)
		if err != nil {
			return err
		}
		if err := export.WriteHTMLFile(output, report); err != nil {
			return cli.NewCommandError("report", err)
		}
		fmt.Printf("Wrote HTML report to %s\n", output)
		return nil

	case "json":
		report, err := buildReport(snap)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return cli.NewCommandError("report", err)
		}
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return cli.NewCommandError("report", err)
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return cli.NewCommandError("report", err)
		}
		fmt.Printf("Wrote report to %s\n", output)
		return nil

	default:
		return cli.NewConfigError("format",
			fmt.Sprintf("unknown format %q (json, html, csv, prometheus)", reportFlags.format))
	}
}

func buildReport(snap tracker.Snapshot) (analyzer.Report, error) {
	pricing, err := analyzer.PricingFor(reportFlags.provider)
	if err != nil {
		return analyzer.Report{}, cli.NewConfigError("provider", err.Error())
	}
	if reportFlags.currency != "" {
		pricing.Currency = reportFlags.currency
	}
	return analyzer.New(pricing, analyzer.DefaultThresholds()).BuildReport(snap, reportFlags.top), nil
}
