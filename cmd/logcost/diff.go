package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/logcost/logcost-go/pkg/analyzer"
	"github.com/logcost/logcost-go/pkg/cli"
	"github.com/logcost/logcost-go/pkg/export"
)

var diffCmd = &cobra.Command{
	Use:   "diff <before> <after>",
	Short: "Compare two snapshots",
	Long: `Compare two snapshots and list the call sites that were added,
removed, or changed between them. Useful for checking what a deploy did
to logging volume.

Examples:
  logcost diff friday.json monday.json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	before, err := export.ReadSnapshot(args[0])
	if err != nil {
		return cli.NewCommandError("diff", err)
	}
	after, err := export.ReadSnapshot(args[1])
	if err != nil {
		return cli.NewCommandError("diff", err)
	}

	return cli.WriteDiff(os.Stdout, analyzer.Compare(before, after))
}
