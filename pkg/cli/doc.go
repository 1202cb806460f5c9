/*
Package cli provides command-line interface utilities for the logcost command.

The cli package includes text renderers for analysis results, typed command
errors, and signal handling helpers shared by the logcost subcommands.

Output Rendering:

Command results render to any io.Writer in a stable plain-text layout:

	report := an.BuildReport(snap, 10)
	if err := cli.WriteAnalysis(os.Stdout, report); err != nil {
		return err
	}

Error Types:

Failures carry enough context for a one-line diagnosis at the top level:

	if watchPath == "" {
		return cli.NewConfigError("watcher.watch_path", "missing required field")
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
