// Package logging configures structured log output for the sidecar.
//
// # Overview
//
// The logging package builds log/slog loggers from string configuration:
//   - JSON or text output formats
//   - Configurable log levels (debug, info, warn, error)
//   - Optional file:line source attribution
//
// Output defaults to stderr so stdout stays reserved for command output
// such as reports and diffs.
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// ParseLevel and ParseFormat are exported for configuration validation;
// they accept the same strings Setup does.
package logging
