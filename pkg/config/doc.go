// Package config provides configuration for the tracker, sidecar and CLI.
//
// Configuration can come from a YAML file, from LOGCOST_* environment
// variables, or both. Values are applied in the following order (later
// overrides earlier):
//
//  1. Default values (DefaultConfig)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Sanitization
//
// # Environment Variables
//
//   - LOGCOST_OUTPUT: snapshot path written by the tracker
//   - LOGCOST_WATCH_PATH: snapshot path watched by the sidecar
//   - LOGCOST_NOTIFICATION_INTERVAL: seconds between notifications
//   - LOGCOST_HISTORY_DIR: directory for the history database
//   - LOGCOST_HISTORY_RETENTION: days of history to keep
//   - LOGCOST_SLACK_WEBHOOK: Slack webhook URL
//   - LOGCOST_PROVIDER: pricing provider (gcp/aws/azure)
//   - LOGCOST_NOTIFICATION_TOP_N: top statements per notification
//   - LOGCOST_POLL_INTERVAL: poll interval as a Go duration
//   - LOGCOST_HTTP_ADDR: sidecar status endpoint listen address
//   - LOGCOST_LOG_LEVEL: sidecar log level (debug/info/warn/error)
//
// # Sanitization
//
// A bad value never aborts startup. Sanitize coerces out-of-range intervals,
// counts and unknown providers back to their defaults and reports each
// adjustment so the caller can log it.
package config
