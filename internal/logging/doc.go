// Package logging provides structured logging for the updater.
//
// This package wraps zap with the small set of helpers the rest of the
// code uses. The logger is silent by default: an updater's normal output is
// its progress reporting, and diagnostic logging is opt-in through the
// UPDTRR_LOG_LEVEL environment variable.
//
// # Log Levels
//
//   - Debug: per-request detail (endpoints hit, payload sizes, timings)
//   - Info: run milestones (device started, stage finished, run summary)
//   - Warn: recoverable trouble (failed version check, www upload retry-worthy errors)
//   - Error: device or run failures
//
// # Structured Logging
//
// All log functions take structured fields:
//
//	logging.Info("device updated",
//	    zap.String("addr", "192.168.1.37"),
//	    zap.String("from", "2.8.0"),
//	    zap.String("to", "2.9.0"),
//	)
//
// # Configuration
//
// Initialize once at startup, before any command runs:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Logs go to stderr so they never interleave with report output or the TUI
// on stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
