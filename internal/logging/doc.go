// Package logging provides structured logging for devreg.
//
// This package wraps a zap logger with convenience functions and a few
// registry-specific helpers. Logging is silent unless a level is given,
// so the regctl CLI prints only its own output by default.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Handler registration, skipped duplicate writes, parameter sets
//   - Info: Loads, saves and store compaction
//   - Warn: Records that could not be read or applied
//   - Error: Failures reported to the user
//
// # Structured Logging
//
//	logging.Info("Registry loaded",
//	    zap.Int("sources", 1),
//	    zap.Int("applied", 3),
//	)
//
// Packages that take an injected *zap.Logger use the helpers directly:
//
//	logging.LogSave(log, "app/data_send_period", "300")
//	logging.LogLoadRecord(log, name, value, err)
//	logging.LogStoreRecord(log, "file", line, "missing '='")
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Without an explicit level, DEVREG_LOG_LEVEL is consulted. Output goes to
// stderr in console format so it never mixes with command output.
package logging
