// Package logging provides a small leveled logger for the comic gallery.
//
// Levels, lowest first:
//   - DEBUG: verbose diagnostics (parser and copy details)
//   - INFO: startup sections, import summaries
//   - WARN: recoverable problems such as a catalog that failed to parse
//   - ERROR: failed requests and imports
//   - FATAL: startup errors that terminate the process
//
// The level comes from DEBUG=true or LOG_LEVEL and can be overridden with
// SetLevel.
package logging
