// Package config loads, validates and saves downloader settings.
//
// Settings are persisted as JSON by default; a path ending in ".toml" is
// read and written as TOML instead. Keys are snake_case in both formats.
//
// # Loading
//
// A missing file is not an error and yields DefaultSettings. A file that
// cannot be read or decoded also yields defaults, together with an error
// wrapping model.ErrConfigIO that callers log and otherwise ignore:
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    logger.Warn("using default settings", "error", err)
//	}
//
// # Validation
//
// Enumerated settings (format, video quality, audio bitrate, log level and
// log format) are closed sets. Validate rejects unknown labels instead of
// falling back silently, and rejects concurrency outside 1..5.
//
// # Saving
//
// Save writes to a temporary file and renames it into place while holding
// an advisory lock on "<path>.lock", so concurrent CLI and TUI instances do
// not interleave writes.
package config
