// Package logging builds the slog loggers used across the downloader.
//
// Loggers write either human-readable console lines or JSON. The "auto"
// format picks console output when stderr is a terminal and JSON otherwise,
// so piping the CLI into a file or log collector yields structured records.
package logging
