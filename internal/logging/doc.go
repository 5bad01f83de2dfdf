// Package logging builds the slog loggers used across the daemon and CLI,
// with a compact console handler and a JSON handler selected by config.
package logging
