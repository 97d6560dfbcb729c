// Package logging assembles structured slog loggers and helpers used across
// Verseline services.
//
// It centralizes level and output plumbing for the console/JSON handlers and
// exposes context-aware helpers so stage code can automatically tag log lines
// with queue item IDs, stages, and correlation IDs. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
package logging
