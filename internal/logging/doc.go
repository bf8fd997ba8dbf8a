// Package logging assembles structured slog loggers and formatting helpers
// used across photosort components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and provides typed attribute helpers plus a no-op logger for tests
// and wiring code that cannot fail. Prefer these constructors over hand-rolled
// slog setup so every component emits data with the same shape.
package logging
