// Package exiftool wraps the exiftool binary for batch metadata extraction
// and derives per-file capture dates from tag and filesystem timestamps.
package exiftool
