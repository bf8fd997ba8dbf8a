// Package gps converts exiftool sexagesimal GPS strings into signed decimal
// degrees and derives the durable cache keys used by the location cache.
package gps
