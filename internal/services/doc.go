// Package services defines shared error utilities consumed by the workflow
// and external integrations.
//
// Structured error markers plus the Wrap helper keep failure classification
// uniform: callers test with errors.Is against the exported sentinels rather
// than matching message strings.
package services
