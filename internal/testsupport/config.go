package testsupport

import (
	"path/filepath"
	"testing"

	"photosort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp cache directory per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Journal.Enabled = false
	cfg.Workflow.ResultTimeout = 5
	cfg.Workflow.QueuePollInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithService sets the preferred geocoding provider.
func WithService(service string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Geocoding.Service = service
	}
}

// WithJournal enables the run journal on the test config.
func WithJournal() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Journal.Enabled = true
	}
}
