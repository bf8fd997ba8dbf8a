package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeGeocoding(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGeocoding() error {
	c.Geocoding.Service = canonicalService(c.Geocoding.Service)
	if c.Geocoding.Service == "" {
		c.Geocoding.Service = defaultService
	}
	if c.Geocoding.Precision <= 0 {
		c.Geocoding.Precision = defaultPrecision
	}
	c.Geocoding.UserAgent = strings.TrimSpace(c.Geocoding.UserAgent)
	if c.Geocoding.UserAgent == "" {
		c.Geocoding.UserAgent = defaultUserAgent
	}
	if c.Geocoding.RequestTimeout <= 0 {
		c.Geocoding.RequestTimeout = defaultRequestTimeout
	}
	if c.Geocoding.MinRequestGap <= 0 {
		c.Geocoding.MinRequestGap = defaultMinRequestGap
	}
	c.Geocoding.NominatimBaseURL = normalizeBaseURL(c.Geocoding.NominatimBaseURL, defaultNominatimBaseURL)
	c.Geocoding.OpenCageBaseURL = normalizeBaseURL(c.Geocoding.OpenCageBaseURL, defaultOpenCageBaseURL)
	c.Geocoding.LocationIQBaseURL = normalizeBaseURL(c.Geocoding.LocationIQBaseURL, defaultLocationIQBaseURL)
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.ResultTimeout <= 0 {
		c.Workflow.ResultTimeout = defaultResultTimeout
	}
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
}

func (c *Config) normalizeJournal() error {
	c.Journal.Path = strings.TrimSpace(c.Journal.Path)
	if c.Journal.Path == "" {
		return nil
	}
	var err error
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeBaseURL(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	return strings.TrimRight(value, "/")
}

// canonicalService maps any casing of a known provider name to its canonical
// form, or returns "" for unknown input.
func canonicalService(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nominatim":
		return "Nominatim"
	case "opencage":
		return "OpenCage"
	case "locationiq":
		return "LocationIQ"
	default:
		return ""
	}
}

// CanonicalService exposes provider name canonicalization for CLI flag parsing.
func CanonicalService(name string) string {
	return canonicalService(name)
}

// ServiceNames lists the supported provider identifiers in priority-neutral order.
func ServiceNames() []string {
	return []string{"Nominatim", "OpenCage", "LocationIQ"}
}
