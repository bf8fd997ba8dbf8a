package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGeocoding(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	return nil
}

func (c *Config) validateGeocoding() error {
	if canonicalService(c.Geocoding.Service) == "" {
		return fmt.Errorf("geocoding.service must be one of %s", strings.Join(ServiceNames(), ", "))
	}
	if c.Geocoding.Precision < 1 || c.Geocoding.Precision > 8 {
		return errors.New("geocoding.precision must be between 1 and 8")
	}
	if err := ensurePositiveMap(map[string]int{
		"geocoding.request_timeout": c.Geocoding.RequestTimeout,
		"geocoding.min_request_gap": c.Geocoding.MinRequestGap,
	}); err != nil {
		return err
	}
	if strings.TrimSpace(c.Geocoding.UserAgent) == "" {
		return errors.New("geocoding.user_agent must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.result_timeout":      c.Workflow.ResultTimeout,
		"workflow.queue_poll_interval": c.Workflow.QueuePollInterval,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
