package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultLogDir            = "~/.local/share/photosort/logs"
	defaultService           = "Nominatim"
	defaultPrecision         = 4
	defaultUserAgent         = "photosort-reverse-geocoder"
	defaultRequestTimeout    = 10
	defaultMinRequestGap     = 1
	defaultNominatimBaseURL  = "https://nominatim.openstreetmap.org"
	defaultOpenCageBaseURL   = "https://api.opencagedata.com"
	defaultLocationIQBaseURL = "https://us1.locationiq.com"
	defaultResultTimeout     = 10
	defaultQueuePollInterval = 1
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Geocoding: Geocoding{
			Service:           defaultService,
			Precision:         defaultPrecision,
			UserAgent:         defaultUserAgent,
			RequestTimeout:    defaultRequestTimeout,
			MinRequestGap:     defaultMinRequestGap,
			NominatimBaseURL:  defaultNominatimBaseURL,
			OpenCageBaseURL:   defaultOpenCageBaseURL,
			LocationIQBaseURL: defaultLocationIQBaseURL,
		},
		Workflow: Workflow{
			ResultTimeout:     defaultResultTimeout,
			QueuePollInterval: defaultQueuePollInterval,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "location")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/location"
	}
	return filepath.Join(home, ".cache", "location")
}
