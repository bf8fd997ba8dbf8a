package geocode

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"photosort/internal/config"
	"photosort/internal/gps"
	"photosort/internal/logging"
)

// detailThreshold is the comma count at which a place name is considered
// detailed enough to stop trying further providers.
const detailThreshold = 3

// Resolver turns a coordinate into a place name by walking a provider chain,
// keeping the most detailed answer seen so far. Detail is measured by comma
// count in the display name; a later provider only wins with strictly more
// commas than the current best.
type Resolver struct {
	providers []Provider
	limiter   *RateLimiter
	logger    *slog.Logger
}

// NewResolver builds the provider chain for the configured preferred service.
// Keyed providers without a stored API key are left out of the chain; the
// omission is logged once here rather than on every lookup.
func NewResolver(cfg *config.Config, keys KeyStore, clock clockwork.Clock, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	httpClient := &http.Client{Timeout: time.Duration(cfg.Geocoding.RequestTimeout) * time.Second}

	providers := make([]Provider, 0, 3)
	for _, service := range Chain(cfg.Geocoding.Service) {
		switch service {
		case ServiceNominatim:
			providers = append(providers, NewNominatim(cfg.Geocoding.NominatimBaseURL, cfg.Geocoding.UserAgent, httpClient))
		case ServiceOpenCage:
			key, ok := keyFor(keys, ServiceOpenCage)
			if !ok {
				logger.Debug("provider skipped, no api key", logging.String("service", ServiceOpenCage))
				continue
			}
			providers = append(providers, NewOpenCage(cfg.Geocoding.OpenCageBaseURL, key, httpClient))
		case ServiceLocationIQ:
			key, ok := keyFor(keys, ServiceLocationIQ)
			if !ok {
				logger.Debug("provider skipped, no api key", logging.String("service", ServiceLocationIQ))
				continue
			}
			providers = append(providers, NewLocationIQ(cfg.Geocoding.LocationIQBaseURL, key, httpClient))
		}
	}

	return &Resolver{
		providers: providers,
		limiter:   NewRateLimiter(time.Duration(cfg.Geocoding.MinRequestGap)*time.Second, clock),
		logger:    logger,
	}
}

// NewResolverWithProviders wires an explicit chain, used by tests and by
// callers that manage provider construction themselves.
func NewResolverWithProviders(providers []Provider, limiter *RateLimiter, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{providers: providers, limiter: limiter, logger: logger}
}

func keyFor(keys KeyStore, service string) (string, bool) {
	if keys == nil {
		return "", false
	}
	key, ok := keys.Get(service)
	if !ok || strings.TrimSpace(key) == "" {
		return "", false
	}
	return key, true
}

// Resolve walks the provider chain and returns the most detailed place name,
// or UnknownLocation when no provider produced a usable one. Provider errors
// are logged and skipped; the chain stops early once a candidate reaches the
// detail threshold or the context is cancelled.
func (r *Resolver) Resolve(ctx context.Context, coord gps.Coordinate) string {
	best := UnknownLocation
	bestCommas := 0

	for _, provider := range r.providers {
		if err := r.limiter.Wait(ctx); err != nil {
			r.logger.Debug("resolve interrupted",
				logging.String("service", provider.Name()),
				logging.Error(err))
			break
		}

		address, err := provider.Reverse(ctx, coord)
		if err != nil {
			r.logger.Warn("reverse geocode failed",
				logging.String("service", provider.Name()),
				logging.String("coordinate", CoordinateKey(coord)),
				logging.Error(err))
			continue
		}

		candidate := cleanPlaceName(address.DisplayName())
		if candidate == "" {
			continue
		}

		commas := strings.Count(candidate, ",")
		if commas > bestCommas {
			best = candidate
			bestCommas = commas
			r.logger.Debug("resolve candidate accepted",
				logging.String("service", provider.Name()),
				logging.String("place", candidate),
				logging.Int("detail", commas))
		}
		if commas >= detailThreshold {
			break
		}
	}

	return best
}

// CoordinateKey is the canonical cache key for a coordinate.
func CoordinateKey(coord gps.Coordinate) string {
	return gps.CacheKey(coord)
}

// cleanPlaceName collapses empty segments left by providers that return
// blank address fields. Cleanup runs before detail scoring so the comma
// count reflects actual components.
func cleanPlaceName(name string) string {
	for strings.Contains(name, ", , ") {
		name = strings.ReplaceAll(name, ", , ", ", ")
	}
	return strings.TrimSpace(name)
}
