package geocode

import (
	"context"
	"strconv"
	"strings"

	"photosort/internal/gps"
)

// UnknownLocation is the sentinel returned when no provider produced a usable
// result. It is accepted as a terminal value and never persisted to the cache.
const UnknownLocation = "Unknown Location"

// Provider identifiers.
const (
	ServiceNominatim  = "Nominatim"
	ServiceOpenCage   = "OpenCage"
	ServiceLocationIQ = "LocationIQ"
)

// Address carries the common fields every provider response maps onto.
type Address struct {
	Road        string
	Suburb      string
	City        string
	State       string
	CountryCode string
}

// DisplayName joins the non-empty fields with ", ", uppercasing the country
// code. An entirely empty address yields "".
func (a Address) DisplayName() string {
	parts := make([]string, 0, 5)
	for _, field := range []string{a.Road, a.Suburb, a.City, a.State, strings.ToUpper(a.CountryCode)} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, ", ")
}

// Provider is a reverse-geocoding service client.
type Provider interface {
	Name() string
	Reverse(ctx context.Context, coord gps.Coordinate) (Address, error)
}

// KeyStore supplies per-provider API keys.
type KeyStore interface {
	Get(service string) (string, bool)
}

// Chain returns the provider priority order for a preferred service: the
// preferred service first, the remaining two as fallbacks in a fixed
// provider-specific order.
func Chain(preferred string) []string {
	switch preferred {
	case ServiceOpenCage:
		return []string{ServiceOpenCage, ServiceNominatim, ServiceLocationIQ}
	case ServiceLocationIQ:
		return []string{ServiceLocationIQ, ServiceNominatim, ServiceOpenCage}
	default:
		return []string{ServiceNominatim, ServiceOpenCage, ServiceLocationIQ}
	}
}

func formatCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
