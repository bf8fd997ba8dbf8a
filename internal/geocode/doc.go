// Package geocode resolves coordinates to place names through a chain of
// reverse-geocoding providers (Nominatim, OpenCage, LocationIQ), with a
// shared rate limiter pacing all outbound requests.
package geocode
