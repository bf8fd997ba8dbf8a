// Package resolver runs the long-lived worker goroutine that resolves
// coordinates to place names through the cache and the geocode fallback
// chain.
package resolver
