package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"photosort/internal/geocode"
	"photosort/internal/gps"
	"photosort/internal/locstore"
	"photosort/internal/logging"
)

// Item is one media file awaiting location resolution.
type Item struct {
	Path        string
	CaptureDate string
	Coordinate  gps.Coordinate
}

// Result pairs an item with its resolved place name.
type Result struct {
	Item       Item
	Place      string
	ResolvedAt time.Time
}

// PlaceResolver turns a coordinate into a place name. Satisfied by
// *geocode.Resolver.
type PlaceResolver interface {
	Resolve(ctx context.Context, coord gps.Coordinate) string
}

// Worker is the single long-lived resolution goroutine. It alternates between
// idle polling and resolving one item at a time, and is the only writer to
// the location cache while running.
type Worker struct {
	cache        *locstore.Cache
	aliases      *locstore.Aliases
	geo          PlaceResolver
	pollInterval time.Duration
	clock        clockwork.Clock
	logger       *slog.Logger

	requests chan Item
	results  chan Result
	done     chan struct{}
}

// New creates a worker with a request buffer of the given capacity. The
// producer enqueues every item before draining results, so the buffer is
// sized to the scan. A nil clock selects the real clock.
func New(cache *locstore.Cache, aliases *locstore.Aliases, geo PlaceResolver, pollInterval time.Duration, capacity int, clock clockwork.Clock, logger *slog.Logger) *Worker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Worker{
		cache:        cache,
		aliases:      aliases,
		geo:          geo,
		pollInterval: pollInterval,
		clock:        clock,
		logger:       logging.NewComponentLogger(logger, "resolver"),
		requests:     make(chan Item, capacity),
		results:      make(chan Result, capacity),
		done:         make(chan struct{}),
	}
}

// Start launches the worker goroutine. Cancel the context to stop it; the
// stop signal is observed at every poll iteration.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Wait blocks until the worker goroutine has exited. Callers stop the worker
// and Wait before flushing the stores so no cache write is lost.
func (w *Worker) Wait() {
	<-w.done
}

// Submit enqueues an item for resolution.
func (w *Worker) Submit(item Item) {
	w.requests <- item
}

// Results exposes the completion channel. Results arrive in completion order.
func (w *Worker) Results() <-chan Result {
	return w.results
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	w.logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("worker stopping", logging.Int("pending", len(w.requests)))
			return
		case item := <-w.requests:
			result := w.resolve(ctx, item)
			select {
			case w.results <- result:
			case <-ctx.Done():
				return
			}
		case <-w.clock.After(w.pollInterval):
			// Idle poll; loop back to observe cancellation.
		}
	}
}

func (w *Worker) resolve(ctx context.Context, item Item) Result {
	key := gps.CacheKey(item.Coordinate)

	if place, ok := w.cache.Lookup(key); ok {
		w.logger.Debug("cache hit",
			logging.String("key", key),
			logging.String("place", place))
		return Result{Item: item, Place: place, ResolvedAt: w.clock.Now()}
	}

	place := w.geo.Resolve(ctx, item.Coordinate)
	if place != geocode.UnknownLocation {
		w.cache.Store(key, place)
	}
	if w.aliases != nil {
		place = w.aliases.Resolve(place)
	}

	w.logger.Debug("resolved",
		logging.String("key", key),
		logging.String("place", place))
	return Result{Item: item, Place: place, ResolvedAt: w.clock.Now()}
}
