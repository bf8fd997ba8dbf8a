package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"photosort/internal/config"
	"photosort/internal/exiftool"
	"photosort/internal/geocode"
	"photosort/internal/gps"
	"photosort/internal/grouper"
	"photosort/internal/journal"
	"photosort/internal/locstore"
	"photosort/internal/logging"
	"photosort/internal/mover"
	"photosort/internal/resolver"
	"photosort/internal/scanner"
	"photosort/internal/services"
)

// Options carries the per-run settings from the CLI.
type Options struct {
	Inputs    []string
	Recursive bool
	DryRun    bool
	Keys      []string // Service:Key directives
	Aliases   []string // Source=Dest directives
}

// Summary reports what a run did.
type Summary struct {
	Scanned  int
	Located  int
	Resolved int
	Groups   int
	Moved    int
	DryRun   bool
	Partial  bool
}

// Runner orchestrates one organizing run: scan, extract, resolve, group,
// move, journal, flush.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	clock  clockwork.Clock
	geo    resolver.PlaceResolver
}

// NewRunner creates a runner. A nil clock selects the real clock; a nil geo
// builds the provider chain from the config and stored keys at run time
// (tests inject a stub).
func NewRunner(cfg *config.Config, logger *slog.Logger, clock clockwork.Clock, geo resolver.PlaceResolver) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		clock:  clock,
		geo:    geo,
	}
}

// Run executes the organize flow. Per-file failures are logged and skipped;
// the run fails only when startup state (cache dir, lock) or the shutdown
// flush cannot be handled.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{DryRun: opts.DryRun}
	startedAt := r.clock.Now()

	if err := r.cfg.EnsureCacheDir(); err != nil {
		return summary, err
	}

	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return summary, services.Wrap(services.ErrTransient, "startup", "acquire lock",
			"Another run holds the cache lock", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	aliases := locstore.NewAliases(r.cfg.AliasFile(), r.logger)
	cache := locstore.NewCache(r.cfg.LocationCacheFile(), aliases, r.logger)
	keys := locstore.NewKeys(r.cfg.ServiceKeysFile(), r.logger)

	// Directives apply before anything is enqueued so aliases and keys are
	// visible to every resolution.
	r.applyKeyDirectives(keys, opts.Keys)
	r.applyAliasDirectives(aliases, opts.Aliases)

	geo := r.geo
	if geo == nil {
		geo = geocode.NewResolver(r.cfg, keys, r.clock, r.logger)
	}

	files := scanner.New(opts.Recursive, r.logger).Collect(opts.Inputs)
	summary.Scanned = len(files)

	items := r.extract(ctx, files)
	summary.Located = len(items)

	worker := resolver.New(cache, aliases, geo,
		time.Duration(r.cfg.Workflow.QueuePollInterval)*time.Second,
		len(items), r.clock, r.logger)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker.Start(workerCtx)

	for _, item := range items {
		worker.Submit(item)
	}

	results, interrupted := r.drain(ctx, worker, len(items))
	summary.Resolved = len(results)
	summary.Partial = len(results) < len(items)

	var moves []mover.Move
	if !interrupted {
		groups := grouper.Partition(results)
		summary.Groups = len(groups)

		moves = mover.New(opts.DryRun, r.logger).Relocate(groups)
		summary.Moved = len(moves)

		r.recordRun(ctx, summary, startedAt, moves)
	}

	// Worker exits before the flush so no cache write races the snapshot.
	stopWorker()
	worker.Wait()

	if err := flushStores(cache, aliases, keys); err != nil {
		return summary, fmt.Errorf("flush stores: %w", err)
	}
	if interrupted {
		return summary, ctx.Err()
	}

	r.logger.Info("run complete",
		logging.Int("scanned", summary.Scanned),
		logging.Int("located", summary.Located),
		logging.Int("resolved", summary.Resolved),
		logging.Int("moved", summary.Moved),
		logging.Bool("dry_run", summary.DryRun))
	return summary, nil
}

// extract runs the exiftool batch and keeps only files with usable GPS
// coordinates and a capture date.
func (r *Runner) extract(ctx context.Context, files []string) []resolver.Item {
	records, err := exiftool.Extract(ctx, r.cfg.ExiftoolBinary(), files)
	if err != nil {
		r.logger.Warn("metadata extraction failed",
			logging.String(logging.FieldEventType, "exiftool_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no files will be organized this run"))
		return nil
	}

	items := make([]resolver.Item, 0, len(records))
	for _, record := range records {
		if !record.HasGPS() {
			r.logger.Debug("no gps coordinates", logging.String("path", record.SourceFile))
			continue
		}

		coord, err := gps.ParseCoordinate(record.GPSLatitude, record.GPSLongitude, r.cfg.Geocoding.Precision)
		if err != nil {
			r.logger.Warn("unparsable gps coordinates",
				logging.String("path", record.SourceFile),
				logging.Error(err))
			continue
		}

		fsDate, err := exiftool.FileDate(record.SourceFile)
		if err != nil {
			r.logger.Warn("no filesystem date", logging.String("path", record.SourceFile), logging.Error(err))
		}
		captureDate := record.CaptureDate(fsDate)
		if captureDate == "" {
			r.logger.Warn("no capture date", logging.String("path", record.SourceFile))
			continue
		}

		items = append(items, resolver.Item{
			Path:        record.SourceFile,
			CaptureDate: captureDate,
			Coordinate:  coord,
		})
	}
	return items
}

// drain collects results until all items arrive or the per-result timeout
// elapses. Timeout means proceeding with whatever resolved; context
// cancellation aborts the run.
func (r *Runner) drain(ctx context.Context, worker *resolver.Worker, expected int) ([]resolver.Result, bool) {
	results := make([]resolver.Result, 0, expected)
	timeout := time.Duration(r.cfg.Workflow.ResultTimeout) * time.Second

	for len(results) < expected {
		select {
		case result := <-worker.Results():
			results = append(results, result)
		case <-r.clock.After(timeout):
			r.logger.Warn("timed out waiting for resolutions",
				logging.Int("resolved", len(results)),
				logging.Int("pending", expected-len(results)),
				logging.String(logging.FieldImpact, "proceeding with partial results"))
			return results, false
		case <-ctx.Done():
			r.logger.Warn("run cancelled", logging.Int("resolved", len(results)))
			return results, true
		}
	}
	return results, false
}

func (r *Runner) applyKeyDirectives(keys *locstore.Keys, directives []string) {
	for _, directive := range directives {
		service, key, ok := strings.Cut(directive, ":")
		if !ok || strings.TrimSpace(service) == "" || strings.TrimSpace(key) == "" {
			r.logger.Warn("invalid key directive, expected Service:Key", logging.String("directive", directive))
			continue
		}
		canonical := config.CanonicalService(service)
		if canonical == "" {
			r.logger.Warn("unknown service in key directive",
				logging.String("service", service),
				logging.String("known", strings.Join(config.ServiceNames(), ", ")))
			continue
		}
		keys.Set(canonical, key)
	}
}

func (r *Runner) applyAliasDirectives(aliases *locstore.Aliases, directives []string) {
	for _, directive := range directives {
		source, dest, ok := strings.Cut(directive, "=")
		if !ok || strings.TrimSpace(source) == "" || strings.TrimSpace(dest) == "" {
			r.logger.Warn("invalid alias directive, expected Source=Dest", logging.String("directive", directive))
			continue
		}
		aliases.Define(source, dest)
	}
}

// recordRun writes the journal entry. Best effort; journal problems never
// fail the run.
func (r *Runner) recordRun(ctx context.Context, summary Summary, startedAt time.Time, moves []mover.Move) {
	if !r.cfg.Journal.Enabled {
		return
	}

	store, err := journal.Open(r.cfg.JournalPath())
	if err != nil {
		r.logger.Warn("journal unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	run := journal.Run{
		ID:         uuid.NewString(),
		StartedAt:  startedAt,
		FinishedAt: r.clock.Now(),
		Scanned:    summary.Scanned,
		Resolved:   summary.Resolved,
		Moved:      summary.Moved,
		DryRun:     summary.DryRun,
	}
	if err := store.RecordRun(ctx, run, moves); err != nil {
		r.logger.Warn("journal write failed", logging.Error(err))
	}
}

func flushStores(cache *locstore.Cache, aliases *locstore.Aliases, keys *locstore.Keys) error {
	return errors.Join(cache.Flush(), aliases.Flush(), keys.Flush())
}
