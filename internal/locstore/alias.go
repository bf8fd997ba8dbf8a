package locstore

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"photosort/internal/logging"
)

// foldCaser lowercases alias keys Unicode-correctly; place names are rarely
// plain ASCII.
var foldCaser = cases.Fold()

// Aliases maps a resolved place name to a user-preferred replacement. Source
// names are case-folded so lookups are case-insensitive; the persisted file
// holds the folded key.
type Aliases struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]string
}

// NewAliases loads the persisted alias table. A corrupt or unreadable file
// starts the table empty rather than failing the run.
func NewAliases(path string, logger *slog.Logger) *Aliases {
	logger = logging.NewComponentLogger(logger, "aliases")

	a := &Aliases{
		path:    path,
		logger:  logger,
		entries: map[string]string{},
	}

	entries, err := loadMap(path)
	if err != nil {
		logger.Warn("failed to load alias table",
			logging.String(logging.FieldEventType, "alias_table_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "resolved names will not be substituted"))
		return a
	}
	// Re-fold on load in case the file was edited by hand.
	for source, dest := range entries {
		a.entries[foldCaser.String(source)] = dest
	}
	return a
}

// Resolve returns the replacement for name when an alias exists, otherwise
// name unchanged. Matching is case-insensitive on the source side.
func (a *Aliases) Resolve(name string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if dest, ok := a.entries[foldCaser.String(name)]; ok {
		return dest
	}
	return name
}

// Define records source as an alias of dest. All alias definitions happen on
// the main flow before the resolver worker starts consuming items.
func (a *Aliases) Define(source, dest string) {
	source = foldCaser.String(strings.TrimSpace(source))
	dest = strings.TrimSpace(dest)
	if source == "" || dest == "" {
		return
	}
	a.mu.Lock()
	a.entries[source] = dest
	a.mu.Unlock()
}

// Len returns the number of defined aliases.
func (a *Aliases) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Entries returns a sorted snapshot for listing.
func (a *Aliases) Entries() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries := make([]Entry, 0, len(a.entries))
	for source, dest := range a.entries {
		entries = append(entries, Entry{Key: source, Value: dest})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Flush persists the alias table atomically.
func (a *Aliases) Flush() error {
	a.mu.RLock()
	snapshot := make(map[string]string, len(a.entries))
	for k, v := range a.entries {
		snapshot[k] = v
	}
	a.mu.RUnlock()

	return saveMap(a.path, snapshot)
}
