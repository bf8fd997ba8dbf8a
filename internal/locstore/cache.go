package locstore

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"photosort/internal/logging"
)

// Cache maps rounded-coordinate keys to resolved place names. It is loaded
// once at startup, mutated in memory during the run, and flushed to disk
// exactly once at normal shutdown via Flush.
type Cache struct {
	path    string
	logger  *slog.Logger
	aliases *Aliases

	mu      sync.RWMutex
	entries map[string]string
}

// NewCache loads the persisted location cache. Aliases may be nil, in which
// case lookups return stored names verbatim. A corrupt or unreadable file
// starts the cache empty rather than failing the run.
func NewCache(path string, aliases *Aliases, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "loccache")

	c := &Cache{
		path:    path,
		logger:  logger,
		aliases: aliases,
		entries: map[string]string{},
	}

	entries, err := loadMap(path)
	if err != nil {
		logger.Warn("failed to load location cache",
			logging.String(logging.FieldEventType, "location_cache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "previously resolved coordinates will be re-geocoded"))
		return c
	}
	c.entries = entries
	logger.Debug("loaded location cache", logging.Int("entry_count", len(entries)), logging.String("path", path))
	return c
}

// Lookup returns the cached place name for a coordinate key, passed through
// the alias table. The second return reports whether the key was present.
func (c *Cache) Lookup(key string) (string, bool) {
	c.mu.RLock()
	name, found := c.entries[key]
	c.mu.RUnlock()
	if !found {
		return "", false
	}
	if c.aliases != nil {
		name = c.aliases.Resolve(name)
	}
	return name, true
}

// Store records a freshly resolved name. The sentinel "Unknown Location" is
// never stored so failed lookups are retried on later runs.
func (c *Cache) Store(key, name string) {
	key = strings.TrimSpace(key)
	if key == "" || name == unknownLocation {
		return
	}
	c.mu.Lock()
	c.entries[key] = name
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a sorted snapshot for listing.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.entries))
	for key, name := range c.entries {
		entries = append(entries, Entry{Key: key, Value: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Flush persists the cache atomically. Called once at normal shutdown.
func (c *Cache) Flush() error {
	c.mu.RLock()
	snapshot := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		snapshot[k] = v
	}
	c.mu.RUnlock()

	return saveMap(c.path, snapshot)
}

// Entry is a single listed key/value pair from one of the durable stores.
type Entry struct {
	Key   string
	Value string
}
