package locstore

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"photosort/internal/logging"
)

// Keys holds per-provider API keys, persisted alongside the location cache so
// users only supply a key once via -k.
type Keys struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]string
}

// NewKeys loads the persisted provider key table.
func NewKeys(path string, logger *slog.Logger) *Keys {
	logger = logging.NewComponentLogger(logger, "servicekeys")

	k := &Keys{
		path:    path,
		logger:  logger,
		entries: map[string]string{},
	}

	entries, err := loadMap(path)
	if err != nil {
		logger.Warn("failed to load service keys",
			logging.String(logging.FieldEventType, "service_keys_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "keyed providers will be skipped until a key is supplied"))
		return k
	}
	k.entries = entries
	return k
}

// Get returns the stored key for a provider.
func (k *Keys) Get(service string) (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.entries[service]
	return key, ok
}

// Set records a provider key.
func (k *Keys) Set(service, key string) {
	service = strings.TrimSpace(service)
	key = strings.TrimSpace(key)
	if service == "" || key == "" {
		return
	}
	k.mu.Lock()
	k.entries[service] = key
	k.mu.Unlock()
}

// Entries returns a sorted snapshot for listing.
func (k *Keys) Entries() []Entry {
	k.mu.RLock()
	defer k.mu.RUnlock()

	entries := make([]Entry, 0, len(k.entries))
	for service, key := range k.entries {
		entries = append(entries, Entry{Key: service, Value: key})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Flush persists the key table atomically.
func (k *Keys) Flush() error {
	k.mu.RLock()
	snapshot := make(map[string]string, len(k.entries))
	for key, value := range k.entries {
		snapshot[key] = value
	}
	k.mu.RUnlock()

	return saveMap(k.path, snapshot)
}
