package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"photosort/internal/config"
	"photosort/internal/gps"
	"photosort/internal/journal"
	"photosort/internal/locstore"
	"photosort/internal/logging"
	"photosort/internal/testsupport"
)

type stubGeo struct {
	place string
	calls int
}

func (s *stubGeo) Resolve(ctx context.Context, coord gps.Coordinate) string {
	s.calls++
	return s.place
}

// stubExiftool puts a fake exiftool on PATH that prints the given JSON
// payload and ignores its arguments.
func stubExiftool(t *testing.T, payload string) {
	t.Helper()
	binDir := t.TempDir()
	script := fmt.Sprintf("#!/bin/sh\ncat <<'PAYLOAD'\n%s\nPAYLOAD\n", payload)
	if err := os.WriteFile(filepath.Join(binDir, "exiftool"), []byte(script), 0o755); err != nil {
		t.Fatalf("write exiftool stub: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRunNoInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := NewRunner(cfg, logging.NewNop(), nil, &stubGeo{place: "x"})

	summary, err := runner.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Scanned != 0 || summary.Resolved != 0 || summary.Moved != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// Stores flush even on an empty run.
	for _, path := range []string{cfg.LocationCacheFile(), cfg.AliasFile(), cfg.ServiceKeysFile()} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("store not flushed: %v", err)
		}
	}
}

func TestRunOrganizesFileEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	photoDir := t.TempDir()
	photo := filepath.Join(photoDir, "photo.jpg")
	testsupport.WriteFile(t, photo)

	payload := fmt.Sprintf(`[{"SourceFile":%q,"CreateDate":"2024:03:01 10:00:00",`+
		`"GPSLatitude":"37 deg 46' 29.64\" N","GPSLongitude":"122 deg 25' 9.84\" W"}]`, photo)
	stubExiftool(t, payload)

	geo := &stubGeo{place: "Market St, San Francisco, US"}
	runner := NewRunner(cfg, logging.NewNop(), nil, geo)

	summary, err := runner.Run(context.Background(), Options{Inputs: []string{photoDir}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Scanned != 1 || summary.Located != 1 || summary.Resolved != 1 || summary.Moved != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	moved := filepath.Join(photoDir, "2024-03-01 Market St, San Francisco, US", "photo.jpg")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("file not organized: %v", err)
	}

	// The resolution is cached under the 4-decimal key.
	data, err := os.ReadFile(cfg.LocationCacheFile())
	if err != nil {
		t.Fatalf("read location cache: %v", err)
	}
	var cached map[string]string
	if err := json.Unmarshal(data, &cached); err != nil {
		t.Fatalf("parse location cache: %v", err)
	}
	if cached["37.7749,-122.4194"] != "Market St, San Francisco, US" {
		t.Fatalf("unexpected cache contents: %v", cached)
	}
}

func TestRunDryRunResolvesButDoesNotMove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	photoDir := t.TempDir()
	photo := filepath.Join(photoDir, "photo.jpg")
	testsupport.WriteFile(t, photo)

	payload := fmt.Sprintf(`[{"SourceFile":%q,"CreateDate":"2024:03:01 10:00:00",`+
		`"GPSLatitude":"37 deg 46' 29.64\" N","GPSLongitude":"122 deg 25' 9.84\" W"}]`, photo)
	stubExiftool(t, payload)

	runner := NewRunner(cfg, logging.NewNop(), nil, &stubGeo{place: "Market St, San Francisco, US"})
	summary, err := runner.Run(context.Background(), Options{Inputs: []string{photoDir}, DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !summary.DryRun || summary.Moved != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(photo); err != nil {
		t.Fatalf("dry run moved the file: %v", err)
	}

	// Resolution is still persisted under dry run.
	data, err := os.ReadFile(cfg.LocationCacheFile())
	if err != nil {
		t.Fatalf("read location cache: %v", err)
	}
	if string(data) == "{}" {
		t.Fatal("dry run should still cache resolutions")
	}
}

func TestRunAppliesDirectives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := NewRunner(cfg, logging.NewNop(), nil, &stubGeo{place: "x"})

	_, err := runner.Run(context.Background(), Options{
		Keys:    []string{"opencage:oc-secret", "not-a-directive", "bogusservice:key"},
		Aliases: []string{"Market St, San Francisco, US=Home", "missing-separator"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	keys := locstore.NewKeys(cfg.ServiceKeysFile(), logging.NewNop())
	if key, ok := keys.Get("OpenCage"); !ok || key != "oc-secret" {
		t.Fatalf("key directive not applied: %q %v", key, ok)
	}
	if _, ok := keys.Get("bogusservice"); ok {
		t.Fatal("unknown service should be skipped")
	}

	aliases := locstore.NewAliases(cfg.AliasFile(), logging.NewNop())
	if got := aliases.Resolve("MARKET ST, SAN FRANCISCO, US"); got != "Home" {
		t.Fatalf("alias directive not applied, got %q", got)
	}
	if aliases.Len() != 1 {
		t.Fatalf("invalid alias directive should be skipped, have %d", aliases.Len())
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureCacheDir(); err != nil {
		t.Fatal(err)
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: %v %v", locked, err)
	}
	defer lock.Unlock()

	runner := NewRunner(cfg, logging.NewNop(), nil, &stubGeo{place: "x"})
	if _, err := runner.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected lock contention error")
	}
}

func TestRunRecordsJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	runner := NewRunner(cfg, logging.NewNop(), nil, &stubGeo{place: "x"})

	if _, err := runner.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one journaled run, got %d", len(runs))
	}
}

func TestCanonicalServiceNamesAccepted(t *testing.T) {
	for _, name := range config.ServiceNames() {
		if config.CanonicalService(name) != name {
			t.Errorf("canonical name %q did not round-trip", name)
		}
	}
}
