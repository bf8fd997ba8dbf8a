package mover

import (
	"os"
	"path/filepath"
	"testing"

	"photosort/internal/grouper"
	"photosort/internal/logging"
	"photosort/internal/resolver"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func singleGroup(path, date, place string) []grouper.Group {
	return grouper.Partition([]resolver.Result{{
		Item:  resolver.Item{Path: path, CaptureDate: date},
		Place: place,
	}})
}

func TestRelocateMovesIntoGroupFolder(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "photo.jpg")
	writeFile(t, source)

	moves := New(false, logging.NewNop()).Relocate(singleGroup(source, "2024-03-01", "Market St, San Francisco, US"))

	want := filepath.Join(dir, "2024-03-01 Market St, San Francisco, US", "photo.jpg")
	if len(moves) != 1 || moves[0].Destination != want {
		t.Fatalf("unexpected moves: %+v", moves)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("target missing: %v", err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
}

func TestRelocateDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "photo.jpg")
	writeFile(t, source)

	moves := New(true, logging.NewNop()).Relocate(singleGroup(source, "2024-03-01", "Paris, FR"))

	if len(moves) != 1 {
		t.Fatalf("dry run should still report the planned move, got %+v", moves)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("source was touched: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "2024-03-01 Paris, FR")); !os.IsNotExist(err) {
		t.Fatalf("folder was created under dry run: %v", err)
	}
}

func TestRelocateSkipsExistingTarget(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "photo.jpg")
	writeFile(t, source)
	writeFile(t, filepath.Join(dir, "2024-03-01 Paris, FR", "photo.jpg"))

	moves := New(false, logging.NewNop()).Relocate(singleGroup(source, "2024-03-01", "Paris, FR"))

	if len(moves) != 0 {
		t.Fatalf("expected no moves, got %+v", moves)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("source should survive a failed move: %v", err)
	}
}

func TestRelocateKeepsFilesUnderTheirOwnRoots(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	sourceA := filepath.Join(dirA, "a.jpg")
	sourceB := filepath.Join(dirB, "b.jpg")
	writeFile(t, sourceA)
	writeFile(t, sourceB)

	groups := grouper.Partition([]resolver.Result{
		{Item: resolver.Item{Path: sourceA, CaptureDate: "2024-03-01"}, Place: "Paris, FR"},
		{Item: resolver.Item{Path: sourceB, CaptureDate: "2024-03-01"}, Place: "Paris, FR"},
	})
	moves := New(false, logging.NewNop()).Relocate(groups)

	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %+v", moves)
	}
	if _, err := os.Stat(filepath.Join(dirA, "2024-03-01 Paris, FR", "a.jpg")); err != nil {
		t.Fatalf("file A not under its own root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dirB, "2024-03-01 Paris, FR", "b.jpg")); err != nil {
		t.Fatalf("file B not under its own root: %v", err)
	}
}
