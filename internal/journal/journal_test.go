package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"photosort/internal/mover"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close journal: %v", err)
		}
	})
	return store
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	run := Run{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Scanned:    5,
		Resolved:   4,
		Moved:      3,
		DryRun:     false,
	}
	moves := []mover.Move{
		{Source: "/photos/a.jpg", Destination: "/photos/2024-03-01 Paris, FR/a.jpg", Place: "Paris, FR", CaptureDate: "2024-03-01"},
		{Source: "/photos/b.jpg", Destination: "/photos/2024-03-01 Paris, FR/b.jpg", Place: "Paris, FR", CaptureDate: "2024-03-01"},
	}
	if err := store.RecordRun(ctx, run, moves); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || got.Scanned != 5 || got.Resolved != 4 || got.Moved != 3 || got.DryRun {
		t.Fatalf("unexpected run row: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("started_at round trip: %v", got.StartedAt)
	}

	gotMoves, err := store.RunMoves(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunMoves failed: %v", err)
	}
	if len(gotMoves) != 2 || gotMoves[0].Source != "/photos/a.jpg" {
		t.Fatalf("unexpected moves: %+v", gotMoves)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var last string
	for i := 0; i < 3; i++ {
		run := Run{
			ID:         uuid.NewString(),
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		}
		last = run.ID
		if err := store.RecordRun(ctx, run, nil); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit not applied, got %d runs", len(runs))
	}
	if runs[0].ID != last {
		t.Fatalf("newest run not first: %+v", runs)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	if _, err := second.RecentRuns(context.Background(), 5); err != nil {
		t.Fatalf("query after reopen: %v", err)
	}
}
