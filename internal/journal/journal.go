package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"photosort/internal/mover"
)

//go:embed schema.sql
var schema string

// Run is one recorded organizing run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Scanned    int
	Resolved   int
	Moved      int
	DryRun     bool
}

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun writes the run row and its moves in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, moves []mover.Move) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (uuid, started_at, finished_at, scanned, resolved, moved, dry_run)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Scanned,
		run.Resolved,
		run.Moved,
		boolToInt(run.DryRun),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, move := range moves {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO moves (run_uuid, source, destination, place, capture_date)
             VALUES (?, ?, ?, ?, ?)`,
			run.ID,
			move.Source,
			move.Destination,
			move.Place,
			move.CaptureDate,
		)
		if err != nil {
			return fmt.Errorf("insert move: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT uuid, started_at, finished_at, scanned, resolved, moved, dry_run
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                 Run
			startedAt, finished string
			dryRun              int
		)
		if err := rows.Scan(&run.ID, &startedAt, &finished, &run.Scanned, &run.Resolved, &run.Moved, &dryRun); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		run.DryRun = dryRun != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunMoves returns the moves recorded for a run, in insertion order.
func (s *Store) RunMoves(ctx context.Context, runID string) ([]mover.Move, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT source, destination, place, capture_date
         FROM moves WHERE run_uuid = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	var moves []mover.Move
	for rows.Next() {
		var move mover.Move
		if err := rows.Scan(&move.Source, &move.Destination, &move.Place, &move.CaptureDate); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		moves = append(moves, move)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return moves, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
