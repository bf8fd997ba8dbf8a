package mover

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"photosort/internal/grouper"
	"photosort/internal/logging"
	"photosort/internal/services"
)

// Move records a completed (or planned, under dry-run) relocation.
type Move struct {
	Source      string
	Destination string
	Place       string
	CaptureDate string
}

// Mover relocates grouped files into their destination folders. Destination
// folders are created next to each source file, so files from different
// input directories stay under their own roots.
type Mover struct {
	dryRun bool
	logger *slog.Logger
}

// New creates a mover. Under dry-run the planned moves are logged and
// returned but nothing touches the filesystem.
func New(dryRun bool, logger *slog.Logger) *Mover {
	return &Mover{
		dryRun: dryRun,
		logger: logging.NewComponentLogger(logger, "mover"),
	}
}

// Relocate moves every file of every group into its group folder. Per-file
// failures are logged and skipped. The returned slice holds the moves that
// succeeded (or, under dry-run, would have been made).
func (m *Mover) Relocate(groups []grouper.Group) []Move {
	var moves []Move
	for _, group := range groups {
		folder := group.FolderName()
		if folder == "" {
			continue
		}
		for _, result := range group.Results {
			source := result.Item.Path
			target := filepath.Join(filepath.Dir(source), folder, filepath.Base(source))

			if m.dryRun {
				m.logger.Info("would move",
					logging.String("source", source),
					logging.String("target", target))
				moves = append(moves, Move{
					Source:      source,
					Destination: target,
					Place:       result.Place,
					CaptureDate: group.CaptureDate,
				})
				continue
			}

			if err := moveFile(source, target); err != nil {
				m.logger.Warn("move failed",
					logging.String("source", source),
					logging.String("target", target),
					logging.Error(err))
				continue
			}
			m.logger.Info("moved",
				logging.String("source", source),
				logging.String("target", target))
			moves = append(moves, Move{
				Source:      source,
				Destination: target,
				Place:       result.Place,
				CaptureDate: group.CaptureDate,
			})
		}
	}
	return moves
}

func moveFile(source, target string) error {
	if _, err := os.Stat(target); err == nil {
		return services.Wrap(services.ErrValidation, "moving", "move file", "Target file already exists", nil)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	renameErr := os.Rename(source, target)
	if renameErr == nil {
		return nil
	}

	// Cross-device moves fall back to copy and remove.
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyFile(source, target); err != nil {
			return fmt.Errorf("copy file across devices: %w", err)
		}
		if err := os.Remove(source); err != nil {
			return fmt.Errorf("remove source after copy: %w", err)
		}
		return nil
	}
	return fmt.Errorf("rename file: %w", renameErr)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if info, err := os.Stat(src); err == nil {
		_ = os.Chmod(dst, info.Mode())
	}
	return nil
}
