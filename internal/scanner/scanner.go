package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photosort/internal/logging"
)

// mediaExtensions are the file types worth organizing. Lowercase with dot.
var mediaExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".heic": {},
	".pdf":  {},
	".mp4":  {},
	".mov":  {},
	".avi":  {},
	".mkv":  {},
}

// Scanner collects media files from a mix of file and directory arguments.
type Scanner struct {
	recursive bool
	logger    *slog.Logger
}

// New creates a scanner. Directories are walked one level unless recursive.
func New(recursive bool, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{recursive: recursive, logger: logger}
}

// IsMediaFile reports whether the path carries a recognized media extension.
func IsMediaFile(path string) bool {
	_, ok := mediaExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Collect gathers media files from the given arguments. Unreadable or
// unrecognized arguments are logged and skipped, never fatal. Results within
// each directory are sorted for stable run order.
func (s *Scanner) Collect(args []string) []string {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			s.logger.Warn("skipping unreadable path", logging.String("path", arg), logging.Error(err))
			continue
		}
		if !info.IsDir() {
			if IsMediaFile(arg) {
				files = append(files, arg)
			} else {
				s.logger.Debug("skipping non-media file", logging.String("path", arg))
			}
			continue
		}
		files = append(files, s.collectDir(arg)...)
	}
	return files
}

func (s *Scanner) collectDir(dir string) []string {
	var files []string
	if s.recursive {
		err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn("skipping unreadable entry", logging.String("path", path), logging.Error(err))
				return nil
			}
			if !entry.IsDir() && IsMediaFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			s.logger.Warn("walk aborted", logging.String("path", dir), logging.Error(err))
		}
		sort.Strings(files)
		return files
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("skipping unreadable directory", logging.String("path", dir), logging.Error(err))
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if IsMediaFile(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files
}
