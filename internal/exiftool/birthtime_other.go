//go:build !linux

package exiftool

import (
	"fmt"
	"os"
)

// FileDate returns the file's modification day. Platforms without statx get
// no birth-time support. ISO YYYY-MM-DD.
func FileDate(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %q: %w", path, err)
	}
	return info.ModTime().Format("2006-01-02"), nil
}
