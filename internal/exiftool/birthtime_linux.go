//go:build linux

package exiftool

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// FileDate returns the file's birth day when the filesystem records one,
// falling back to the inode change time. ISO YYYY-MM-DD.
func FileDate(path string) (string, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME|unix.STATX_CTIME, &stx)
	if err != nil {
		return "", fmt.Errorf("statx %q: %w", path, err)
	}

	ts := stx.Ctime
	if stx.Mask&unix.STATX_BTIME != 0 && stx.Btime.Sec != 0 {
		ts = stx.Btime
	}
	return time.Unix(ts.Sec, int64(ts.Nsec)).Format("2006-01-02"), nil
}
