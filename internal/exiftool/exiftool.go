package exiftool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// tagArgs selects the tags read for every file. The batch runs once per
// invocation regardless of file count.
var tagArgs = []string{
	"-j",
	"-DateTimeOriginal",
	"-CreateDate",
	"-CreationDate",
	"-GPSDateStamp",
	"-GPSDateTime",
	"-GPSLatitude",
	"-GPSLongitude",
}

// Record is one file's decoded metadata. Date and GPS tags come back as
// display strings; GPS coordinates use the sexagesimal form the gps package
// parses.
type Record struct {
	SourceFile       string `json:"SourceFile"`
	DateTimeOriginal string `json:"DateTimeOriginal"`
	CreateDate       string `json:"CreateDate"`
	CreationDate     string `json:"CreationDate"`
	GPSDateStamp     string `json:"GPSDateStamp"`
	GPSDateTime      string `json:"GPSDateTime"`
	GPSLatitude      string `json:"GPSLatitude"`
	GPSLongitude     string `json:"GPSLongitude"`
}

// Extract executes exiftool once against all paths and decodes the JSON
// array it prints. Callers treat an error as zero records and keep going.
func Extract(ctx context.Context, binary string, paths []string) ([]Record, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "exiftool"
	}
	if len(paths) == 0 {
		return nil, nil
	}

	args := make([]string, 0, len(tagArgs)+1+len(paths))
	args = append(args, tagArgs...)
	args = append(args, "--")
	args = append(args, paths...)

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.Output()
	if err != nil {
		// exiftool exits nonzero when any file fails but still prints
		// records for the rest; only treat empty output as fatal.
		if len(output) == 0 {
			return nil, fmt.Errorf("exiftool extract: %w: %s", err, exitDetail(err))
		}
	}

	var records []Record
	if err := json.Unmarshal(output, &records); err != nil {
		return nil, fmt.Errorf("exiftool parse: %w", err)
	}
	return records, nil
}

func exitDetail(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	return err.Error()
}

// HasGPS reports whether both coordinate tags are present. Files missing
// either one are excluded from organizing.
func (r Record) HasGPS() bool {
	return strings.TrimSpace(r.GPSLatitude) != "" && strings.TrimSpace(r.GPSLongitude) != ""
}

// MetadataDate returns the earliest-authority date tag as YYYY-MM-DD, or ""
// when no date tag is set. Tag priority is fixed: CreationDate, CreateDate,
// DateTimeOriginal, GPSDateStamp, GPSDateTime.
func (r Record) MetadataDate() string {
	for _, value := range []string{r.CreationDate, r.CreateDate, r.DateTimeOriginal, r.GPSDateStamp, r.GPSDateTime} {
		if normalized := normalizeDate(value); normalized != "" {
			return normalized
		}
	}
	return ""
}

// CaptureDate combines the metadata date with the filesystem date, keeping
// whichever is earlier. Dates are ISO formatted so lexicographic order is
// chronological order.
func (r Record) CaptureDate(fsDate string) string {
	metaDate := r.MetadataDate()
	switch {
	case metaDate == "":
		return fsDate
	case fsDate == "":
		return metaDate
	case fsDate < metaDate:
		return fsDate
	default:
		return metaDate
	}
}

// normalizeDate converts exiftool's "YYYY:MM:DD HH:MM:SS" display form to
// an ISO "YYYY-MM-DD" day.
func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) < 10 {
		return ""
	}
	day := value[:10]
	day = strings.ReplaceAll(day, ":", "-")
	if len(day) != 10 || day[4] != '-' || day[7] != '-' {
		return ""
	}
	return day
}
