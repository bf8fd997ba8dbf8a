package grouper

import (
	"strings"

	"photosort/internal/resolver"
)

// Group collects the files that share a capture date and place name.
type Group struct {
	CaptureDate string
	Place       string
	Results     []resolver.Result
}

// FolderName returns the destination folder for a group. Characters that are
// unsafe in folder names on common filesystems become underscores.
func (g Group) FolderName() string {
	return FolderName(g.CaptureDate, g.Place)
}

var unsafeChars = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	":", "_",
	`"`, "_",
	"*", "_",
	"?", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// FolderName builds "<date> <place>", trimmed, with unsafe characters
// replaced.
func FolderName(captureDate, place string) string {
	return unsafeChars.Replace(strings.TrimSpace(captureDate + " " + place))
}

// Partition splits resolved results into groups keyed by the exact
// (capture date, place) pair. Group order follows first appearance; order
// within a group follows arrival order.
func Partition(results []resolver.Result) []Group {
	index := map[[2]string]int{}
	var groups []Group

	for _, result := range results {
		key := [2]string{result.Item.CaptureDate, result.Place}
		position, seen := index[key]
		if !seen {
			position = len(groups)
			index[key] = position
			groups = append(groups, Group{CaptureDate: result.Item.CaptureDate, Place: result.Place})
		}
		groups[position].Results = append(groups[position].Results, result)
	}
	return groups
}
