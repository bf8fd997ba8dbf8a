// Package grouper partitions resolved media files by capture date and place
// name and derives the destination folder for each group.
package grouper
