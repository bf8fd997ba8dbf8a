// Package mover relocates grouped media files into date-and-place folders.
package mover
