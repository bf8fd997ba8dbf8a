// Package scanner collects candidate media files from command-line path
// arguments, filtering by extension.
package scanner
