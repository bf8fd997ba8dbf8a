// Command photosort organizes media files into folders named by capture
// date and reverse-geocoded place.
package main
