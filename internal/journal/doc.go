// Package journal keeps a SQLite history of organizing runs and the file
// moves each run performed.
package journal
