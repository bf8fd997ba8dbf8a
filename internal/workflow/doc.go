// Package workflow drives one organizing run end to end: scan inputs,
// extract metadata, resolve locations through the worker, group, move, and
// flush the durable stores.
package workflow
