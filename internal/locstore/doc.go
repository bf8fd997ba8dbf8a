// Package locstore owns the three durable flat JSON documents under the cache
// directory: the location cache (coordinate key to place name), the alias
// table (folded source name to replacement), and the provider API keys.
//
// Each store is loaded in full at process start, held in memory for the run,
// and written back atomically (write-temp-then-rename) exactly once at normal
// shutdown. Abnormal termination deliberately loses unflushed mutations; the
// cache is an optimization, not a ledger.
package locstore
