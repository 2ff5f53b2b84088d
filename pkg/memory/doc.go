// Package memory persists what past runs learned about each dataset.
//
// The store is a single JSON document keyed by dataset fingerprint, plus an
// append-only note log. Every mutation rewrites the whole file synchronously;
// there is no write buffering and no cross-process locking. Two processes
// sharing one store file will race and the last writer wins.
//
// A corrupt or unreadable store file never blocks a run: load backs up the
// bad file, resets to an empty store, and records a note pointing at the
// backup.
package memory
