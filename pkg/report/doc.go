// Package report renders the human-readable markdown summary written into
// every run's output directory. It embeds the same data persisted in the
// JSON artifacts.
package report
