// Package dataset loads tabular CSV data and computes structural profiles.
//
// A Frame is an immutable column-oriented view of one CSV file. Columns are
// typed by a full-column parse: a column where every non-missing cell parses
// as a number (or a bool literal) is numeric, everything else is
// categorical. Profiling produces the run's EDA summary and the fingerprint
// used as the memory-store key.
package dataset
