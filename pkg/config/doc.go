// Package config loads process-level defaults from an optional YAML file.
// CLI flags always win over file values; the file exists so repeated runs
// against the same memory store and output root do not need the same flags
// retyped.
package config
