// Package telemetry provides structured logging and optional tracing for
// datapilot runs.
//
// Logging is built on zerolog. Components obtain child loggers carrying a
// component field, and the orchestrator attaches run-scoped fields
// (run_id, stage, model) so a whole run can be filtered out of mixed output.
//
// Tracing is built on OpenTelemetry and is off by default. When enabled,
// each run stage (profile, plan, train, evaluate, reflect, replan) becomes a
// span exported through the stdout exporter; a one-shot offline process has
// no collector to ship to.
package telemetry
