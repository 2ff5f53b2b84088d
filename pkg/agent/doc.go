// Package agent implements the run orchestrator at the core of datapilot.
//
// # Overview
//
// A run automates one classification-modeling workflow over a tabular
// dataset: profile, plan, train candidate models, evaluate, reflect, and
// optionally revise the plan and retry, bounded by a replan budget.
//
// The lifecycle is a small state machine:
//
//	init -> profiled -> planned -> {training -> evaluated -> reflected}
//	     -> (replan -> training ...) -> done
//
// The replan transition is taken only when the reflector recommends it and
// budget remains; a consumed budget stops the loop without error. The budget
// check runs after the iteration that used the replanned plan, so a run with
// budget N performs at most N replan transitions and N+1 full iterations.
//
// # Policies and collaborators
//
// Planning, reflection, and replan revision are pluggable policies injected
// at construction (Planner, Reflector, ReplanStrategy); each is a pure
// function of explicit inputs so policies can evolve without touching the
// loop. Dataset loading, training, evaluation, and report rendering are
// external collaborators behind interfaces (DatasetLoader, Trainer,
// Evaluator, ReportRenderer) with default implementations in pkg/dataset,
// pkg/model, pkg/evaluate, and pkg/report.
//
// # Error classification
//
// Failures are classified by broken contract: data, planning, io, model.
// Every stage failure aborts the run immediately and propagates to the
// caller; there is no per-stage retry or rollback. The explicit replan loop
// is the only retry-like mechanism, and it retries the whole
// train/evaluate/reflect cycle rather than individual operations.
package agent
