package agent

import (
	"fmt"
	"time"
)

// TargetAuto is the sentinel target name requesting target inference.
const TargetAuto = "auto"

// Phase tracks the run's position in its lifecycle state machine:
// init -> profiled -> planned -> {training -> evaluated -> reflected}
// -> (replan -> training ...) -> done.
type Phase string

const (
	// PhaseInit is the initial state before profiling.
	PhaseInit Phase = "init"

	// PhaseProfiled is entered once the profile and fingerprint exist.
	PhaseProfiled Phase = "profiled"

	// PhasePlanned is entered once the initial plan exists.
	PhasePlanned Phase = "planned"

	// PhaseTraining is entered when an iteration begins fitting candidates.
	PhaseTraining Phase = "training"

	// PhaseEvaluated is entered once the iteration's payload exists.
	PhaseEvaluated Phase = "evaluated"

	// PhaseReflected is entered once the iteration's reflection exists.
	PhaseReflected Phase = "reflected"

	// PhaseReplan is entered only when a replan is actually taken.
	PhaseReplan Phase = "replan"

	// PhaseDone is the terminal state.
	PhaseDone Phase = "done"
)

// IsTerminal returns true for the terminal phase.
func (p Phase) IsTerminal() bool { return p == PhaseDone }

// Validate checks if the phase is valid.
func (p Phase) Validate() error {
	switch p {
	case PhaseInit, PhaseProfiled, PhasePlanned, PhaseTraining,
		PhaseEvaluated, PhaseReflected, PhaseReplan, PhaseDone:
		return nil
	default:
		return fmt.Errorf("invalid phase: %s", p)
	}
}

// Plan is an ordered sequence of task labels. The orchestrator never
// reorders or truncates it; only the replan strategy extends it.
type Plan []string

// Clone returns an independent copy of the plan.
func (p Plan) Clone() Plan {
	return append(Plan(nil), p...)
}

// Index returns the position of a task label, or -1.
func (p Plan) Index(task string) int {
	for i, t := range p {
		if t == task {
			return i
		}
	}
	return -1
}

// Extends reports whether p begins with base, i.e. base's entries are all
// present in the same order with nothing removed.
func (p Plan) Extends(base Plan) bool {
	if len(p) < len(base) {
		return false
	}
	for i, t := range base {
		if p[i] != t {
			return false
		}
	}
	return true
}

// Reflection status values.
const (
	StatusOK             = "ok"
	StatusNeedsAttention = "needs_attention"
)

// Reflection is a reflector's verdict on one iteration. Field names match
// the persisted reflection.json schema.
type Reflection struct {
	// Status is "ok", or "needs_attention" iff at least one issue was raised.
	Status string `json:"status"`

	// BestModel names the winning candidate.
	BestModel string `json:"best_model"`

	// Issues describes identified problems.
	Issues []string `json:"issues"`

	// Suggestions lists improvement recommendations.
	Suggestions []string `json:"suggestions"`

	// ReplanRecommended asks the orchestrator to revise the plan and retry.
	ReplanRecommended bool `json:"replan_recommended"`
}

// RunContext identifies one execution. It is owned exclusively by the
// orchestrator for the run's lifetime and is immutable once training
// begins, except for Target, which may be updated once during target
// inference.
type RunContext struct {
	// RunID is unique enough to avoid output-directory collisions
	// (timestamp plus random suffix; collision freedom is not guaranteed).
	RunID string `json:"run_id"`

	// StartedAt is the UTC start timestamp, RFC 3339.
	StartedAt string `json:"started_at"`

	// DataPath is the dataset location.
	DataPath string `json:"data_path"`

	// Target is the resolved target column name.
	Target string `json:"target"`

	// OutputDir is this run's exclusive artifact directory.
	OutputDir string `json:"output_dir"`

	// Seed drives all stage randomness.
	Seed int64 `json:"seed"`

	// TestFraction is the held-out split fraction, in (0, 1).
	TestFraction float64 `json:"test_size"`

	// MaxReplans bounds the number of replan transitions.
	MaxReplans int `json:"max_replans"`
}

// RunOptions are the caller-supplied parameters of a run, validated before
// any work starts.
type RunOptions struct {
	// DataPath is the CSV dataset location.
	DataPath string `validate:"required"`

	// Target is the target column name, or TargetAuto to infer it.
	Target string `validate:"required"`

	// OutputRoot is the directory run output directories are created under.
	OutputRoot string `validate:"required"`

	// Seed is the random seed.
	Seed int64

	// TestFraction is the held-out split fraction.
	TestFraction float64 `validate:"gt=0,lt=1"`

	// MaxReplans is the replan budget.
	MaxReplans int `validate:"gte=0"`
}

// nowISO returns the current UTC time without sub-second precision in
// RFC 3339 form, the timestamp format used across artifacts and memory.
func nowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}
