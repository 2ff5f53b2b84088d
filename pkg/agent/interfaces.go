package agent

import (
	"context"

	"github.com/datapilot-io/datapilot/pkg/dataset"
	"github.com/datapilot-io/datapilot/pkg/evaluate"
	"github.com/datapilot-io/datapilot/pkg/memory"
	"github.com/datapilot-io/datapilot/pkg/model"
)

// Planner converts a profile and an optional memory hint into an ordered
// task list. Implementations must be pure and deterministic: same inputs,
// same plan.
type Planner interface {
	// CreatePlan builds the initial plan. hint is nil when the memory store
	// has no record for the dataset.
	CreatePlan(profile *dataset.Profile, hint *memory.Record) Plan
}

// Reflector inspects evaluation results and produces a verdict.
// Implementations must be pure and deterministic.
type Reflector interface {
	// Reflect analyzes the best candidate against the profile and the full
	// ranked metric list.
	Reflect(profile *dataset.Profile, best model.Metrics, all []model.Metrics) Reflection

	// ShouldReplan decides whether to trigger replanning. Today this is a
	// projection of Reflection.ReplanRecommended; it is a separate seam so
	// a policy can later weigh additional state without changing the
	// orchestrator's call site.
	ShouldReplan(r Reflection) bool
}

// ReplanStrategy revises the plan and profile for the next iteration.
// Implementations must not mutate their inputs: the returned plan must be
// an extension of the given plan, and the returned profile's note log an
// extension of the original's.
type ReplanStrategy interface {
	Apply(plan Plan, profile *dataset.Profile, r Reflection) (Plan, *dataset.Profile)
}

// DatasetLoader loads a tabular dataset from a path.
type DatasetLoader interface {
	Load(path string) (*dataset.Frame, error)
}

// LoaderFunc adapts a plain load function to the DatasetLoader interface.
type LoaderFunc func(path string) (*dataset.Frame, error)

// Load implements DatasetLoader.
func (f LoaderFunc) Load(path string) (*dataset.Frame, error) { return f(path) }

// Trainer fits candidate models for one iteration and returns the ranked
// results.
type Trainer interface {
	Train(ctx context.Context, f *dataset.Frame, target string, profile *dataset.Profile,
		seed int64, testFraction float64) (*model.Ranked, error)
}

// Evaluator packages ranked results into an evaluation payload, writing the
// diagnostic image into outDir.
type Evaluator interface {
	Evaluate(ranked *model.Ranked, outDir string) (*evaluate.Payload, error)
}

// ReportRenderer renders the human-readable run report.
type ReportRenderer interface {
	Render(rc RunContext, fingerprint string, profile *dataset.Profile, plan Plan,
		payload *evaluate.Payload, reflection Reflection) ([]byte, error)
}

// MemoryStore is the fingerprint-keyed store of past run outcomes.
type MemoryStore interface {
	// Get returns the record for a fingerprint; absence is not an error.
	Get(fingerprint string) (memory.Record, bool)

	// Upsert overwrites the record for a fingerprint and persists
	// immediately.
	Upsert(fingerprint string, rec memory.Record) error
}
