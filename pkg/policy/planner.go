package policy

import (
	"github.com/datapilot-io/datapilot/pkg/agent"
	"github.com/datapilot-io/datapilot/pkg/dataset"
	"github.com/datapilot-io/datapilot/pkg/memory"
)

// Canonical stage labels. Stage-dependency order
// (profile -> preprocess -> select -> train -> evaluate -> reflect -> report)
// must never be violated by inserted tasks.
const (
	TaskProfile           = "profile_dataset"
	TaskBuildPreprocessor = "build_preprocessor"
	TaskSelectModels      = "select_models"
	TaskTrainModels       = "train_models"
	TaskEvaluate          = "evaluate"
	TaskReflect           = "reflect"
	TaskWriteReport       = "write_report"

	// TaskImbalanceStrategy is inserted immediately before training when
	// the profile shows class imbalance.
	TaskImbalanceStrategy = "consider_imbalance_strategy"

	// TaskReplanAttempt marks one taken replan transition in the plan.
	TaskReplanAttempt = "replan_attempt"
)

// imbalanceThreshold is the ratio at which the plan gains an
// imbalance-handling task.
const imbalanceThreshold = 3.0

// Planner is the default plan policy.
type Planner struct{}

// NewPlanner creates the default planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// CreatePlan builds the base stage sequence, inserting an
// imbalance-handling task immediately before training when the imbalance
// ratio reaches the threshold, and appending a model-priority hint when
// memory knows a previously best model for this dataset.
func (p *Planner) CreatePlan(profile *dataset.Profile, hint *memory.Record) agent.Plan {
	plan := agent.Plan{
		TaskProfile,
		TaskBuildPreprocessor,
		TaskSelectModels,
		TaskTrainModels,
		TaskEvaluate,
		TaskReflect,
		TaskWriteReport,
	}

	if profile.ImbalanceRatio >= imbalanceThreshold {
		at := plan.Index(TaskTrainModels)
		plan = append(plan[:at], append(agent.Plan{TaskImbalanceStrategy}, plan[at:]...)...)
	}

	if hint != nil && hint.BestModel != "" {
		plan = append(plan, "prioritize_model:"+hint.BestModel)
	}

	return plan
}
