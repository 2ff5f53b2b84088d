package policy

import (
	"fmt"

	"github.com/datapilot-io/datapilot/pkg/agent"
	"github.com/datapilot-io/datapilot/pkg/dataset"
	"github.com/datapilot-io/datapilot/pkg/model"
)

// f1ReplanThreshold is the macro-F1 floor under which issues trigger a
// replan recommendation.
const f1ReplanThreshold = 0.60

// baselineLiftFloor is the minimum balanced-accuracy improvement over the
// majority baseline before the result counts as signal.
const baselineLiftFloor = 0.05

// Reflector is the default reflection policy.
type Reflector struct{}

// NewReflector creates the default reflector.
func NewReflector() *Reflector {
	return &Reflector{}
}

// Reflect compares the best candidate against the majority baseline when
// present, checks the macro-F1 floor, and adds imbalance guidance. Status
// is needs_attention iff at least one issue was raised; a replan is
// recommended iff issues exist and macro F1 sits under the threshold.
func (r *Reflector) Reflect(profile *dataset.Profile, best model.Metrics, all []model.Metrics) agent.Reflection {
	var issues, suggestions []string

	for _, m := range all {
		if m.Model != model.BaselineName {
			continue
		}
		improvement := best.BalancedAccuracy - m.BalancedAccuracy
		if improvement < baselineLiftFloor {
			issues = append(issues, fmt.Sprintf(
				"Best model only %.3f better than baseline. Weak signal or pipeline issues.", improvement))
			suggestions = append(suggestions,
				"Check for target leakage, verify target quality, or improve feature engineering.")
		}
		break
	}

	if best.F1Macro < f1ReplanThreshold {
		issues = append(issues, "Macro F1 score is modest (<0.60).")
		suggestions = append(suggestions,
			"Try different models, tune hyperparameters, or improve preprocessing.")
	}

	if profile.ImbalanceRatio >= imbalanceThreshold {
		suggestions = append(suggestions,
			"Imbalance detected: consider class weights, threshold tuning, or resampling.")
	}

	status := agent.StatusOK
	if len(issues) > 0 {
		status = agent.StatusNeedsAttention
	}

	return agent.Reflection{
		Status:            status,
		BestModel:         best.Model,
		Issues:            issues,
		Suggestions:       suggestions,
		ReplanRecommended: len(issues) > 0 && best.F1Macro < f1ReplanThreshold,
	}
}

// ShouldReplan projects the reflection's replan recommendation.
func (r *Reflector) ShouldReplan(reflection agent.Reflection) bool {
	return reflection.ReplanRecommended
}

// ReplanStrategy is the default replan policy: extend the plan with a
// replan marker and note the adjustment on a fresh copy of the profile.
type ReplanStrategy struct{}

// NewReplanStrategy creates the default replan strategy.
func NewReplanStrategy() *ReplanStrategy {
	return &ReplanStrategy{}
}

// Apply returns a revised (plan, profile) pair for the next iteration.
// Inputs are never mutated; the new plan extends the old one and the new
// profile's note log extends the original's.
func (s *ReplanStrategy) Apply(plan agent.Plan, profile *dataset.Profile, r agent.Reflection) (agent.Plan, *dataset.Profile) {
	newPlan := append(plan.Clone(), TaskReplanAttempt)

	newProfile := profile.Clone()
	newProfile.Notes = append(newProfile.Notes, "Replan: adjusting strategy after reflection.")

	return newPlan, newProfile
}
