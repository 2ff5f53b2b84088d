package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/datapilot-io/datapilot/pkg/agent"
	"github.com/datapilot-io/datapilot/pkg/dataset"
	"github.com/datapilot-io/datapilot/pkg/evaluate"
)

// listPreviewLimit caps how many column names a feature list shows before
// eliding the rest.
const listPreviewLimit = 12

// Renderer produces the markdown run report.
type Renderer struct{}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render builds the report.md content for one iteration.
func (r *Renderer) Render(
	rc agent.RunContext,
	fingerprint string,
	profile *dataset.Profile,
	plan agent.Plan,
	payload *evaluate.Payload,
	reflection agent.Reflection,
) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Datapilot Run Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** `%s`  \n", rc.RunID)
	fmt.Fprintf(&b, "**Started (UTC):** %s  \n", rc.StartedAt)
	fmt.Fprintf(&b, "**Dataset:** `%s`  \n", rc.DataPath)
	fmt.Fprintf(&b, "**Target:** `%s`  \n", rc.Target)
	fmt.Fprintf(&b, "**Fingerprint:** `%s`  \n\n", fingerprint)

	b.WriteString("## Dataset Profile\n")
	fmt.Fprintf(&b, "- Rows: **%d**\n", profile.Shape.Rows)
	fmt.Fprintf(&b, "- Columns: **%d**\n", profile.Shape.Cols)
	fmt.Fprintf(&b, "- Classification: **%t**\n", profile.IsClassification)
	fmt.Fprintf(&b, "- Imbalance ratio: **%.3f**\n\n", profile.ImbalanceRatio)

	b.WriteString("**Feature Types**\n")
	fmt.Fprintf(&b, "- Numeric (%d): %s\n", len(profile.FeatureTypes.Numeric), shortList(profile.FeatureTypes.Numeric))
	fmt.Fprintf(&b, "- Categorical (%d): %s\n\n", len(profile.FeatureTypes.Categorical), shortList(profile.FeatureTypes.Categorical))

	b.WriteString("**Notes**\n")
	b.WriteString(bulletList(profile.Notes))
	b.WriteString("\n")

	b.WriteString("## Plan\n")
	b.WriteString(bulletList(plan))
	b.WriteString("\n")

	best := payload.BestMetrics
	b.WriteString("## Results (Best Model)\n")
	fmt.Fprintf(&b, "**Model:** `%s`\n\n", best.Model)
	fmt.Fprintf(&b, "- Accuracy: **%.3f**\n", best.Accuracy)
	fmt.Fprintf(&b, "- Balanced accuracy: **%.3f**\n", best.BalancedAccuracy)
	fmt.Fprintf(&b, "- Macro F1: **%.3f**\n", best.F1Macro)
	fmt.Fprintf(&b, "- Macro Precision: **%.3f**\n", best.PrecisionMacro)
	fmt.Fprintf(&b, "- Macro Recall: **%.3f**\n\n", best.RecallMacro)

	allMetrics, err := json.MarshalIndent(payload.AllMetrics, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode candidate metrics: %w", err)
	}
	b.WriteString("All candidates:\n```json\n")
	b.Write(allMetrics)
	b.WriteString("\n```\n\n")

	b.WriteString("## Reflection\n")
	fmt.Fprintf(&b, "**Status:** %s\n\n", reflection.Status)
	if len(reflection.Issues) > 0 {
		b.WriteString("**Issues**\n")
		b.WriteString(bulletList(reflection.Issues))
		b.WriteString("\n")
	}
	b.WriteString("**Suggestions**\n")
	b.WriteString(bulletList(reflection.Suggestions))
	b.WriteString("\n")

	b.WriteString("## Artifacts\n")
	fmt.Fprintf(&b, "- Confusion matrix: %s\n", payload.ConfusionMatrixPath)

	return []byte(b.String()), nil
}

// shortList joins up to listPreviewLimit names, eliding the remainder.
func shortList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	if len(items) <= listPreviewLimit {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:listPreviewLimit], ", ") + " ..."
}

// bulletList renders items as a markdown list, with a placeholder when
// empty.
func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)\n"
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}
