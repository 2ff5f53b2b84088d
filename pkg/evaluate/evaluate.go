package evaluate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/datapilot-io/datapilot/pkg/model"
	"github.com/datapilot-io/datapilot/pkg/telemetry"
)

// ConfusionMatrixFile is the diagnostic image filename inside a run's
// output directory.
const ConfusionMatrixFile = "confusion_matrix.png"

// Payload is the evaluation output for one loop iteration. Field names
// match the persisted metrics.json schema.
type Payload struct {
	BestMetrics          model.Metrics   `json:"best_metrics"`
	AllMetrics           []model.Metrics `json:"all_metrics"`
	ConfusionMatrixPath  string          `json:"confusion_matrix_path"`
	ClassificationReport string          `json:"classification_report"`
}

// Evaluator packages ranked training results into an evaluation payload.
type Evaluator struct {
	log *telemetry.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(log *telemetry.Logger) *Evaluator {
	return &Evaluator{log: log.NewComponentLogger("evaluate")}
}

// Evaluate takes ranked results, renders the winner's confusion-matrix
// heatmap into outDir, and returns the payload. The diagnostic image covers
// the top candidate only.
func (e *Evaluator) Evaluate(ranked *model.Ranked, outDir string) (*Payload, error) {
	best := ranked.Best()

	cm := confusionCounts(ranked.Classes, best.TrueLabels, best.PredLabels)
	cmPath := filepath.Join(outDir, ConfusionMatrixFile)
	title := fmt.Sprintf("Confusion Matrix: %s", best.Name)
	if err := renderConfusionHeatmap(cm, ranked.Classes, title, cmPath); err != nil {
		return nil, fmt.Errorf("render confusion matrix: %w", err)
	}

	e.log.WithModel(best.Name).Infof(
		"Best candidate: balanced_accuracy=%.3f f1_macro=%.3f",
		best.Metrics.BalancedAccuracy, best.Metrics.F1Macro)

	return &Payload{
		BestMetrics:          best.Metrics,
		AllMetrics:           ranked.AllMetrics(),
		ConfusionMatrixPath:  cmPath,
		ClassificationReport: classificationReport(ranked.Classes, best.TrueLabels, best.PredLabels),
	}, nil
}

// confusionCounts builds the k x k count matrix, rows true, columns
// predicted, in class order.
func confusionCounts(classes []string, yTrue, yPred []string) [][]int {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	cm := make([][]int, len(classes))
	for i := range cm {
		cm[i] = make([]int, len(classes))
	}
	for i := range yTrue {
		cm[index[yTrue[i]]][index[yPred[i]]]++
	}
	return cm
}

// classificationReport formats a per-class precision/recall/F1/support
// table with a trailing accuracy line.
func classificationReport(classes []string, yTrue, yPred []string) string {
	cm := confusionCounts(classes, yTrue, yPred)

	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	b.WriteString("\n")

	correct := 0
	for i, class := range classes {
		tp := cm[i][i]
		correct += tp
		support, predicted := 0, 0
		for j := range classes {
			support += cm[i][j]
			predicted += cm[j][i]
		}
		var precision, recall, f1 float64
		if predicted > 0 {
			precision = float64(tp) / float64(predicted)
		}
		if support > 0 {
			recall = float64(tp) / float64(support)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		fmt.Fprintf(&b, "%-16s %9.3f %9.3f %9.3f %9d\n", class, precision, recall, f1, support)
	}

	accuracy := 0.0
	if len(yTrue) > 0 {
		accuracy = float64(correct) / float64(len(yTrue))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-16s %29.3f %9d\n", "accuracy", accuracy, len(yTrue))
	return b.String()
}
