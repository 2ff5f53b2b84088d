package model

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/datapilot-io/datapilot/pkg/dataset"
	"github.com/datapilot-io/datapilot/pkg/telemetry"
)

// Result is one fitted candidate's outcome on the held-out split.
type Result struct {
	// Name is the candidate name.
	Name string

	// Metrics is the candidate's metric set on the test split.
	Metrics Metrics

	// TrueLabels and PredLabels are the decoded test-split labels, kept for
	// downstream confusion diagnostics on the winning candidate.
	TrueLabels []string
	PredLabels []string
}

// Ranked is the training stage's output: all candidate results ordered by
// (balanced accuracy, macro F1) descending, declaration order breaking ties.
type Ranked struct {
	// Results is the ranked candidate list; Results[0] is the best.
	Results []Result

	// Classes is the sorted label set the encoder used.
	Classes []string
}

// Best returns the top-ranked result.
func (r *Ranked) Best() *Result {
	return &r.Results[0]
}

// AllMetrics returns every candidate's metric set in ranking order.
func (r *Ranked) AllMetrics() []Metrics {
	out := make([]Metrics, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Metrics
	}
	return out
}

// Stage fits candidate models for one loop iteration.
type Stage struct {
	log *telemetry.Logger
}

// NewStage creates a training stage.
func NewStage(log *telemetry.Logger) *Stage {
	return &Stage{log: log.NewComponentLogger("model")}
}

// Train builds the preprocessor and candidate set from the profile, splits
// the data, fits every candidate, and returns the ranked results. Rows with
// a missing target are dropped before splitting. A single candidate failing
// to fit fails the whole call.
func (s *Stage) Train(
	ctx context.Context,
	f *dataset.Frame,
	target string,
	profile *dataset.Profile,
	seed int64,
	testFraction float64,
) (*Ranked, error) {
	tcol, ok := f.Column(target)
	if !ok {
		return nil, fmt.Errorf("target column %q not found", target)
	}

	// Keep only rows with an observed target value.
	rows := make([]int, 0, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		if !tcol.Missing[i] {
			rows = append(rows, i)
		}
	}
	if len(rows) < 2 {
		return nil, ErrNoTrainableRows
	}

	classes, classIndex := encodeClasses(tcol, rows)
	y := make([]int, len(rows))
	for k, i := range rows {
		y[k] = classIndex[tcol.Values[i]]
	}

	rng := rand.New(rand.NewSource(seed))
	trainPos, testPos := trainTestSplit(y, len(classes), testFraction, rng)

	trainRows := make([]int, len(trainPos))
	yTrain := make([]int, len(trainPos))
	for k, pos := range trainPos {
		trainRows[k] = rows[pos]
		yTrain[k] = y[pos]
	}
	testRows := make([]int, len(testPos))
	yTest := make([]int, len(testPos))
	for k, pos := range testPos {
		testRows[k] = rows[pos]
		yTest[k] = y[pos]
	}

	prep := NewPreprocessor(profile)
	if err := prep.Fit(f, trainRows); err != nil {
		return nil, fmt.Errorf("fit preprocessor: %w", err)
	}
	XTrain, err := prep.Transform(f, trainRows)
	if err != nil {
		return nil, err
	}
	XTest, err := prep.Transform(f, testRows)
	if err != nil {
		return nil, err
	}

	candidates := SelectCandidates(profile, seed)
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	s.log.Infof("Training %d candidates: %v", len(candidates), names)

	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.log.WithModel(cand.Name).Debug("Fitting candidate")

		if err := cand.Model.Fit(XTrain, yTrain, len(classes)); err != nil {
			return nil, fmt.Errorf("fit candidate %s: %w", cand.Name, err)
		}
		yPred, err := cand.Model.Predict(XTest)
		if err != nil {
			return nil, fmt.Errorf("predict with candidate %s: %w", cand.Name, err)
		}

		res := Result{
			Name:       cand.Name,
			Metrics:    ComputeMetrics(cand.Name, yTest, yPred, len(classes)),
			TrueLabels: decodeLabels(classes, yTest),
			PredLabels: decodeLabels(classes, yPred),
		}
		s.log.WithModel(cand.Name).Debugf(
			"balanced_accuracy=%.3f f1_macro=%.3f", res.Metrics.BalancedAccuracy, res.Metrics.F1Macro)
		results = append(results, res)
	}

	// Stable sort keeps declaration order as the final tiebreaker.
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Metrics.BalancedAccuracy != results[b].Metrics.BalancedAccuracy {
			return results[a].Metrics.BalancedAccuracy > results[b].Metrics.BalancedAccuracy
		}
		return results[a].Metrics.F1Macro > results[b].Metrics.F1Macro
	})

	return &Ranked{Results: results, Classes: classes}, nil
}

// encodeClasses maps the sorted distinct target labels to class indices.
func encodeClasses(tcol *dataset.Column, rows []int) ([]string, map[string]int) {
	seen := make(map[string]struct{})
	for _, i := range rows {
		seen[tcol.Values[i]] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for c, v := range classes {
		index[v] = c
	}
	return classes, index
}

func decodeLabels(classes []string, encoded []int) []string {
	out := make([]string, len(encoded))
	for i, c := range encoded {
		out[i] = classes[c]
	}
	return out
}
