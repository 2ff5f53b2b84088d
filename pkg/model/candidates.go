package model

import "github.com/datapilot-io/datapilot/pkg/dataset"

// knnMaxRows and knnMaxCols bound the problems where the quadratic-cost KNN
// candidate is still worth trying.
const (
	knnMaxRows = 20000
	knnMaxCols = 200
)

// Candidate pairs a model configuration with its reporting name.
// Declaration order is the final ranking tiebreaker.
type Candidate struct {
	Name  string
	Model Classifier
}

// SelectCandidates chooses the candidate ladder for a profile. The
// MajorityClass baseline is always first; imbalanced profiles get
// class-weighted logistic regression; KNN joins only on small problems.
func SelectCandidates(p *dataset.Profile, seed int64) []Candidate {
	balanced := p.ImbalanceRatio >= 3.0

	candidates := []Candidate{
		{Name: BaselineName, Model: NewMajorityClass()},
		{Name: "LogisticRegression", Model: NewLogisticRegression(LogisticConfig{Balanced: balanced})},
		{Name: "RandomForest", Model: NewRandomForest(ForestConfig{Seed: seed})},
	}

	if p.Shape.Rows <= knnMaxRows && p.Shape.Cols <= knnMaxCols {
		candidates = append(candidates, Candidate{Name: "KNN", Model: NewKNN(KNNConfig{})})
	}

	return candidates
}
