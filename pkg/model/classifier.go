package model

import "errors"

// ErrNoTrainableRows is returned when no rows remain after dropping rows
// with a missing target value.
var ErrNoTrainableRows = errors.New("no rows with a non-missing target value")

// errNotFitted is returned by classifiers used before Fit.
var errNotFitted = errors.New("classifier used before Fit")

// Classifier is one trainable model configuration. X rows are preprocessed
// feature vectors; y holds encoded class indices in [0, nClasses).
type Classifier interface {
	// Fit trains the classifier. nClasses is the size of the full label
	// set, which may exceed the number of classes present in y.
	Fit(X [][]float64, y []int, nClasses int) error

	// Predict returns one encoded class index per row of X.
	Predict(X [][]float64) ([]int, error)
}

// balancedWeights returns per-class sample weights n/(k*n_c), the usual
// inverse-frequency scheme. Classes absent from y get weight zero.
func balancedWeights(y []int, nClasses int) []float64 {
	counts := make([]int, nClasses)
	for _, c := range y {
		counts[c]++
	}
	weights := make([]float64, nClasses)
	for c, n := range counts {
		if n > 0 {
			weights[c] = float64(len(y)) / (float64(nClasses) * float64(n))
		}
	}
	return weights
}

// argmax returns the index of the largest value, ties to the lowest index.
func argmax(vals []float64) int {
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	return best
}
