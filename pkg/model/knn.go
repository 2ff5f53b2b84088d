package model

import (
	"fmt"
	"sort"
)

// KNNConfig configures a KNN candidate.
type KNNConfig struct {
	// K is the neighbor count.
	K int
}

func (c KNNConfig) defaults() KNNConfig {
	if c.K == 0 {
		c.K = 5
	}
	return c
}

// KNN is a k-nearest-neighbors classifier over preprocessed feature
// vectors. Prediction is O(train x test), so candidate selection only
// offers it on small problems.
type KNN struct {
	cfg      KNNConfig
	X        [][]float64
	y        []int
	nClasses int
	fitted   bool
}

// NewKNN returns an unfitted k-nearest-neighbors candidate.
func NewKNN(cfg KNNConfig) *KNN {
	return &KNN{cfg: cfg.defaults()}
}

// Fit memorizes the training set.
func (k *KNN) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 {
		return fmt.Errorf("knn: empty training set")
	}
	k.X = X
	k.y = y
	k.nClasses = nClasses
	k.fitted = true
	return nil
}

// Predict votes among the K nearest training rows by squared Euclidean
// distance, ties to the lowest class index.
func (k *KNN) Predict(X [][]float64) ([]int, error) {
	if !k.fitted {
		return nil, errNotFitted
	}

	kk := k.cfg.K
	if kk > len(k.X) {
		kk = len(k.X)
	}

	out := make([]int, len(X))
	type neighbor struct {
		dist float64
		idx  int
	}
	neighbors := make([]neighbor, len(k.X))
	votes := make([]float64, k.nClasses)

	for i, x := range X {
		for j, tx := range k.X {
			d := 0.0
			for f := range x {
				diff := x[f] - tx[f]
				d += diff * diff
			}
			neighbors[j] = neighbor{dist: d, idx: j}
		}
		sort.Slice(neighbors, func(a, b int) bool {
			if neighbors[a].dist != neighbors[b].dist {
				return neighbors[a].dist < neighbors[b].dist
			}
			return neighbors[a].idx < neighbors[b].idx
		})

		for c := range votes {
			votes[c] = 0
		}
		for _, nb := range neighbors[:kk] {
			votes[k.y[nb.idx]]++
		}
		out[i] = argmax(votes)
	}
	return out, nil
}
