package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ForestConfig configures a RandomForest candidate.
type ForestConfig struct {
	// Trees is the ensemble size.
	Trees int

	// MaxDepth bounds tree growth.
	MaxDepth int

	// MinLeaf is the minimum sample count to keep splitting a node.
	MinLeaf int

	// Seed drives bootstrap sampling and feature subsampling.
	Seed int64
}

func (c ForestConfig) defaults() ForestConfig {
	if c.Trees == 0 {
		c.Trees = 60
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = 12
	}
	if c.MinLeaf == 0 {
		c.MinLeaf = 2
	}
	return c
}

// RandomForest is a bagged ensemble of CART trees with per-node feature
// subsampling (sqrt of the feature count) and gini impurity splits.
type RandomForest struct {
	cfg      ForestConfig
	trees    []*treeNode
	nClasses int
	fitted   bool
}

// NewRandomForest returns an unfitted random forest candidate.
func NewRandomForest(cfg ForestConfig) *RandomForest {
	return &RandomForest{cfg: cfg.defaults()}
}

// treeNode is one node of a CART tree. Leaves have feature == -1.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	class     int
}

// Fit grows cfg.Trees trees on bootstrap samples of the training data.
func (f *RandomForest) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 {
		return fmt.Errorf("random forest: empty training set")
	}
	f.nClasses = nClasses
	f.trees = make([]*treeNode, f.cfg.Trees)

	rng := rand.New(rand.NewSource(f.cfg.Seed))
	mtry := int(math.Ceil(math.Sqrt(float64(len(X[0])))))

	for t := range f.trees {
		sample := make([]int, len(X))
		for i := range sample {
			sample[i] = rng.Intn(len(X))
		}
		f.trees[t] = f.grow(X, y, sample, 0, mtry, rng)
	}

	f.fitted = true
	return nil
}

// Predict returns the majority vote across trees, ties to the lowest class
// index.
func (f *RandomForest) Predict(X [][]float64) ([]int, error) {
	if !f.fitted {
		return nil, errNotFitted
	}
	out := make([]int, len(X))
	votes := make([]float64, f.nClasses)
	for i, x := range X {
		for c := range votes {
			votes[c] = 0
		}
		for _, tree := range f.trees {
			votes[tree.classify(x)]++
		}
		out[i] = argmax(votes)
	}
	return out, nil
}

func (n *treeNode) classify(x []float64) int {
	for n.feature >= 0 {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.class
}

// grow builds a subtree over the sample rows.
func (f *RandomForest) grow(X [][]float64, y []int, sample []int, depth, mtry int, rng *rand.Rand) *treeNode {
	counts := make([]int, f.nClasses)
	for _, i := range sample {
		counts[y[i]]++
	}
	majority := argmaxInt(counts)

	if depth >= f.cfg.MaxDepth || len(sample) < 2*f.cfg.MinLeaf || isPure(counts) {
		return &treeNode{feature: -1, class: majority}
	}

	feature, threshold, ok := f.bestSplit(X, y, sample, mtry, rng)
	if !ok {
		return &treeNode{feature: -1, class: majority}
	}

	var left, right []int
	for _, i := range sample {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{feature: -1, class: majority}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      f.grow(X, y, left, depth+1, mtry, rng),
		right:     f.grow(X, y, right, depth+1, mtry, rng),
		class:     majority,
	}
}

// bestSplit scans a random feature subset for the gini-optimal threshold.
func (f *RandomForest) bestSplit(X [][]float64, y []int, sample []int, mtry int, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(X[0])
	features := rng.Perm(nFeatures)
	if mtry < nFeatures {
		features = features[:mtry]
	}

	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	ordered := make([]int, len(sample))
	leftCounts := make([]int, f.nClasses)
	rightCounts := make([]int, f.nClasses)

	for _, feat := range features {
		copy(ordered, sample)
		sort.Slice(ordered, func(a, b int) bool {
			return X[ordered[a]][feat] < X[ordered[b]][feat]
		})

		for c := range leftCounts {
			leftCounts[c] = 0
			rightCounts[c] = 0
		}
		for _, i := range ordered {
			rightCounts[y[i]]++
		}

		total := len(ordered)
		for pos := 0; pos < total-1; pos++ {
			c := y[ordered[pos]]
			leftCounts[c]++
			rightCounts[c]--

			cur, next := X[ordered[pos]][feat], X[ordered[pos+1]][feat]
			if cur == next {
				continue
			}

			nLeft := pos + 1
			nRight := total - nLeft
			gini := (float64(nLeft)*giniImpurity(leftCounts, nLeft) +
				float64(nRight)*giniImpurity(rightCounts, nRight)) / float64(total)
			if gini < bestGini {
				bestGini = gini
				bestFeature = feat
				bestThreshold = (cur + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func giniImpurity(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum -= p * p
	}
	return sum
}

func isPure(counts []int) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

func argmaxInt(vals []int) int {
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	return best
}
