package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticConfig configures a LogisticRegression candidate.
type LogisticConfig struct {
	// Epochs is the number of full-batch gradient passes.
	Epochs int

	// LearningRate is the gradient step size.
	LearningRate float64

	// L2 is the ridge penalty applied to non-bias weights.
	L2 float64

	// Balanced enables inverse-frequency class weighting, used on
	// imbalanced datasets.
	Balanced bool
}

// defaults fills zero-valued fields.
func (c LogisticConfig) defaults() LogisticConfig {
	if c.Epochs == 0 {
		c.Epochs = 300
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.3
	}
	if c.L2 == 0 {
		c.L2 = 1e-4
	}
	return c
}

// LogisticRegression is a multinomial softmax classifier trained with
// full-batch gradient descent. Deterministic: weights start at zero and the
// data order never changes.
type LogisticRegression struct {
	cfg      LogisticConfig
	weights  [][]float64 // [class][feature+bias]
	nClasses int
	fitted   bool
}

// NewLogisticRegression returns an unfitted logistic regression candidate.
func NewLogisticRegression(cfg LogisticConfig) *LogisticRegression {
	return &LogisticRegression{cfg: cfg.defaults()}
}

// Fit trains class weight vectors by gradient descent on the softmax
// cross-entropy loss.
func (l *LogisticRegression) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 {
		return fmt.Errorf("logistic regression: empty training set")
	}
	d := len(X[0])
	l.nClasses = nClasses
	l.weights = make([][]float64, nClasses)
	for c := range l.weights {
		l.weights[c] = make([]float64, d+1)
	}

	sampleWeight := make([]float64, len(y))
	if l.cfg.Balanced {
		classWeight := balancedWeights(y, nClasses)
		for i, c := range y {
			sampleWeight[i] = classWeight[c]
		}
	} else {
		for i := range sampleWeight {
			sampleWeight[i] = 1
		}
	}

	grad := make([][]float64, nClasses)
	for c := range grad {
		grad[c] = make([]float64, d+1)
	}
	probs := make([]float64, nClasses)

	n := float64(len(X))
	for epoch := 0; epoch < l.cfg.Epochs; epoch++ {
		for c := range grad {
			for j := range grad[c] {
				grad[c][j] = 0
			}
		}

		for i, x := range X {
			l.scores(x, probs)
			softmaxInPlace(probs)
			for c := 0; c < nClasses; c++ {
				delta := probs[c]
				if c == y[i] {
					delta -= 1
				}
				delta *= sampleWeight[i]
				floats.AddScaled(grad[c][:d], delta, x)
				grad[c][d] += delta
			}
		}

		step := l.cfg.LearningRate / n
		for c := 0; c < nClasses; c++ {
			// Ridge on feature weights, bias left unpenalized.
			floats.AddScaled(grad[c][:d], l.cfg.L2*n, l.weights[c][:d])
			floats.AddScaled(l.weights[c], -step, grad[c])
		}
	}

	l.fitted = true
	return nil
}

// Predict returns the argmax class for each row.
func (l *LogisticRegression) Predict(X [][]float64) ([]int, error) {
	if !l.fitted {
		return nil, errNotFitted
	}
	out := make([]int, len(X))
	scores := make([]float64, l.nClasses)
	for i, x := range X {
		l.scores(x, scores)
		out[i] = argmax(scores)
	}
	return out, nil
}

// scores fills dst with the raw linear score per class.
func (l *LogisticRegression) scores(x []float64, dst []float64) {
	d := len(x)
	for c, w := range l.weights {
		dst[c] = floats.Dot(w[:d], x) + w[d]
	}
}

// softmaxInPlace converts scores to probabilities, shifting by the max for
// numerical stability.
func softmaxInPlace(scores []float64) {
	max := floats.Max(scores)
	sum := 0.0
	for i, s := range scores {
		scores[i] = math.Exp(s - max)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
}
