package model

// BaselineName is the candidate name of the no-signal baseline. Reflection
// policies key on it when measuring lift.
const BaselineName = "MajorityClass"

// MajorityClass always predicts the most frequent training class. It is the
// floor every other candidate must beat.
type MajorityClass struct {
	class  int
	fitted bool
}

// NewMajorityClass returns an unfitted majority-class baseline.
func NewMajorityClass() *MajorityClass {
	return &MajorityClass{}
}

// Fit records the most frequent class, ties to the lowest class index.
func (m *MajorityClass) Fit(X [][]float64, y []int, nClasses int) error {
	counts := make([]int, nClasses)
	for _, c := range y {
		counts[c]++
	}
	best := 0
	for c, n := range counts {
		if n > counts[best] {
			best = c
		}
	}
	m.class = best
	m.fitted = true
	return nil
}

// Predict returns the majority class for every row.
func (m *MajorityClass) Predict(X [][]float64) ([]int, error) {
	if !m.fitted {
		return nil, errNotFitted
	}
	out := make([]int, len(X))
	for i := range out {
		out[i] = m.class
	}
	return out, nil
}
