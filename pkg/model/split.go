package model

import (
	"math"
	"math/rand"
)

// trainTestSplit partitions row positions 0..len(y)-1 into train and test
// sets. The split is stratified by class when more than one class exists and
// every class has at least two instances; otherwise it falls back to a plain
// shuffle split. The fallback never fails.
func trainTestSplit(y []int, nClasses int, testFraction float64, rng *rand.Rand) (train, test []int) {
	counts := make([]int, nClasses)
	for _, c := range y {
		counts[c]++
	}

	stratify := nClasses > 1
	for c := 0; c < nClasses && stratify; c++ {
		if counts[c] > 0 && counts[c] < 2 {
			stratify = false
		}
	}

	if !stratify {
		idx := rng.Perm(len(y))
		nTest := clampSplit(int(math.Round(testFraction*float64(len(y)))), len(y))
		return idx[nTest:], idx[:nTest]
	}

	byClass := make([][]int, nClasses)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}

	for c := range byClass {
		members := byClass[c]
		if len(members) == 0 {
			continue
		}
		rng.Shuffle(len(members), func(a, b int) {
			members[a], members[b] = members[b], members[a]
		})
		nTest := clampSplit(int(math.Round(testFraction*float64(len(members)))), len(members))
		test = append(test, members[:nTest]...)
		train = append(train, members[nTest:]...)
	}
	return train, test
}

// clampSplit keeps at least one row on each side of the split.
func clampSplit(nTest, n int) int {
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	return nTest
}
