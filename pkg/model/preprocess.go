package model

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/datapilot-io/datapilot/pkg/dataset"
)

// Preprocessor turns frame rows into dense feature vectors: numeric columns
// are median-imputed and standardized, categorical columns are mode-imputed
// and one-hot encoded. Statistics are always fitted on the training rows
// only; categorical levels unseen during fitting encode to an all-zero
// block.
type Preprocessor struct {
	numeric     []string
	categorical []string

	medians map[string]float64
	means   map[string]float64
	stds    map[string]float64

	modes      map[string]string
	levels     map[string][]string
	levelIndex map[string]map[string]int

	width  int
	fitted bool
}

// NewPreprocessor builds an unfitted preprocessor from the profile's
// feature-type partition.
func NewPreprocessor(p *dataset.Profile) *Preprocessor {
	return &Preprocessor{
		numeric:     append([]string(nil), p.FeatureTypes.Numeric...),
		categorical: append([]string(nil), p.FeatureTypes.Categorical...),
		medians:     make(map[string]float64),
		means:       make(map[string]float64),
		stds:        make(map[string]float64),
		modes:       make(map[string]string),
		levels:      make(map[string][]string),
		levelIndex:  make(map[string]map[string]int),
	}
}

// Width returns the fitted feature-vector width.
func (p *Preprocessor) Width() int { return p.width }

// Fit computes imputation and scaling statistics from the given rows.
func (p *Preprocessor) Fit(f *dataset.Frame, rows []int) error {
	for _, name := range p.numeric {
		col, ok := f.Column(name)
		if !ok {
			return fmt.Errorf("numeric column %q not in frame", name)
		}
		vals := make([]float64, 0, len(rows))
		for _, i := range rows {
			if !col.Missing[i] {
				vals = append(vals, col.Floats[i])
			}
		}
		median := 0.0
		if len(vals) > 0 {
			sorted := append([]float64(nil), vals...)
			sort.Float64s(sorted)
			median = sorted[len(sorted)/2]
			if len(sorted)%2 == 0 {
				median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
			}
		}
		p.medians[name] = median

		// Scale statistics are computed over imputed values so Transform
		// sees the same distribution Fit did.
		imputed := make([]float64, len(rows))
		for k, i := range rows {
			if col.Missing[i] {
				imputed[k] = median
			} else {
				imputed[k] = col.Floats[i]
			}
		}
		p.means[name] = stat.Mean(imputed, nil)
		std := stat.StdDev(imputed, nil)
		if std == 0 || len(imputed) < 2 {
			std = 1
		}
		p.stds[name] = std
	}

	for _, name := range p.categorical {
		col, ok := f.Column(name)
		if !ok {
			return fmt.Errorf("categorical column %q not in frame", name)
		}
		counts := make(map[string]int)
		for _, i := range rows {
			if !col.Missing[i] {
				counts[col.Values[i]]++
			}
		}
		levels := make([]string, 0, len(counts))
		for v := range counts {
			levels = append(levels, v)
		}
		sort.Strings(levels)
		p.levels[name] = levels

		index := make(map[string]int, len(levels))
		for j, v := range levels {
			index[v] = j
		}
		p.levelIndex[name] = index

		// Mode, ties broken lexicographically for determinism.
		mode := ""
		best := -1
		for _, v := range levels {
			if counts[v] > best {
				best = counts[v]
				mode = v
			}
		}
		p.modes[name] = mode
	}

	p.width = len(p.numeric)
	for _, name := range p.categorical {
		p.width += len(p.levels[name])
	}
	p.fitted = true
	return nil
}

// Transform encodes the given rows into feature vectors using statistics
// from Fit.
func (p *Preprocessor) Transform(f *dataset.Frame, rows []int) ([][]float64, error) {
	if !p.fitted {
		return nil, fmt.Errorf("preprocessor used before Fit")
	}

	out := make([][]float64, len(rows))
	for k := range out {
		out[k] = make([]float64, p.width)
	}

	j := 0
	for _, name := range p.numeric {
		col, _ := f.Column(name)
		for k, i := range rows {
			v := p.medians[name]
			if !col.Missing[i] {
				v = col.Floats[i]
			}
			out[k][j] = (v - p.means[name]) / p.stds[name]
		}
		j++
	}

	for _, name := range p.categorical {
		col, _ := f.Column(name)
		index := p.levelIndex[name]
		for k, i := range rows {
			v := p.modes[name]
			if !col.Missing[i] {
				v = col.Values[i]
			}
			if pos, ok := index[v]; ok {
				out[k][j+pos] = 1
			}
			// Unknown level: leave the block at zero.
		}
		j += len(p.levels[name])
	}

	return out, nil
}
