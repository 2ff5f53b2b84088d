package dataset

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// classificationMaxCardinality is the distinct-value ceiling under which a
// numeric target is still treated as a class label.
const classificationMaxCardinality = 50

// imbalanceThreshold is the majority/minority ratio at which a dataset is
// considered imbalanced.
const imbalanceThreshold = 3.0

// Shape records the row and column counts of a dataset.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// FeatureTypes partitions the non-target columns by kind.
type FeatureTypes struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// Profile is a structural snapshot of a dataset with respect to a target
// column. It is the run's EDA summary and the planner's main input.
type Profile struct {
	Shape            Shape              `json:"shape"`
	Columns          []string           `json:"columns"`
	MissingPct       map[string]float64 `json:"missing_pct"`
	Target           string             `json:"target"`
	TargetDtype      string             `json:"target_dtype"`
	IsClassification bool               `json:"is_classification"`
	FeatureTypes     FeatureTypes       `json:"feature_types"`
	NUniqueByCol     map[string]int     `json:"n_unique_by_col"`
	Notes            []string           `json:"notes"`
	ClassCounts      map[string]int     `json:"class_counts,omitempty"`
	ImbalanceRatio   float64            `json:"imbalance_ratio"`
}

// Clone returns a deep copy of the profile. Replanning replaces profiles
// rather than mutating them, so copies must not share slices or maps.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Columns = append([]string(nil), p.Columns...)
	c.Notes = append([]string(nil), p.Notes...)
	c.FeatureTypes.Numeric = append([]string(nil), p.FeatureTypes.Numeric...)
	c.FeatureTypes.Categorical = append([]string(nil), p.FeatureTypes.Categorical...)
	c.MissingPct = make(map[string]float64, len(p.MissingPct))
	for k, v := range p.MissingPct {
		c.MissingPct[k] = v
	}
	c.NUniqueByCol = make(map[string]int, len(p.NUniqueByCol))
	for k, v := range p.NUniqueByCol {
		c.NUniqueByCol[k] = v
	}
	if p.ClassCounts != nil {
		c.ClassCounts = make(map[string]int, len(p.ClassCounts))
		for k, v := range p.ClassCounts {
			c.ClassCounts[k] = v
		}
	}
	return &c
}

// Validate checks the profile's structural invariant: numeric and
// categorical feature sets are disjoint and together cover exactly the
// non-target columns.
func (p *Profile) Validate() error {
	seen := make(map[string]string, len(p.Columns))
	for _, c := range p.FeatureTypes.Numeric {
		seen[c] = "numeric"
	}
	for _, c := range p.FeatureTypes.Categorical {
		if seen[c] == "numeric" {
			return fmt.Errorf("column %q is both numeric and categorical", c)
		}
		seen[c] = "categorical"
	}

	want := 0
	for _, c := range p.Columns {
		if c == p.Target {
			continue
		}
		want++
		if _, ok := seen[c]; !ok {
			return fmt.Errorf("non-target column %q missing from feature types", c)
		}
	}
	if got := len(p.FeatureTypes.Numeric) + len(p.FeatureTypes.Categorical); got != want {
		return fmt.Errorf("feature types cover %d columns, dataset has %d non-target columns", got, want)
	}
	return nil
}

// InferTarget guesses the target column: a preferred name if present
// (case-insensitive), otherwise the last column when its cardinality is low
// enough to look like a label. Returns false when nothing qualifies.
func InferTarget(f *Frame) (string, bool) {
	preferred := []string{"target", "label", "class", "y", "outcome"}
	lower := make(map[string]string, f.Cols())
	for _, name := range f.ColumnNames() {
		lower[strings.ToLower(name)] = name
	}
	for _, want := range preferred {
		if name, ok := lower[want]; ok {
			return name, true
		}
	}

	names := f.ColumnNames()
	last := names[len(names)-1]
	col, _ := f.Column(last)
	uniq := col.NUnique()
	n := f.Rows()
	if n > 0 && (uniq <= classificationMaxCardinality || float64(uniq)/float64(n) < 0.05) {
		return last, true
	}
	return "", false
}

// isClassificationColumn reports whether a target column holds class labels.
func isClassificationColumn(c *Column) bool {
	if c.Kind == KindCategorical {
		return true
	}
	return c.NUnique() <= classificationMaxCardinality
}

// Fingerprint derives the memory-store key from the dataset's structural
// signature: shape, target name, and ordered column names. It is a cache
// key with no collision guarantee; a false hit only degrades planning.
func Fingerprint(f *Frame, target string) string {
	base := fmt.Sprintf("%dx%d|%s|%s", f.Rows(), f.Cols(), target, strings.Join(f.ColumnNames(), ","))
	h := fnv.New64a()
	h.Write([]byte(base))
	return fmt.Sprintf("fp_%d", h.Sum64()%1_000_000_000_000)
}

// Profile computes the structural profile of a frame for the given target.
// The target column must exist; this is where a caller-supplied target name
// is finally validated.
func ProfileFrame(f *Frame, target string) (*Profile, error) {
	tcol, ok := f.Column(target)
	if !ok {
		return nil, fmt.Errorf("target column %q not found in dataset columns", target)
	}

	p := &Profile{
		Shape:        Shape{Rows: f.Rows(), Cols: f.Cols()},
		Columns:      f.ColumnNames(),
		Target:       target,
		MissingPct:   make(map[string]float64, f.Cols()),
		NUniqueByCol: make(map[string]int, f.Cols()),
		Notes:        []string{},
	}

	for _, name := range f.ColumnNames() {
		col, _ := f.Column(name)
		pct := 0.0
		if f.Rows() > 0 {
			pct = float64(col.NMissing()) / float64(f.Rows()) * 100
		}
		p.MissingPct[name] = math.Round(pct*100) / 100
		p.NUniqueByCol[name] = col.NUnique()
	}

	if tcol.Kind == KindNumeric {
		p.TargetDtype = "float64"
	} else {
		p.TargetDtype = "object"
	}
	p.IsClassification = isClassificationColumn(tcol)

	for _, name := range f.ColumnNames() {
		if name == target {
			continue
		}
		col, _ := f.Column(name)
		if col.Kind == KindNumeric {
			p.FeatureTypes.Numeric = append(p.FeatureTypes.Numeric, name)
		} else {
			p.FeatureTypes.Categorical = append(p.FeatureTypes.Categorical, name)
		}
	}

	if p.Shape.Rows < 1000 {
		p.Notes = append(p.Notes, "Small dataset (<1000 rows): prefer simpler models / guard against overfitting.")
	}
	if p.Shape.Cols > 100 {
		p.Notes = append(p.Notes, "High dimensionality (>100 columns): watch one-hot expansion and overfitting.")
	}

	p.ImbalanceRatio = 1.0
	if p.IsClassification {
		p.ClassCounts = make(map[string]int)
		for i, v := range tcol.Values {
			if tcol.Missing[i] {
				continue
			}
			p.ClassCounts[v]++
		}
		if len(p.ClassCounts) >= 2 {
			maxCount, minCount := 0, math.MaxInt
			for _, n := range p.ClassCounts {
				if n > maxCount {
					maxCount = n
				}
				if n < minCount {
					minCount = n
				}
			}
			if minCount < 1 {
				minCount = 1
			}
			ratio := float64(maxCount) / float64(minCount)
			p.ImbalanceRatio = math.Round(ratio*1000) / 1000
		}
		if p.ImbalanceRatio >= imbalanceThreshold {
			p.Notes = append(p.Notes, "Imbalance detected (ratio >= 3.0): prioritise macro metrics / balanced accuracy.")
		}
	} else {
		p.Notes = append(p.Notes, "Non-classification target detected: this pipeline focuses on classification.")
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile invariant violated: %w", err)
	}
	return p, nil
}
