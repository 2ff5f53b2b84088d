package dataset

import (
	"fmt"
	"testing"
)

// buildFrame constructs a frame from a header and rows, failing the test on
// error.
func buildFrame(t *testing.T, header []string, rows [][]string) *Frame {
	t.Helper()

	f, err := NewFrame(header, rows)
	if err != nil {
		t.Fatalf("failed to build frame: %v", err)
	}
	return f
}

// imbalancedRows builds rows with nMajority "no" labels and nMinority "yes"
// labels and one numeric feature.
func imbalancedRows(nMajority, nMinority int) [][]string {
	rows := make([][]string, 0, nMajority+nMinority)
	for i := 0; i < nMajority; i++ {
		rows = append(rows, []string{fmt.Sprintf("%d", i), "no"})
	}
	for i := 0; i < nMinority; i++ {
		rows = append(rows, []string{fmt.Sprintf("%d", 100+i), "yes"})
	}
	return rows
}

// TestProfileFrame tests the full profile of a small mixed dataset
func TestProfileFrame(t *testing.T) {
	f := buildFrame(t,
		[]string{"age", "city", "label"},
		[][]string{
			{"34", "paris", "yes"},
			{"28", "london", "no"},
			{"", "paris", "yes"},
			{"41", "", "no"},
		})

	p, err := ProfileFrame(f, "label")
	if err != nil {
		t.Fatalf("failed to profile frame: %v", err)
	}

	if p.Shape.Rows != 4 || p.Shape.Cols != 3 {
		t.Errorf("unexpected shape: %+v", p.Shape)
	}
	if !p.IsClassification {
		t.Error("expected a classification target")
	}
	if p.TargetDtype != "object" {
		t.Errorf("expected object target dtype, got %s", p.TargetDtype)
	}
	if got := p.MissingPct["age"]; got != 25.0 {
		t.Errorf("expected 25%% missing for age, got %v", got)
	}
	if got := p.NUniqueByCol["city"]; got != 2 {
		t.Errorf("expected 2 unique cities, got %d", got)
	}
	if len(p.FeatureTypes.Numeric) != 1 || p.FeatureTypes.Numeric[0] != "age" {
		t.Errorf("unexpected numeric features: %v", p.FeatureTypes.Numeric)
	}
	if len(p.FeatureTypes.Categorical) != 1 || p.FeatureTypes.Categorical[0] != "city" {
		t.Errorf("unexpected categorical features: %v", p.FeatureTypes.Categorical)
	}
	if p.ClassCounts["yes"] != 2 || p.ClassCounts["no"] != 2 {
		t.Errorf("unexpected class counts: %v", p.ClassCounts)
	}
	if p.ImbalanceRatio != 1.0 {
		t.Errorf("expected balanced ratio 1.0, got %v", p.ImbalanceRatio)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("profile failed its own invariant: %v", err)
	}
}

// TestProfileFrameMissingTarget tests that an unknown target is an error
func TestProfileFrameMissingTarget(t *testing.T) {
	f := buildFrame(t, []string{"a", "b"}, [][]string{{"1", "x"}})
	if _, err := ProfileFrame(f, "nope"); err == nil {
		t.Error("expected error for unknown target column")
	}
}

// TestImbalanceRatio tests ratio computation and the imbalance note
func TestImbalanceRatio(t *testing.T) {
	f := buildFrame(t, []string{"x", "label"}, imbalancedRows(90, 10))

	p, err := ProfileFrame(f, "label")
	if err != nil {
		t.Fatalf("failed to profile frame: %v", err)
	}
	if p.ImbalanceRatio != 9.0 {
		t.Errorf("expected imbalance ratio 9.0, got %v", p.ImbalanceRatio)
	}

	found := false
	for _, note := range p.Notes {
		if note == "Imbalance detected (ratio >= 3.0): prioritise macro metrics / balanced accuracy." {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an imbalance note, got %v", p.Notes)
	}
}

// TestImbalanceRatioSingleClass tests the single-class fallback to 1.0
func TestImbalanceRatioSingleClass(t *testing.T) {
	f := buildFrame(t, []string{"x", "label"}, imbalancedRows(5, 0))

	p, err := ProfileFrame(f, "label")
	if err != nil {
		t.Fatalf("failed to profile frame: %v", err)
	}
	if p.ImbalanceRatio != 1.0 {
		t.Errorf("expected ratio 1.0 for a single class, got %v", p.ImbalanceRatio)
	}
}

// TestFingerprintDeterminism tests that the same structure yields the same
// key and that changed structure yields a different one
func TestFingerprintDeterminism(t *testing.T) {
	rows := [][]string{{"1", "a", "yes"}, {"2", "b", "no"}}
	f1 := buildFrame(t, []string{"x", "g", "label"}, rows)
	f2 := buildFrame(t, []string{"x", "g", "label"}, rows)

	fp1 := Fingerprint(f1, "label")
	fp2 := Fingerprint(f2, "label")
	if fp1 != fp2 {
		t.Errorf("identical structure produced different fingerprints: %s vs %s", fp1, fp2)
	}

	renamed := buildFrame(t, []string{"x", "group", "label"}, rows)
	if Fingerprint(renamed, "label") == fp1 {
		t.Error("renamed column should change the fingerprint")
	}

	grown := buildFrame(t, []string{"x", "g", "label"}, append(rows, []string{"3", "c", "yes"}))
	if Fingerprint(grown, "label") == fp1 {
		t.Error("changed row count should change the fingerprint")
	}

	if Fingerprint(f1, "x") == fp1 {
		t.Error("changed target should change the fingerprint")
	}
}

// TestInferTarget tests preferred names and the last-column fallback
func TestInferTarget(t *testing.T) {
	preferred := buildFrame(t, []string{"a", "Label", "b"}, [][]string{{"1", "x", "2"}})
	name, ok := InferTarget(preferred)
	if !ok || name != "Label" {
		t.Errorf("expected preferred name Label, got %q (ok=%t)", name, ok)
	}

	fallback := buildFrame(t, []string{"a", "verdict"}, [][]string{
		{"1", "x"}, {"2", "y"}, {"3", "x"},
	})
	name, ok = InferTarget(fallback)
	if !ok || name != "verdict" {
		t.Errorf("expected last-column fallback verdict, got %q (ok=%t)", name, ok)
	}

	// Every value unique and cardinality above the ceiling: not a label.
	rows := make([][]string, 200)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("%d", i), fmt.Sprintf("id_%d", i)}
	}
	unique := buildFrame(t, []string{"a", "ident"}, rows)
	if _, ok := InferTarget(unique); ok {
		t.Error("expected inference to fail on a high-cardinality last column")
	}
}

// TestProfileClone tests that clones share no mutable state
func TestProfileClone(t *testing.T) {
	f := buildFrame(t, []string{"x", "label"}, imbalancedRows(3, 3))
	p, err := ProfileFrame(f, "label")
	if err != nil {
		t.Fatalf("failed to profile frame: %v", err)
	}

	c := p.Clone()
	c.Notes = append(c.Notes, "extra")
	c.MissingPct["x"] = 99
	c.ClassCounts["no"] = 0

	if len(p.Notes) == len(c.Notes) {
		t.Error("clone notes should be independent of the original")
	}
	if p.MissingPct["x"] == 99 {
		t.Error("clone missing_pct map should be independent")
	}
	if p.ClassCounts["no"] == 0 {
		t.Error("clone class_counts map should be independent")
	}
}

// TestProfileValidate tests invariant violations
func TestProfileValidate(t *testing.T) {
	p := &Profile{
		Columns: []string{"a", "b", "y"},
		Target:  "y",
		FeatureTypes: FeatureTypes{
			Numeric:     []string{"a"},
			Categorical: []string{"a"},
		},
	}
	if err := p.Validate(); err == nil {
		t.Error("expected error for overlapping feature types")
	}

	p.FeatureTypes = FeatureTypes{Numeric: []string{"a"}}
	if err := p.Validate(); err == nil {
		t.Error("expected error for uncovered non-target column")
	}

	p.FeatureTypes = FeatureTypes{Numeric: []string{"a"}, Categorical: []string{"b"}}
	if err := p.Validate(); err != nil {
		t.Errorf("expected valid partition, got %v", err)
	}
}
