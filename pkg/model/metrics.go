package model

// Metrics is the fixed metric set computed for every candidate.
// Field names match the persisted metrics.json schema.
type Metrics struct {
	Model            string  `json:"model"`
	Accuracy         float64 `json:"accuracy"`
	BalancedAccuracy float64 `json:"balanced_accuracy"`
	F1Macro          float64 `json:"f1_macro"`
	PrecisionMacro   float64 `json:"precision_macro"`
	RecallMacro      float64 `json:"recall_macro"`
}

// ComputeMetrics computes the metric set from encoded true and predicted
// class indices. nClasses is the size of the full label set; classes absent
// from yTrue contribute zero to the macro averages (zero-division maps to
// zero, never an error). Balanced accuracy averages recall over the classes
// actually present in yTrue.
func ComputeMetrics(name string, yTrue, yPred []int, nClasses int) Metrics {
	tp := make([]int, nClasses)
	fp := make([]int, nClasses)
	fn := make([]int, nClasses)
	support := make([]int, nClasses)

	correct := 0
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		support[t]++
		if t == p {
			tp[t]++
			correct++
		} else {
			fp[p]++
			fn[t]++
		}
	}

	var precisionSum, recallSum, f1Sum float64
	var balancedSum float64
	present := 0
	for c := 0; c < nClasses; c++ {
		var precision, recall float64
		if tp[c]+fp[c] > 0 {
			precision = float64(tp[c]) / float64(tp[c]+fp[c])
		}
		if tp[c]+fn[c] > 0 {
			recall = float64(tp[c]) / float64(tp[c]+fn[c])
		}
		var f1 float64
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		precisionSum += precision
		recallSum += recall
		f1Sum += f1
		if support[c] > 0 {
			balancedSum += recall
			present++
		}
	}

	m := Metrics{Model: name}
	if len(yTrue) > 0 {
		m.Accuracy = float64(correct) / float64(len(yTrue))
	}
	if nClasses > 0 {
		m.PrecisionMacro = precisionSum / float64(nClasses)
		m.RecallMacro = recallSum / float64(nClasses)
		m.F1Macro = f1Sum / float64(nClasses)
	}
	if present > 0 {
		m.BalancedAccuracy = balancedSum / float64(present)
	}
	return m
}
