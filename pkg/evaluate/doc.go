// Package evaluate selects the winning candidate from ranked training
// results and packages the comparative evidence: the best metric set, the
// full ranked metric list, a confusion-matrix heatmap for the winner, and a
// plain-text classification report.
package evaluate
