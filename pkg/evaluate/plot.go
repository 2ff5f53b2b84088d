package evaluate

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// confusionGrid adapts a count matrix to the heatmap's grid interface.
// Row 0 of the matrix is drawn at the top, matching the usual confusion
// matrix orientation.
type confusionGrid struct {
	cm [][]int
}

func (g confusionGrid) Dims() (c, r int) { return len(g.cm), len(g.cm) }
func (g confusionGrid) X(c int) float64  { return float64(c) }
func (g confusionGrid) Y(r int) float64  { return float64(r) }
func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.cm[len(g.cm)-1-r][c])
}

// renderConfusionHeatmap draws the confusion matrix as a heatmap with class
// labels on both axes and the raw count printed in each cell.
func renderConfusionHeatmap(cm [][]int, classes []string, title, outPath string) error {
	if len(cm) == 0 {
		return fmt.Errorf("empty confusion matrix")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted label"
	p.Y.Label.Text = "True label"

	heatmap := plotter.NewHeatMap(confusionGrid{cm: cm}, palette.Heat(12, 1))
	p.Add(heatmap)

	n := len(classes)
	xTicks := make([]plot.Tick, n)
	yTicks := make([]plot.Tick, n)
	for i, class := range classes {
		xTicks[i] = plot.Tick{Value: float64(i), Label: class}
		yTicks[i] = plot.Tick{Value: float64(n - 1 - i), Label: class}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)

	labels := plotter.XYLabels{}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%d", cm[i][j]))
		}
	}
	cellLabels, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	p.Add(cellLabels)

	return p.Save(6*vg.Inch, 5*vg.Inch, outPath)
}
