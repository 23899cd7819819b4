package report

import (
	"bytes"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lqrgain/internal/design"
)

// SweepTable lists each re-solved design of an R sweep.
func SweepTable(points []design.SweepPoint) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCALE\tR\t|K0|\t‖K‖\tK·B\tMARGIN\tGAIN")
	for _, p := range points {
		fmt.Fprintf(w, "%.4g\t%v\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			p.Scale, p.R, math.Abs(p.Gain[0]), p.GainNorm, p.Authority, p.Margin, Line(p.Gain))
	}
	w.Flush()
	return buf.String()
}

// SweepPlot charts ‖K‖ and |K0| across the sweep.
func SweepPlot(points []design.SweepPoint) string {
	if len(points) == 0 {
		return ""
	}
	norms := make([]float64, len(points))
	k0 := make([]float64, len(points))
	for i, p := range points {
		norms[i] = p.GainNorm
		k0[i] = math.Abs(p.Gain[0])
	}

	caption := fmt.Sprintf("‖K‖ (cyan) and |K0| (green), R scale %.3g → %.3g", points[0].Scale, points[len(points)-1].Scale)
	return asciigraph.PlotMany([][]float64{norms, k0},
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Green),
		asciigraph.Caption(caption),
	)
}
