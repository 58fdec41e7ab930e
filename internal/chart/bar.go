package chart

import (
	"fmt"

	"salesplot/internal/core"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const groupWidth = 60 // points per bucket cluster

// transactionTypesPlot draws a grouped bar chart: one cluster per bucket, one
// bar per category placed side by side.
func transactionTypesPlot(pv core.Pivot) (*plot.Plot, error) {
	if err := checkPivot(pv); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Yearly Transactions by Transaction Type"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Number of Transactions"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	n := len(pv.Categories)
	width := vg.Points(groupWidth / float64(n))
	for j, category := range pv.Categories {
		bars, err := plotter.NewBarChart(plotter.Values(pv.Column(j)), width)
		if err != nil {
			return nil, fmt.Errorf("bars for %s: %w", category, err)
		}
		bars.Color = plotutil.Color(j)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = barOffset(j, n, width)

		p.Add(bars)
		p.Legend.Add(category, bars)
	}

	p.NominalX(pv.Buckets...)
	return p, nil
}

// barOffset centers n bars of the given width around their tick.
func barOffset(j, n int, width vg.Length) vg.Length {
	return vg.Length(float64(j)-float64(n-1)/2) * width
}
