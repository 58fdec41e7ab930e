package chart

import (
	"fmt"
	"math"

	"salesplot/internal/core"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// monthlySalesPlot draws one marked line per category over the bucket
// sequence. A single bucket yields single points.
func monthlySalesPlot(pv core.Pivot) (*plot.Plot, error) {
	if err := checkPivot(pv); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Monthly Sales of Food Types"
	p.X.Label.Text = "Month-Year"
	p.Y.Label.Text = "Total Sales"
	p.Y.Min = 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for j, category := range pv.Categories {
		column := pv.Column(j)
		pts := make(plotter.XYs, len(column))
		for i, v := range column {
			pts[i].X = float64(i)
			pts[i].Y = v
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("line for %s: %w", category, err)
		}
		line.Color = plotutil.Color(j)
		line.Width = vg.Points(1.5)
		points.Color = plotutil.Color(j)
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(3)

		p.Add(line, points)
		p.Legend.Add(category, line, points)
	}

	p.NominalX(pv.Buckets...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return p, nil
}
