package chart

import (
	"fmt"
	"image/color"
	"math"

	"salesplot/internal/core"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	pieTileWidth  = 5 * vg.Inch
	pieTileHeight = 5.4 * vg.Inch

	pieStartAngle    = math.Pi / 2 // wedges start at the top
	pieArcStep       = math.Pi / 180
	pieLabelRadius   = 1.15
	piePercentRadius = 0.6
)

// receivedByPlots returns one pie per bucket, in bucket order. A category keeps
// its color across pies.
func receivedByPlots(pv core.Pivot) ([]*plot.Plot, error) {
	if err := checkPivot(pv); err != nil {
		return nil, err
	}

	plots := make([]*plot.Plot, 0, len(pv.Buckets))
	for i, bucket := range pv.Buckets {
		p, err := piePlot("Distribution of Received By - "+bucket, pv.Categories, pv.Counts[i])
		if err != nil {
			return nil, fmt.Errorf("pie for %s: %w", bucket, err)
		}
		plots = append(plots, p)
	}
	return plots, nil
}

func piePlot(title string, categories []string, counts []int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.X.Min, p.X.Max = -1.5, 1.5
	p.Y.Min, p.Y.Max = -1.5, 1.5

	var names, percents plotter.XYLabels
	for _, sl := range pieSlices(categories, counts) {
		wedge, err := plotter.NewPolygon(wedgePoints(sl.start, sl.start+sl.sweep))
		if err != nil {
			return nil, fmt.Errorf("wedge %s: %w", sl.category, err)
		}
		wedge.Color = plotutil.Color(sl.index)
		wedge.LineStyle.Color = color.White
		wedge.LineStyle.Width = vg.Points(0.5)
		p.Add(wedge)

		mid := sl.start + sl.sweep/2
		names.XYs = append(names.XYs, polar(pieLabelRadius, mid))
		names.Labels = append(names.Labels, sl.category)
		percents.XYs = append(percents.XYs, polar(piePercentRadius, mid))
		percents.Labels = append(percents.Labels, sl.percent)
	}

	for _, set := range []plotter.XYLabels{names, percents} {
		if len(set.Labels) == 0 {
			continue
		}
		labels, err := plotter.NewLabels(set)
		if err != nil {
			return nil, fmt.Errorf("labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(labels)
	}

	return p, nil
}

type pieSlice struct {
	index    int
	category string
	start    float64
	sweep    float64
	percent  string
}

// pieSlices lays out non-zero counts counter-clockwise from the top.
// Percentages have one decimal.
func pieSlices(categories []string, counts []int) []pieSlice {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return nil
	}

	var slices []pieSlice
	angle := pieStartAngle
	for j, n := range counts {
		if n == 0 {
			continue
		}
		share := decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(int64(total)))
		sweep := share.InexactFloat64() * 2 * math.Pi
		slices = append(slices, pieSlice{
			index:    j,
			category: categories[j],
			start:    angle,
			sweep:    sweep,
			percent:  share.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%",
		})
		angle += sweep
	}
	return slices
}

// wedgePoints traces a closed wedge from the origin counter-clockwise between
// two angles.
func wedgePoints(from, to float64) plotter.XYs {
	steps := int(math.Ceil((to - from) / pieArcStep))
	if steps < 1 {
		steps = 1
	}
	pts := make(plotter.XYs, 0, steps+2)
	pts = append(pts, plotter.XY{})
	for i := 0; i <= steps; i++ {
		pts = append(pts, polar(1, from+(to-from)*float64(i)/float64(steps)))
	}
	return pts
}

func polar(r, theta float64) plotter.XY {
	return plotter.XY{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}
