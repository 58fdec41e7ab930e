// Package chart renders count pivots to image files with gonum/plot.
package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"salesplot/internal/core"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when a pivot has no buckets or no categories.
var ErrNoData = errors.New("chart: no data to plot")

// File base names, one per chart.
const (
	MonthlySalesFile     = "monthly_sales"
	ReceivedByFile       = "received_by"
	TransactionTypesFile = "transaction_types"
)

// Renderer writes charts as <name>.<format> under a directory.
type Renderer struct {
	outputDir string
	format    string
}

func NewRenderer(outputDir, format string) (*Renderer, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if !slices.Contains(draw.Formats(), format) || format == "tex" {
		return nil, fmt.Errorf("unsupported chart format %q", format)
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, errors.New("output directory cannot be empty")
	}
	return &Renderer{outputDir: outputDir, format: format}, nil
}

func (r *Renderer) Format() string { return r.format }

func (r *Renderer) path(name string) string {
	return filepath.Join(r.outputDir, name+"."+r.format)
}

func (r *Renderer) savePlot(p *plot.Plot, w, h vg.Length, name string) (string, error) {
	wt, err := p.WriterTo(w, h, r.format)
	if err != nil {
		return "", fmt.Errorf("prepare %s: %w", name, err)
	}
	return r.writeFile(wt, name)
}

// saveRow draws plots side by side on one canvas of w per tile.
func (r *Renderer) saveRow(plots []*plot.Plot, tileW, h vg.Length, name string) (string, error) {
	c, err := draw.NewFormattedCanvas(tileW*vg.Length(len(plots)), h, r.format)
	if err != nil {
		return "", fmt.Errorf("prepare %s: %w", name, err)
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, draw.New(c))
	for i, p := range plots {
		p.Draw(canvases[0][i])
	}
	return r.writeFile(c, name)
}

func (r *Renderer) writeFile(wt io.WriterTo, name string) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := r.path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// MonthlySales renders the monthly item type line chart.
func (r *Renderer) MonthlySales(ctx context.Context, pv core.Pivot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := monthlySalesPlot(pv)
	if err != nil {
		return "", err
	}
	return r.savePlot(p, 12*vg.Inch, 10*vg.Inch, MonthlySalesFile)
}

// ReceivedBy renders one pie per year in a single row.
func (r *Renderer) ReceivedBy(ctx context.Context, pv core.Pivot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	plots, err := receivedByPlots(pv)
	if err != nil {
		return "", err
	}
	return r.saveRow(plots, pieTileWidth, pieTileHeight, ReceivedByFile)
}

// TransactionTypes renders the grouped yearly bar chart.
func (r *Renderer) TransactionTypes(ctx context.Context, pv core.Pivot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := transactionTypesPlot(pv)
	if err != nil {
		return "", err
	}
	return r.savePlot(p, 10*vg.Inch, 6*vg.Inch, TransactionTypesFile)
}

func checkPivot(pv core.Pivot) error {
	if pv.IsEmpty() || len(pv.Categories) == 0 {
		return ErrNoData
	}
	return nil
}
