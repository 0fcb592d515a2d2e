// Package chart renders dashboard figures as PNG images with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrEmptyMatrix is returned when a heatmap has no fields to draw.
var ErrEmptyMatrix = errors.New("correlation matrix has no fields")

// Figure sizes match the dashboard's two panels.
const (
	lineWidth   = 12 * vg.Inch
	lineHeight  = 6 * vg.Inch
	heatmapSize = 8 * vg.Inch
)

// DailyLine plots a daily mean series against calendar dates.
func DailyLine(field string, daily []domain.DailyAggregate) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Daily %s (resampled)", field)
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = field
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	if len(daily) == 0 {
		return p, nil
	}

	points := make(plotter.XYs, len(daily))
	for i, d := range daily {
		points[i].X = float64(d.Date.Unix())
		points[i].Y = d.Mean
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("daily line: %w", err)
	}
	line.Color = color.RGBA{B: 255, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	return p, nil
}

// CorrelationHeatmap draws the matrix as an annotated heatmap on a fixed
// [-1, 1] scale. Missing coefficients are left blank and labeled "NA".
func CorrelationHeatmap(m domain.CorrelationMatrix) (*plot.Plot, error) {
	n := len(m.Fields)
	if n == 0 {
		return nil, ErrEmptyMatrix
	}

	pal, err := brewer.GetPalette(brewer.TypeAny, "YlGnBu", 9)
	if err != nil {
		return nil, fmt.Errorf("heatmap palette: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Correlation between PM2.5 and meteorology"
	p.Title.TextStyle.Font.Size = vg.Points(16)

	heat := plotter.NewHeatMap(matrixGrid{m}, palette.Palette(pal))
	heat.Min, heat.Max = -1, 1
	heat.NaN = color.Transparent
	p.Add(heat)

	labels, err := plotter.NewLabels(cellLabels(m))
	if err != nil {
		return nil, fmt.Errorf("heatmap labels: %w", err)
	}
	p.Add(labels)

	ticks := make([]plot.Tick, n)
	rowTicks := make([]plot.Tick, n)
	for i, f := range m.Fields {
		ticks[i] = plot.Tick{Value: float64(i), Label: f}
		rowTicks[i] = plot.Tick{Value: float64(n - 1 - i), Label: f}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(rowTicks)
	return p, nil
}

// WritePNG encodes p as a PNG of the given size.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// WriteDailyPNG renders DailyLine at the dashboard's trend size.
func WriteDailyPNG(w io.Writer, field string, daily []domain.DailyAggregate) error {
	p, err := DailyLine(field, daily)
	if err != nil {
		return err
	}
	return WritePNG(w, p, lineWidth, lineHeight)
}

// WriteCorrelationPNG renders CorrelationHeatmap at the dashboard's square size.
func WriteCorrelationPNG(w io.Writer, m domain.CorrelationMatrix) error {
	p, err := CorrelationHeatmap(m)
	if err != nil {
		return err
	}
	return WritePNG(w, p, heatmapSize, heatmapSize)
}

var nanValue = math.NaN()

// matrixGrid adapts a CorrelationMatrix to plotter.GridXYZ. Row 0 is drawn
// at the top, as in a printed table.
type matrixGrid struct {
	m domain.CorrelationMatrix
}

func (g matrixGrid) Dims() (c, r int) {
	n := len(g.m.Fields)
	return n, n
}

func (g matrixGrid) Z(c, r int) float64 {
	n := len(g.m.Fields)
	v := g.m.At(n-1-r, c)
	if !v.Valid {
		return nanValue
	}
	return v.Float64
}

func (g matrixGrid) X(c int) float64 { return float64(c) }

func (g matrixGrid) Y(r int) float64 { return float64(r) }

func cellLabels(m domain.CorrelationMatrix) plotter.XYLabels {
	n := len(m.Fields)
	xys := make(plotter.XYs, 0, n*n)
	texts := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(n - 1 - r)})
			v := m.At(r, c)
			if v.Valid {
				texts = append(texts, fmt.Sprintf("%.2f", v.Float64))
			} else {
				texts = append(texts, "NA")
			}
		}
	}
	return plotter.XYLabels{XYs: xys, Labels: texts}
}
