package display

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/oshokin/golden-orbit/internal/logger"
)

// Image size of the rendered plot.
const (
	plotWidth  = 12 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// ErrSeriesLength is returned when xs and ys differ in length.
var ErrSeriesLength = errors.New("x and y series differ in length")

// Nop ignores every call.
type Nop struct{}

// AddCurve does nothing.
func (Nop) AddCurve(context.Context, string) {}

// RemoveCurve does nothing.
func (Nop) RemoveCurve(context.Context, string) {}

// SetData does nothing.
func (Nop) SetData(context.Context, string, []float64, []float64) {}

// PlotDisplay holds named curves and renders them to a PNG, SVG or PDF file,
// the format following the extension of path.
type PlotDisplay struct {
	// path is the image file rewritten after every change.
	path string
	// title is printed above the axes.
	title string

	mu     sync.Mutex
	curves map[string]plotter.XYs
	// order keeps curves in the order they were added.
	order []string
}

// NewPlotDisplay creates a display rendering to path.
func NewPlotDisplay(path, title string) *PlotDisplay {
	return &PlotDisplay{
		path:   path,
		title:  title,
		curves: make(map[string]plotter.XYs),
	}
}

// AddCurve registers an empty curve. Adding an existing tag keeps its data.
func (d *PlotDisplay) AddCurve(ctx context.Context, tag string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.curves[tag]; ok {
		return
	}

	d.curves[tag] = plotter.XYs{}
	d.order = append(d.order, tag)

	d.render(ctx)
}

// RemoveCurve drops a curve. Unknown tags are ignored.
func (d *PlotDisplay) RemoveCurve(ctx context.Context, tag string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.curves[tag]; !ok {
		return
	}

	delete(d.curves, tag)
	d.order = slices.DeleteFunc(d.order, func(t string) bool { return t == tag })

	d.render(ctx)
}

// SetData replaces the points of a curve. Unknown tags and mismatched
// series are logged and ignored.
func (d *PlotDisplay) SetData(ctx context.Context, tag string, xs, ys []float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.curves[tag]; !ok {
		logger.WarnKV(ctx, "Data for a curve that was never added", "curve", tag)

		return
	}

	if len(xs) != len(ys) {
		logger.ErrorKV(ctx, "Curve data rejected", "curve", tag, "error", ErrSeriesLength,
			"xs", len(xs), "ys", len(ys))

		return
	}

	points := make(plotter.XYs, len(xs))
	for i := range xs {
		points[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}

	d.curves[tag] = points

	d.render(ctx)
}

// Curves returns the tags currently drawn, in the order they were added.
func (d *PlotDisplay) Curves() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.order)
}

// Series returns a copy of the points of a curve.
func (d *PlotDisplay) Series(tag string) (xs, ys []float64, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	points, ok := d.curves[tag]
	if !ok {
		return nil, nil, false
	}

	xs = make([]float64, len(points))
	ys = make([]float64, len(points))

	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}

	return xs, ys, true
}

// render must be called with mu held. Failures are logged only: a broken
// plot file never fails an orbit operation.
func (d *PlotDisplay) render(ctx context.Context) {
	if d.path == "" {
		return
	}

	if err := d.draw(); err != nil {
		logger.ErrorKV(ctx, "Failed to render orbit plot", "path", d.path, "error", err)

		return
	}

	logger.DebugKV(ctx, "Orbit plot rendered", "path", d.path, "curves", len(d.order))
}

func (d *PlotDisplay) draw() error {
	p := plot.New()
	p.Title.Text = d.title
	p.X.Label.Text = "s (m)"
	p.Y.Label.Text = "Position (mm)"
	p.Add(plotter.NewGrid())

	for i, tag := range d.order {
		points := d.curves[tag]
		if len(points) == 0 {
			continue
		}

		line, scatter, err := plotter.NewLinePoints(points)
		if err != nil {
			return fmt.Errorf("curve %q: %w", tag, err)
		}

		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		scatter.Color = plotutil.Color(i)
		scatter.Shape = plotutil.Shape(i)

		p.Add(line, scatter)
		p.Legend.Add(tag, line, scatter)
	}

	p.Legend.Top = true

	if err := p.Save(plotWidth, plotHeight, d.path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}

	return nil
}
