package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/power-curve-service/internal/domain"
)

// ErrReleased is returned when a released artifact is written.
var ErrReleased = errors.New("artifact already released")

// Options controls the raster output.
type Options struct {
	DPI    int
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions renders 12x8 inch charts at print resolution.
func DefaultOptions() Options {
	return Options{DPI: 300, Width: 12 * vg.Inch, Height: 8 * vg.Inch}
}

// Artifact is one rendered chart held as an in-memory raster until it is
// written out and released.
type Artifact struct {
	Turbine string
	Chart   Chart

	canvas *vgimg.Canvas
}

// WritePNG encodes the raster as PNG.
func (a *Artifact) WritePNG(w io.Writer) (int64, error) {
	if a.canvas == nil {
		return 0, ErrReleased
	}
	png := vgimg.PngCanvas{Canvas: a.canvas}
	return png.WriteTo(w)
}

// Image exposes the raster, or nil once released.
func (a *Artifact) Image() image.Image {
	if a.canvas == nil {
		return nil
	}
	return a.canvas.Image()
}

// Release drops the raster so its memory can be reclaimed.
func (a *Artifact) Release() {
	a.canvas = nil
}

// Released reports whether Release has been called.
func (a *Artifact) Released() bool {
	return a.canvas == nil
}

// Renderer draws turbine charts against a reference curve catalog.
type Renderer struct {
	catalog *domain.Catalog
	opts    Options
	logger  *slog.Logger
}

// NewRenderer creates a Renderer. Zero-valued options fall back to
// DefaultOptions.
func NewRenderer(catalog *domain.Catalog, opts Options, logger *slog.Logger) *Renderer {
	def := DefaultOptions()
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	return &Renderer{catalog: catalog, opts: opts, logger: logger}
}

// Render draws the chart of one turbine group. It does not fail: groups without
// operating points or with an unknown model produce a titled chart with fewer
// series.
func (r *Renderer) Render(g domain.TurbineGroup, model string) *Artifact {
	ch := Describe(r.catalog, g, model)
	if ch.Reference == nil {
		r.logger.Debug("no reference curve for model", "turbine", g.Turbine, "model", model)
	}
	switch {
	case len(ch.Scatter) > 0:
	case ch.Uncoded > 0:
		r.logger.Warn("operating points have no validity code", "turbine", g.Turbine, "points", ch.Uncoded)
	default:
		r.logger.Warn("no valid operating points", "turbine", g.Turbine, "records", len(g.Records))
	}

	p := r.buildPlot(ch)
	c := vgimg.NewWith(vgimg.UseWH(r.opts.Width, r.opts.Height), vgimg.UseDPI(r.opts.DPI))
	p.Draw(draw.New(c))

	return &Artifact{Turbine: g.Turbine, Chart: ch, canvas: c}
}

func (r *Renderer) buildPlot(ch Chart) *plot.Plot {
	p := plot.New()
	p.Title.Text = ch.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Tick.Marker = plot.ConstantTicks(xTicks())
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks())
	p.Legend.Top = true
	p.Legend.Left = true

	grid := plotter.NewGrid()
	grid.Vertical.Width = vg.Points(0.5)
	grid.Horizontal.Width = vg.Points(0.5)
	grid.Vertical.Color = translucentGray
	grid.Horizontal.Color = translucentGray
	p.Add(grid)

	for _, s := range ch.Scatter {
		sc, err := plotter.NewScatter(toXYs(s.Points))
		if err != nil {
			r.logger.Warn("skipping scatter series", "turbine", ch.Turbine, "series", s.Label, "error", err)
			continue
		}
		sc.GlyphStyle.Color = translucent(s.Color)
		sc.GlyphStyle.Radius = vg.Points(2)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(s.Label, sc)
	}

	if ch.Reference != nil {
		line, err := plotter.NewLine(toXYs(ch.Reference.Points))
		if err != nil {
			r.logger.Warn("skipping reference curve", "turbine", ch.Turbine, "model", ch.Model, "error", err)
		} else {
			line.LineStyle.Width = vg.Points(2)
			line.LineStyle.Color = ch.Reference.Color
			p.Add(line)
			p.Legend.Add(ch.Reference.Label, line)
		}
	}

	// Set after Add, which widens the ranges to the data.
	p.X.Min, p.X.Max = XMin, XMax
	p.Y.Min, p.Y.Max = YMin, YMax
	return p
}

var translucentGray = translucent(Neutral)

func xTicks() []plot.Tick {
	ticks := make([]plot.Tick, 0, XTickMax+1)
	for v := 0; v <= XTickMax; v++ {
		ticks = append(ticks, plot.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return ticks
}

func yTicks() []plot.Tick {
	ticks := make([]plot.Tick, 0, int(YMax)/YTickStep+1)
	for v := 0; v <= int(YMax); v += YTickStep {
		ticks = append(ticks, plot.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return ticks
}

func toXYs(points []domain.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.WindSpeed, Y: pt.Power}
	}
	return xys
}

// String identifies the artifact in logs.
func (a *Artifact) String() string {
	return fmt.Sprintf("%s (%d points)", a.Turbine, a.Chart.PointCount())
}
