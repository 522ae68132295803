package chart

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/scene"
)

// Logical chart size in CSS pixels.
const (
	Width  = 800
	Height = 600
)

const (
	yAxisWidth  = 60
	xAxisHeight = 30
	tickSize    = 6
	yTickCount  = 5
	yHeadroom   = 0.3
)

// Axis labels.
const (
	XLabel = "연도"
	YLabel = "출산율"
)

// Chart is a built scene together with the geometry used to draw it.
type Chart struct {
	Scene   *scene.Scene
	Points  []dataset.Point // sorted by year
	XDomain [2]float64
	YDomain [2]float64
	XTicks  []float64
	YTicks  []float64
	Plot    Rect
}

// Rect is an axis-aligned rectangle in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

// Option adjusts a single Build.
type Option func(*buildOptions)

type buildOptions struct {
	active int
}

// WithActive highlights the marker for year.
func WithActive(year int) Option {
	return func(o *buildOptions) { o.active = year }
}

// Build lays out points as a line chart. Points need not be sorted. Build
// fails when points is empty.
func Build(points []dataset.Point, theme Theme, opts ...Option) (*Chart, error) {
	if len(points) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no points to chart")
	}
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	sheet, err := scene.ParseStylesheet(theme.CSS())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTheme, err, "theme stylesheet")
	}

	sorted := dataset.Sorted(points)
	lo, hi, _ := dataset.YearRange(sorted)
	c := &Chart{
		Points:  sorted,
		XDomain: [2]float64{float64(lo), float64(hi)},
		YDomain: [2]float64{0, dataset.MaxRate(sorted) + yHeadroom},
	}
	for _, p := range sorted {
		c.XTicks = append(c.XTicks, float64(p.Year))
	}
	c.YTicks = niceTicks(c.YDomain[0], c.YDomain[1], yTickCount)

	m := theme.Margin
	c.Plot = Rect{
		X: m.Left + yAxisWidth,
		Y: m.Top,
		W: Width - m.Left - m.Right - yAxisWidth,
		H: Height - m.Top - m.Bottom - xAxisHeight,
	}
	xs := linear{d0: c.XDomain[0], d1: c.XDomain[1], r0: c.Plot.X, r1: c.Plot.X + c.Plot.W}
	ys := linear{d0: c.YDomain[0], d1: c.YDomain[1], r0: c.Plot.Y + c.Plot.H, r1: c.Plot.Y}

	root := scene.El("svg",
		scene.A("class", "recharts-surface"),
		scene.A("width", num(Width)),
		scene.A("height", num(Height)),
		scene.A("viewBox", fmt.Sprintf("0 0 %d %d", Width, Height)),
	)
	root.Append(
		grid(c, xs, ys),
		xAxis(c, xs, theme),
		yAxis(c, ys, theme),
		line(c, xs, ys, theme, o.active),
	)
	c.Scene = scene.New(root, sheet, Width, Height)
	return c, nil
}

func grid(c *Chart, xs, ys linear) *scene.Node {
	horizontal := scene.El("g", scene.A("class", "recharts-cartesian-grid-horizontal"))
	for _, t := range c.YTicks {
		y := ys.At(t)
		horizontal.Append(scene.El("line",
			scene.A("x1", num(c.Plot.X)), scene.A("y1", num(y)),
			scene.A("x2", num(c.Plot.X+c.Plot.W)), scene.A("y2", num(y)),
		))
	}
	vertical := scene.El("g", scene.A("class", "recharts-cartesian-grid-vertical"))
	for _, t := range c.XTicks {
		x := xs.At(t)
		vertical.Append(scene.El("line",
			scene.A("x1", num(x)), scene.A("y1", num(c.Plot.Y)),
			scene.A("x2", num(x)), scene.A("y2", num(c.Plot.Y+c.Plot.H)),
		))
	}
	return scene.El("g", scene.A("class", "recharts-cartesian-grid")).Append(horizontal, vertical)
}

func tickText(x, y float64, anchor, label string, theme Theme) *scene.Node {
	t := scene.El("text",
		scene.A("class", "recharts-text recharts-cartesian-axis-tick-value"),
		scene.A("x", num(x)), scene.A("y", num(y)),
		scene.A("text-anchor", anchor),
		scene.A("font-size", num(theme.TickFontSize)),
		scene.A("font-family", theme.FontFamily),
	)
	t.Text = label
	return t
}

func axisLabel(x, y float64, label string, theme Theme) *scene.Node {
	t := scene.El("text",
		scene.A("class", "recharts-text recharts-label"),
		scene.A("x", num(x)), scene.A("y", num(y)),
		scene.A("style", fmt.Sprintf(
			"text-anchor: middle; fill: hsl(var(--card-foreground)); font-size: %spx; font-family: %s; font-weight: bold",
			num(theme.LabelFontSize), theme.FontFamily)),
	)
	t.Text = label
	return t
}

func xAxis(c *Chart, xs linear, theme Theme) *scene.Node {
	y := c.Plot.Y + c.Plot.H
	axis := scene.El("g", scene.A("class", "recharts-layer recharts-cartesian-axis recharts-xAxis xAxis"))
	axis.Append(scene.El("line",
		scene.A("class", "recharts-cartesian-axis-line"),
		scene.A("x1", num(c.Plot.X)), scene.A("y1", num(y)),
		scene.A("x2", num(c.Plot.X+c.Plot.W)), scene.A("y2", num(y)),
	))
	ticks := scene.El("g", scene.A("class", "recharts-cartesian-axis-ticks"))
	for _, t := range c.XTicks {
		x := xs.At(t)
		tick := scene.El("g", scene.A("class", "recharts-layer recharts-cartesian-axis-tick"))
		tick.Append(
			scene.El("line",
				scene.A("class", "recharts-cartesian-axis-tick-line"),
				scene.A("x1", num(x)), scene.A("y1", num(y)),
				scene.A("x2", num(x)), scene.A("y2", num(y+tickSize)),
			),
			tickText(x, y+tickSize+theme.TickFontSize+2, "middle", strconv.Itoa(int(t)), theme),
		)
		ticks.Append(tick)
	}
	axis.Append(ticks, axisLabel(c.Plot.X+c.Plot.W/2, y+xAxisHeight+theme.LabelFontSize, XLabel, theme))
	return axis
}

func yAxis(c *Chart, ys linear, theme Theme) *scene.Node {
	x := c.Plot.X
	axis := scene.El("g", scene.A("class", "recharts-layer recharts-cartesian-axis recharts-yAxis yAxis"))
	axis.Append(scene.El("line",
		scene.A("class", "recharts-cartesian-axis-line"),
		scene.A("x1", num(x)), scene.A("y1", num(c.Plot.Y)),
		scene.A("x2", num(x)), scene.A("y2", num(c.Plot.Y+c.Plot.H)),
	))
	ticks := scene.El("g", scene.A("class", "recharts-cartesian-axis-ticks"))
	for _, t := range c.YTicks {
		y := ys.At(t)
		tick := scene.El("g", scene.A("class", "recharts-layer recharts-cartesian-axis-tick"))
		tick.Append(
			scene.El("line",
				scene.A("class", "recharts-cartesian-axis-tick-line"),
				scene.A("x1", num(x-tickSize)), scene.A("y1", num(y)),
				scene.A("x2", num(x)), scene.A("y2", num(y)),
			),
			tickText(x-tickSize-2, y+theme.TickFontSize/3, "end", num(t), theme),
		)
		ticks.Append(tick)
	}
	lx, ly := theme.Margin.Left+theme.LabelFontSize/2, c.Plot.Y+c.Plot.H/2
	label := axisLabel(lx, ly, YLabel, theme)
	label.Set("transform", fmt.Sprintf("rotate(-90, %s, %s)", num(lx), num(ly)))
	axis.Append(ticks, label)
	return axis
}

func line(c *Chart, xs, ys linear, theme Theme, active int) *scene.Node {
	pts := make([]point, len(c.Points))
	for i, p := range c.Points {
		pts[i] = point{X: xs.At(float64(p.Year)), Y: ys.At(p.Rate)}
	}
	layer := scene.El("g", scene.A("class", "recharts-layer recharts-line"))
	layer.Append(scene.El("path",
		scene.A("class", "recharts-curve recharts-line-curve"),
		scene.A("d", monotonePath(pts)),
	))
	dots := scene.El("g", scene.A("class", "recharts-layer recharts-line-dots"))
	for i, p := range c.Points {
		class, r := "recharts-dot recharts-line-dot", theme.MarkerRadius
		if p.Year == active {
			class += " recharts-active-dot"
			r = theme.ActiveRadius
		}
		dots.Append(scene.El("circle",
			scene.A("class", class),
			scene.A("cx", num(pts[i].X)), scene.A("cy", num(pts[i].Y)),
			scene.A("r", num(r)),
			scene.A("data-year", strconv.Itoa(p.Year)),
			scene.A("data-rate", strconv.FormatFloat(p.Rate, 'f', 2, 64)),
		))
	}
	return layer.Append(dots)
}
