// Package chart computes the geometry of a line chart of a value series.
//
// The geometry is plain data (SVG path strings, points, ticks) so that it can
// be rendered by any front end. WriteSVG is the one provided here.
package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/etnz/whatif"
)

// Options sizes the chart. Zero fields take their default.
type Options struct {
	Width    float64 // default 640
	Height   float64 // default 160
	Padding  float64 // default 24
	XTicks   int     // number of x labels, first and last included, default 5
	YTicks   int     // number of y intervals, default 4
	Currency string  // y labels currency, default whatif.DefaultCurrency
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 160
	}
	if o.Padding < 0 || o.Padding*2 >= min(o.Width, o.Height) {
		o.Padding = 24
	}
	if o.XTicks < 2 {
		o.XTicks = 5
	}
	if o.YTicks < 1 {
		o.YTicks = 4
	}
	return o
}

// Point is a sample in chart coordinates.
type Point struct {
	X, Y  float64
	Value float64
	Label string
}

// Tick is an axis label at a chart position.
type Tick struct {
	X, Y  float64
	Label string
}

// Line is a segment in chart coordinates.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Axes are the two axis lines, they meet at the bottom left padding corner.
type Axes struct {
	X, Y Line
}

// Geometry is everything needed to draw the chart.
type Geometry struct {
	Width, Height float64
	Path          string // the line, "M x,y L x,y ..."
	Area          string // the line closed down to the x axis
	Points        []Point
	XTicks        []Tick
	YTicks        []Tick
	Axes          Axes
}

// IsEmpty reports whether there is nothing to draw.
func (g Geometry) IsEmpty() bool { return g.Path == "" }

// Build computes the geometry of values plotted between yMin and yMax.
//
// Values are evenly spaced on the x axis, labels[i] names values[i]. If
// yMax <= yMin the geometry is empty. An empty series has axes and y ticks
// but no path. A single value is drawn as a zero length segment.
func Build(values []float64, labels []string, yMin, yMax float64, opts Options) Geometry {
	opts = opts.withDefaults()
	g := Geometry{Width: opts.Width, Height: opts.Height}
	if !(yMax > yMin) || math.IsInf(yMax-yMin, 0) {
		return g
	}

	p := opts.Padding
	left, right := p, opts.Width-p
	top, bottom := p, opts.Height-p
	g.Axes = Axes{
		X: Line{X1: left, Y1: bottom, X2: right, Y2: bottom},
		Y: Line{X1: left, Y1: top, X2: left, Y2: bottom},
	}

	y := func(v float64) float64 {
		return bottom - (v-yMin)/(yMax-yMin)*(bottom-top)
	}
	for i := 0; i <= opts.YTicks; i++ {
		v := yMin + float64(i)*(yMax-yMin)/float64(opts.YTicks)
		g.YTicks = append(g.YTicks, Tick{X: left, Y: y(v), Label: whatif.M(v, opts.Currency).String()})
	}

	n := len(values)
	if n == 0 {
		return g
	}
	step := (right - left) / float64(max(1, n-1))
	g.Points = make([]Point, n)
	for i, v := range values {
		g.Points[i] = Point{X: left + float64(i)*step, Y: y(v), Value: v, Label: label(labels, i)}
	}

	var b strings.Builder
	for i, pt := range g.Points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(coord(pt.X, pt.Y))
	}
	if n == 1 {
		b.WriteString(" L " + coord(g.Points[0].X, g.Points[0].Y))
	}
	g.Path = b.String()

	first, last := g.Points[0], g.Points[n-1]
	g.Area = g.Path + " L " + coord(last.X, bottom) + " L " + coord(first.X, bottom) + " Z"

	for _, i := range tickIndexes(n, opts.XTicks) {
		g.XTicks = append(g.XTicks, Tick{X: g.Points[i].X, Y: bottom, Label: g.Points[i].Label})
	}
	return g
}

// tickIndexes returns up to k indexes of [0,n), evenly spaced, first and last included.
func tickIndexes(n, k int) []int {
	if n == 1 {
		return []int{0}
	}
	k = min(k, n)
	idx := make([]int, 0, k)
	for i := 0; i < k; i++ {
		j := int(math.Round(float64(i) * float64(n-1) / float64(k-1)))
		if len(idx) > 0 && idx[len(idx)-1] == j {
			continue
		}
		idx = append(idx, j)
	}
	return idx
}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}

// coord formats a point with at most two decimals.
func coord(x, y float64) string {
	return num(x) + "," + num(y)
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Domain returns a y range shared by all series.
//
// The range always includes zero so that areas are drawn down to a zero
// baseline. A flat range is widened to [lo, lo+1].
func Domain(series ...[]float64) (lo, hi float64) {
	for _, s := range series {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}
