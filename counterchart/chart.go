// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package counterchart renders per-size charts of summarized counter
// metrics with gonum/plot.
package counterchart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/cachelab/counterstat/counterproc"
)

// A Kind is a chart layout.
type Kind int

const (
	// Bar draws grouped bars over an ordinal size axis with whiskers
	// marking the extent.
	Bar Kind = iota

	// Line draws a mean line over a quantitative size axis with a
	// shaded band marking the extent.
	Line
)

// Kinds lists every chart kind.
var Kinds = []Kind{Bar, Line}

func (k Kind) String() string {
	switch k {
	case Bar:
		return "bar"
	case Line:
		return "line"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// An Extent says how the spread around each mean is drawn.
type Extent int

const (
	// StdDev is the mean plus or minus one sample standard
	// deviation.
	StdDev Extent = iota

	// CI is the t-based confidence interval of the mean.
	CI
)

// Extents lists every extent.
var Extents = []Extent{StdDev, CI}

func (e Extent) String() string {
	switch e {
	case StdDev:
		return "stdev"
	case CI:
		return "ci"
	}
	return fmt.Sprintf("Extent(%d)", int(e))
}

// A Point is the summary of one series at one size.
type Point struct {
	Size         int
	Mean, Lo, Hi float64
}

// A Series is a named sequence of points in ascending size order.
type Series struct {
	Name   string
	Points []Point
}

// A Chart describes one image.
type Chart struct {
	Scope  string
	Metric counterproc.Metric
	Kind   Kind
	Extent Extent
	Series []Series

	// Refs are drawn on line charts only.
	Refs []RefLine
}

// FileName returns the chart's file name,
// "<scope>-<metric>-<kind>-<extent>.png".
func (c *Chart) FileName() string {
	return fmt.Sprintf("%s-%s-%s-%s.png", c.Scope, c.Metric.Col, c.Kind, c.Extent)
}

// Default image geometry.
const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 10 * vg.Centimeter
	DefaultDPI    = 150
)

// finite returns the points of s with a finite mean. Non-finite
// bounds collapse to the mean.
func finite(s Series) []Point {
	var pts []Point
	for _, p := range s.Points {
		if math.IsNaN(p.Mean) || math.IsInf(p.Mean, 0) {
			continue
		}
		if math.IsNaN(p.Lo) || math.IsInf(p.Lo, 0) {
			p.Lo = p.Mean
		}
		if math.IsNaN(p.Hi) || math.IsInf(p.Hi, 0) {
			p.Hi = p.Mean
		}
		pts = append(pts, p)
	}
	return pts
}

// yRange returns the value range of the chart's y axis and whether
// the axis can use a log scale.
func (c *Chart) yRange() (min, max float64, log bool) {
	min, max = math.Inf(1), math.Inf(-1)
	posMin := math.Inf(1)
	for _, s := range c.Series {
		for _, p := range finite(s) {
			min = math.Min(min, p.Lo)
			max = math.Max(max, p.Hi)
			for _, v := range []float64{p.Lo, p.Mean} {
				if v > 0 {
					posMin = math.Min(posMin, v)
				}
			}
		}
	}
	if math.IsInf(min, 1) {
		return 0, 1, false
	}
	if c.Metric.Scale == counterproc.Log2 && posMin < math.Inf(1) && max > 0 {
		min = posMin
		if min == max {
			min, max = min/2, max*2
		}
		return min / 1.1, max * 1.1, true
	}
	if c.Kind == Bar || c.Metric.Scale == counterproc.Percent {
		min = math.Min(min, 0)
	}
	if min == max {
		min, max = min-1, max+1
	}
	pad := (max - min) * 0.05
	if min < 0 {
		min -= pad
	}
	return min, max + pad, false
}

// sizes returns the distinct sizes of all series in ascending order.
func (c *Chart) sizes() []int {
	seen := make(map[int]bool)
	var sizes []int
	for _, s := range c.Series {
		for _, p := range s.Points {
			if !seen[p.Size] {
				seen[p.Size] = true
				sizes = append(sizes, p.Size)
			}
		}
	}
	sort.Ints(sizes)
	return sizes
}

func colors(n int) []color.Color {
	// Paired has between 3 and 12 classes.
	k := n
	if k < 3 {
		k = 3
	} else if k > 12 {
		k = 12
	}
	pal, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", k)
	if err != nil {
		panic(err)
	}
	cs := pal.Colors()
	out := make([]color.Color, n)
	for i := range out {
		out[i] = cs[i%len(cs)]
	}
	return out
}

func translucent(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), alpha}
}

// Plot builds the chart's plot.
func (c *Chart) Plot() (*plot.Plot, error) {
	sizes := c.sizes()
	if len(sizes) == 0 {
		return nil, fmt.Errorf("chart %s has no data", c.FileName())
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s: %s", c.Scope, c.Metric.Title)
	pl.X.Label.Text = "Size"
	pl.Y.Label.Text = c.Metric.Title
	pl.Legend.Top = true
	pl.Legend.Left = true

	ymin, ymax, logY := c.yRange()
	if logY {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = log2Ticks{format: formatCount}
	} else if c.Metric.Scale == counterproc.Percent {
		pl.Y.Tick.Marker = percentTicks
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	var err error
	switch c.Kind {
	case Bar:
		err = c.addBars(pl, sizes)
	case Line:
		err = c.addLines(pl, sizes, logY, ymin)
	default:
		err = fmt.Errorf("unknown chart kind %v", c.Kind)
	}
	if err != nil {
		return nil, err
	}

	pl.Y.Min, pl.Y.Max = ymin, ymax
	return pl, nil
}

func (c *Chart) addBars(pl *plot.Plot, sizes []int) error {
	labels := make([]string, len(sizes))
	index := make(map[int]float64)
	for i, sz := range sizes {
		labels[i] = strconv.Itoa(sz)
		index[sz] = float64(i)
	}
	pl.NominalX(labels...)

	cs := colors(len(c.Series))
	const groupFrac = 0.8
	barWidth := vg.Points(40*groupFrac) / vg.Length(len(c.Series))
	groupWidth := barWidth * vg.Length(len(c.Series)-1)
	for i, s := range c.Series {
		b := &bars{
			Width:    barWidth,
			Offset:   barWidth*vg.Length(i) - groupWidth/2,
			Color:    cs[i],
			Whisker:  draw.LineStyle{Color: color.Gray{64}, Width: vg.Points(0.75)},
			CapWidth: barWidth / 2,
		}
		for _, p := range finite(s) {
			b.Points = append(b.Points, barPoint{X: index[p.Size], Mean: p.Mean, Lo: p.Lo, Hi: p.Hi})
		}
		pl.Add(b)
		pl.Legend.Add(s.Name, b)
	}
	pl.X.Min, pl.X.Max = -0.5, float64(len(sizes))-0.5
	return nil
}

func (c *Chart) addLines(pl *plot.Plot, sizes []int, logY bool, ymin float64) error {
	xmin, xmax := float64(sizes[0]), float64(sizes[len(sizes)-1])
	for _, r := range c.Refs {
		xmin, xmax = math.Min(xmin, r.X), math.Max(xmax, r.X)
	}
	logX := xmin > 0
	if logX {
		pl.X.Scale = plot.LogScale{}
		pl.X.Tick.Marker = log2Ticks{format: formatSize}
		if xmin == xmax {
			xmin, xmax = xmin/2, xmax*2
		}
	} else if xmin == xmax {
		xmin, xmax = xmin-1, xmax+1
	}

	cs := colors(len(c.Series))
	for i, s := range c.Series {
		var pts []Point
		for _, p := range finite(s) {
			if !logY || p.Mean > 0 {
				pts = append(pts, p)
			}
		}
		if len(pts) == 0 {
			continue
		}
		mean := make(plotter.XYs, len(pts))
		band := make(plotter.XYs, 0, 2*len(pts))
		for j, p := range pts {
			mean[j] = plotter.XY{X: float64(p.Size), Y: p.Mean}
			lo := p.Lo
			if logY && lo < ymin {
				lo = ymin
			}
			band = append(band, plotter.XY{X: float64(p.Size), Y: lo})
		}
		for j := len(pts) - 1; j >= 0; j-- {
			band = append(band, plotter.XY{X: float64(pts[j].Size), Y: pts[j].Hi})
		}

		poly, err := plotter.NewPolygon(band)
		if err != nil {
			return err
		}
		poly.Color = translucent(cs[i], 0x50)
		poly.LineStyle.Width = 0

		line, err := plotter.NewLine(mean)
		if err != nil {
			return err
		}
		line.Color = cs[i]
		line.Width = vg.Points(1.5)

		pl.Add(poly, line)
		pl.Legend.Add(s.Name, line)
	}

	if len(c.Refs) > 0 {
		pl.Add(&refLines{
			Refs:  c.Refs,
			Style: draw.LineStyle{Color: color.Gray{96}, Width: vg.Points(0.75), Dashes: []vg.Length{vg.Points(4), vg.Points(2)}},
		})
	}
	pl.X.Min, pl.X.Max = xmin, xmax
	return nil
}

// WritePNG renders the chart as a PNG image of the given geometry.
func (c *Chart) WritePNG(w io.Writer, width, height vg.Length, dpi int) error {
	pl, err := c.Plot()
	if err != nil {
		return err
	}
	can := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))
	pl.Draw(draw.New(can))
	_, err = vgimg.PngCanvas{Canvas: can}.WriteTo(w)
	return err
}

// Save writes the chart to dir under its FileName with the default
// geometry and returns the path of the written file.
func (c *Chart) Save(dir string, dpi int) (string, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	path := filepath.Join(dir, c.FileName())
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := c.WritePNG(f, DefaultWidth, DefaultHeight, dpi); err != nil {
		f.Close()
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return path, f.Close()
}
