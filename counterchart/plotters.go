// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterchart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"golang.org/x/perf/benchunit"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type barPoint struct {
	X            float64
	Mean, Lo, Hi float64
}

// bars draws one series of a grouped bar chart with whiskers. Unlike
// plotter.BarChart it clamps bars and whiskers to the axis range, so
// it works on a log scale.
type bars struct {
	Points   []barPoint
	Width    vg.Length
	Offset   vg.Length
	Color    color.Color
	Whisker  draw.LineStyle
	CapWidth vg.Length
}

func (b *bars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	_, logY := plt.Y.Scale.(plot.LogScale)
	clamp := func(y float64) float64 {
		return math.Max(plt.Y.Min, math.Min(plt.Y.Max, y))
	}
	base := 0.0
	if logY {
		base = plt.Y.Min
	}
	base = clamp(base)

	for _, p := range b.Points {
		x := trX(p.X)
		if !c.ContainsX(x) {
			continue
		}
		x += b.Offset
		y0, y1 := trY(base), trY(clamp(p.Mean))
		left, right := x-b.Width/2, x+b.Width/2
		c.FillPolygon(b.Color, c.ClipPolygonY([]vg.Point{
			{X: left, Y: y0}, {X: left, Y: y1}, {X: right, Y: y1}, {X: right, Y: y0},
		}))

		if p.Lo == p.Hi {
			continue
		}
		lo, hi := trY(clamp(p.Lo)), trY(clamp(p.Hi))
		half := b.CapWidth / 2
		c.StrokeLines(b.Whisker, c.ClipLinesY(
			[]vg.Point{{X: x, Y: lo}, {X: x, Y: hi}},
			[]vg.Point{{X: x - half, Y: lo}, {X: x + half, Y: lo}},
			[]vg.Point{{X: x - half, Y: hi}, {X: x + half, Y: hi}},
		)...)
	}
}

func (b *bars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, p := range b.Points {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Lo), math.Max(ymax, p.Hi)
	}
	return
}

func (b *bars) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(b.Color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y}, {X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y}, {X: c.Max.X, Y: c.Min.Y},
	})
}

// refLines draws labeled vertical lines across the whole plot area.
type refLines struct {
	Refs  []RefLine
	Style draw.LineStyle
}

func (r *refLines) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	sty := plt.X.Tick.Label
	for i, ref := range r.Refs {
		if !(ref.X >= plt.X.Min && ref.X <= plt.X.Max) {
			continue
		}
		x := trX(ref.X)
		if !c.ContainsX(x) {
			continue
		}
		c.StrokeLine2(r.Style, x, c.Min.Y, x, c.Max.Y)
		// Stagger labels so neighboring lines stay readable.
		y := c.Max.Y - sty.Font.Size*vg.Length(1+i%3)
		c.FillText(sty, vg.Point{X: x + vg.Points(2), Y: y}, ref.Label)
	}
}

// log2Ticks places major ticks at powers of two. Ranges holding fewer
// than two powers of two fall back to the default ticks.
type log2Ticks struct {
	format func(float64) string
}

const maxLabels = 8

func (t log2Ticks) Ticks(min, max float64) []plot.Tick {
	if !(min > 0) || !(max > min) {
		return nil
	}
	lo, hi := math.Ceil(math.Log2(min)), math.Floor(math.Log2(max))
	if hi-lo < 1 {
		var ticks []plot.Tick
		for _, tk := range relabel(plot.DefaultTicks{}.Ticks(min, max), t.format) {
			if tk.Value >= min && tk.Value <= max {
				ticks = append(ticks, tk)
			}
		}
		return ticks
	}
	step := int(math.Ceil((hi - lo + 1) / maxLabels))
	var ticks []plot.Tick
	for e := lo; e <= hi; e++ {
		v := math.Exp2(e)
		tk := plot.Tick{Value: v}
		if int(e-lo)%step == 0 {
			tk.Label = t.format(v)
		}
		ticks = append(ticks, tk)
	}
	return ticks
}

func relabel(ticks []plot.Tick, format func(float64) string) []plot.Tick {
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = format(ticks[i].Value)
		}
	}
	return ticks
}

var percentTicks = plot.TickerFunc(func(min, max float64) []plot.Tick {
	return relabel(plot.DefaultTicks{}.Ticks(min, max), formatPercent)
})

func formatPercent(v float64) string {
	return fmt.Sprintf("%.4g%%", v*100)
}

// formatCount labels counts and times with an SI prefix.
func formatCount(v float64) string {
	return benchunit.Scale(v, benchunit.Decimal)
}

func formatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
