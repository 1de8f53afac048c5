// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterchart

import (
	"fmt"

	"github.com/aclements/go-gg/table"

	"github.com/cachelab/counterstat/counterfmt"
	"github.com/cachelab/counterstat/counterproc"
	"github.com/cachelab/counterstat/countermath"
)

// A Scope is the subset of measurements drawn on one set of charts.
type Scope struct {
	Name     string
	Part     string
	Scenario string
	Table    *table.Table
}

// Scopes partitions t into one scope per (part, scenario). Scopes are
// named after the scenario, or "part-scenario" if t holds more than
// one part.
func Scopes(t *table.Table) []Scope {
	parts := counterproc.GroupBy(t, counterfmt.ColPart).Len()
	gs := counterproc.GroupBy(t, counterfmt.ColPart, counterfmt.ColScenario)
	var scopes []Scope
	for _, k := range gs.Keys() {
		sc := Scope{
			Part:     fmt.Sprint(k[0]),
			Scenario: fmt.Sprint(k[1]),
			Table:    gs.Table(k),
		}
		sc.Name = sc.Scenario
		if parts > 1 {
			sc.Name = sc.Part + "-" + sc.Scenario
		}
		scopes = append(scopes, sc)
	}
	return scopes
}

// BuildSeries summarizes metric over t with one series per distinct
// value of seriesCol and one point per size.
func BuildSeries(t *table.Table, seriesCol, metric string, extent Extent, confidence float64) ([]Series, error) {
	if _, err := counterproc.Values(t, metric); err != nil {
		return nil, err
	}
	gs := counterproc.GroupBy(t, seriesCol, counterfmt.ColSize)
	var out []Series
	for _, k := range gs.Keys() {
		size, ok := k[1].(int)
		if !ok {
			return nil, &counterproc.ColumnError{Col: counterfmt.ColSize, Msg: fmt.Sprintf("has type %T, want int", k[1])}
		}
		xs, err := counterproc.Values(gs.Table(k), metric)
		if err != nil {
			return nil, err
		}
		s := countermath.Sample{Xs: xs}
		var p Point
		p.Size = size
		switch extent {
		case StdDev:
			p.Mean, p.Lo, p.Hi = s.MeanStdDev()
		case CI:
			p.Mean, p.Lo, p.Hi = s.MeanCI(confidence)
		default:
			return nil, fmt.Errorf("unknown extent %v", extent)
		}
		name := fmt.Sprint(k[0])
		if len(out) == 0 || out[len(out)-1].Name != name {
			out = append(out, Series{Name: name})
		}
		out[len(out)-1].Points = append(out[len(out)-1].Points, p)
	}
	return out, nil
}
