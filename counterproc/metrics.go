// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterproc

import "strings"

// DefaultTimeCol is the default name of the time column.
const DefaultTimeCol = "wall_clock"

// An AxisScale says how a metric's values are best displayed.
type AxisScale int

const (
	Linear  AxisScale = iota
	Log2              // counts and times spanning orders of magnitude
	Percent           // rates in [0, 1]
)

// A Metric describes one column analyzed by the pipeline.
type Metric struct {
	Col   string
	Title string
	Scale AxisScale
}

// Title turns a column name into a human-readable title:
// "cache_miss_rate" becomes "Cache miss rate".
func Title(col string) string {
	s := strings.ReplaceAll(col, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// SummaryMetrics returns the metrics aggregated into the summary
// table and charted per scope, given the name of the time column.
func SummaryMetrics(timeCol string, hitRate bool) []Metric {
	ms := []Metric{
		{timeCol, Title(timeCol), Log2},
		{ColCycles, Title(ColCycles), Log2},
		{ColInstructions, Title(ColInstructions), Log2},
		{ColIPC, Title(ColIPC), Linear},
		{ColCacheMissRate, Title(ColCacheMissRate), Percent},
		{ColBranchMissRate, Title(ColBranchMissRate), Percent},
	}
	if hitRate {
		ms = append(ms, Metric{ColCacheHitRate, Title(ColCacheHitRate), Percent})
	}
	return ms
}

// Cols returns the column names of ms.
func Cols(ms []Metric) []string {
	cols := make([]string, len(ms))
	for i, m := range ms {
		cols[i] = m.Col
	}
	return cols
}
