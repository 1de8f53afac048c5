// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterproc

import (
	"errors"
	"math"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"

	"github.com/cachelab/counterstat/counterfmt"
)

// ErrEmpty is returned when summarizing a table with no rows.
var ErrEmpty = errors.New("no rows to summarize")

// SummaryKeys is the grouping key of the summary table.
var SummaryKeys = []string{counterfmt.ColSize, counterfmt.ColPart, counterfmt.ColScenario, counterfmt.ColKind}

// StdSuffix is appended to a metric name to form the name of its
// standard deviation column.
const StdSuffix = "_std"

// Summarize groups t by keys and computes the mean and sample
// standard deviation of each metric in every group. The result has
// one row per group, sorted by keys, with a column named after each
// metric holding its mean and a column with StdSuffix appended
// holding its standard deviation. The standard deviation of a group
// with a single row is NaN.
//
// The result may carry additional columns that happen to be constant
// within every group. Use SummaryColumns to select a stable set.
func Summarize(t *table.Table, keys, metrics []string) (*table.Table, error) {
	for _, k := range keys {
		if t.Column(k) == nil {
			return nil, &ColumnError{k, "missing"}
		}
	}
	var aggs []ggstat.Aggregator
	for _, m := range metrics {
		if err := checkFloat(t, m); err != nil {
			return nil, err
		}
		aggs = append(aggs, aggFn(m, "", stats.Mean), aggFn(m, StdSuffix, stdDev))
	}
	if t.Len() == 0 {
		return nil, ErrEmpty
	}
	agg := ggstat.Agg(keys...)(aggs...).F(t)
	return SortBy(table.Flatten(agg), keys...)
}

// SummaryColumns returns the columns of a Summarize result in their
// persisted order: the keys, then each metric followed by its
// standard deviation.
func SummaryColumns(keys, metrics []string) []string {
	cols := append([]string(nil), keys...)
	for _, m := range metrics {
		cols = append(cols, m, m+StdSuffix)
	}
	return cols
}

// stdDev returns the sample standard deviation of xs, or NaN if xs
// has fewer than two values.
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stats.StdDev(xs)
}

// aggFn returns an aggregator that applies f to column col of each
// group and stores the result in column col+suffix.
func aggFn(col, suffix string, f func([]float64) float64) ggstat.Aggregator {
	return func(input table.Grouping, b *table.Builder) {
		out := make([]float64, 0, len(input.Tables()))
		var xs []float64
		for _, gid := range input.Tables() {
			slice.Convert(&xs, input.Table(gid).MustColumn(col))
			out = append(out, f(xs))
		}
		b.Add(col+suffix, out)
	}
}
