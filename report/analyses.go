// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aclements/go-gg/table"

	"github.com/cachelab/counterstat/counterfmt"
	"github.com/cachelab/counterstat/countermath"
	"github.com/cachelab/counterstat/counterproc"
)

// An artifact is a CSV table produced by an analysis.
type artifact struct {
	name    string
	records [][]string
}

func sizeOf(k counterproc.Key, i int) (int, error) {
	size, ok := k[i].(int)
	if !ok {
		return 0, &counterproc.ColumnError{Col: counterfmt.ColSize, Msg: fmt.Sprintf("has type %T, want int", k[i])}
	}
	return size, nil
}

func nanIf(err error, v float64) float64 {
	if err != nil {
		return math.NaN()
	}
	return v
}

func mean(t *table.Table, col string) (float64, error) {
	xs, err := counterproc.Values(t, col)
	if err != nil {
		return 0, err
	}
	return countermath.Sample{Xs: xs}.Mean(), nil
}

// layout compares kinds[0] against kinds[1] for every (part,
// scenario, size) present in t. It returns one t-test table per
// metric and the relative difference of the mean time.
func layout(cfg *Config, t *table.Table, metrics []counterproc.Metric) ([]artifact, error) {
	a, b := cfg.Kinds[0], cfg.Kinds[1]
	kinds := counterproc.GroupBy(t, counterfmt.ColPart, counterfmt.ColScenario, counterfmt.ColSize, counterfmt.ColKind)
	cells := counterproc.GroupBy(t, counterfmt.ColPart, counterfmt.ColScenario, counterfmt.ColSize)

	pvals := make([]*sizeMatrix, len(metrics))
	for i := range pvals {
		pvals[i] = newSizeMatrix(counterfmt.ColPart, counterfmt.ColScenario)
	}
	rel := newSizeMatrix(counterfmt.ColPart, counterfmt.ColScenario)

	for _, k := range cells.Keys() {
		size, err := sizeOf(k, 2)
		if err != nil {
			return nil, err
		}
		ta, err := kinds.Lookup(k[0], k[1], k[2], a)
		if err != nil {
			return nil, fmt.Errorf("comparing %s with %s: %w", a, b, err)
		}
		tb, err := kinds.Lookup(k[0], k[1], k[2], b)
		if err != nil {
			return nil, fmt.Errorf("comparing %s with %s: %w", a, b, err)
		}
		row := []string{fmt.Sprint(k[0]), fmt.Sprint(k[1])}

		for i, m := range metrics {
			xa, err := counterproc.Values(ta, m.Col)
			if err != nil {
				return nil, err
			}
			xb, err := counterproc.Values(tb, m.Col)
			if err != nil {
				return nil, err
			}
			res, err := countermath.WelchTTest(xa, xb)
			if err != nil {
				cfg.warn("%s %s size %d: t-test of %s: %v\n", k[0], k[1], size, m.Col, err)
			}
			pvals[i].set(row, size, res.P)
		}

		ma, err := mean(ta, cfg.TimeCol)
		if err != nil {
			return nil, err
		}
		mb, err := mean(tb, cfg.TimeCol)
		if err != nil {
			return nil, err
		}
		rel.set(row, size, countermath.RelDiff(mb, ma, cfg.RelDiff))
	}

	var out []artifact
	for i, m := range metrics {
		out = append(out, artifact{m.Col + "-ttest-pvalue.csv", pvals[i].records()})
	}
	out = append(out, artifact{"layout-reldiff.csv", rel.records()})
	return out, nil
}

// testGroups returns the samples of col for each test of t, in test
// order.
func testGroups(t *table.Table, col string) ([]countermath.Group, error) {
	gs := counterproc.GroupBy(t, counterfmt.ColTest)
	groups := make([]countermath.Group, 0, gs.Len())
	for _, k := range gs.Keys() {
		xs, err := counterproc.Values(gs.Table(k), col)
		if err != nil {
			return nil, err
		}
		groups = append(groups, countermath.Group{Label: fmt.Sprint(k[0]), Xs: xs})
	}
	return groups, nil
}

// compareTests runs a one-way ANOVA and Tukey's HSD across tests for
// every (part, size) of t and every metric.
func compareTests(cfg *Config, t *table.Table, metrics []counterproc.Metric) ([]artifact, error) {
	cells := counterproc.GroupBy(t, counterfmt.ColPart, counterfmt.ColSize)

	anova := make([][][]string, len(metrics))
	tukey := make([]*sizeMatrix, len(metrics))
	for i := range metrics {
		anova[i] = [][]string{{counterfmt.ColPart, counterfmt.ColSize, "groups", "f", "p"}}
		tukey[i] = newSizeMatrix(counterfmt.ColPart, "pair")
	}

	for _, k := range cells.Keys() {
		size, err := sizeOf(k, 1)
		if err != nil {
			return nil, err
		}
		part := fmt.Sprint(k[0])
		ct := cells.Table(k)
		for i, m := range metrics {
			groups, err := testGroups(ct, m.Col)
			if err != nil {
				return nil, err
			}
			if len(groups) < 2 {
				if i == 0 {
					cfg.warn("%s size %d: only %d test, skipping ANOVA and Tukey\n", part, size, len(groups))
				}
				continue
			}

			res, err := countermath.OneWayANOVA(groupXs(groups))
			if err != nil {
				cfg.warn("%s size %d: ANOVA of %s: %v\n", part, size, m.Col, err)
			}
			anova[i] = append(anova[i], []string{part, strconv.Itoa(size), strconv.Itoa(len(groups)), formatFloat(nanIf(err, res.F)), formatFloat(nanIf(err, res.P))})

			pairs, err := countermath.TukeyHSD(groups)
			if err != nil {
				cfg.warn("%s size %d: Tukey HSD of %s: %v\n", part, size, m.Col, err)
			}
			for _, p := range pairs {
				tukey[i].set([]string{part, p.Label()}, size, p.P)
			}
		}
	}

	var out []artifact
	for i, m := range metrics {
		out = append(out, artifact{m.Col + "-anova.csv", anova[i]})
	}
	for i, m := range metrics {
		out = append(out, artifact{m.Col + "-tukey.csv", tukey[i].records()})
	}
	return out, nil
}

func groupXs(groups []countermath.Group) [][]float64 {
	xs := make([][]float64, len(groups))
	for i, g := range groups {
		xs[i] = g.Xs
	}
	return xs
}

// correlationPairs returns the (x, y) metric pairs that are
// correlated per test.
func correlationPairs(timeCol string) [][2]string {
	return [][2]string{
		{timeCol, counterproc.ColCacheMissRate},
		{timeCol, counterproc.ColBranchMissRate},
		{counterproc.ColIPC, counterproc.ColCacheMissRate},
		{counterproc.ColIPC, counterproc.ColBranchMissRate},
	}
}

var correlationHeader = []string{
	counterfmt.ColPart, counterfmt.ColTest, "n",
	"pearson_r", "pearson_p",
	"spearman_rho", "spearman_p",
	"kendall_tau", "kendall_p",
}

// correlations computes the rank and linear correlations of each
// correlation pair per (part, test) of t.
func correlations(cfg *Config, t *table.Table) ([]artifact, error) {
	tests := counterproc.GroupBy(t, counterfmt.ColPart, counterfmt.ColTest)
	var out []artifact
	for _, pair := range correlationPairs(cfg.TimeCol) {
		tab := [][]string{correlationHeader}
		for _, k := range tests.Keys() {
			tt := tests.Table(k)
			x, err := counterproc.Values(tt, pair[0])
			if err != nil {
				return nil, err
			}
			y, err := counterproc.Values(tt, pair[1])
			if err != nil {
				return nil, err
			}
			row := []string{fmt.Sprint(k[0]), fmt.Sprint(k[1]), strconv.Itoa(len(x))}
			for _, f := range []struct {
				name string
				fn   func(x, y []float64) (countermath.Correlation, error)
			}{
				{"Pearson", countermath.Pearson},
				{"Spearman", countermath.Spearman},
				{"Kendall", countermath.Kendall},
			} {
				c, err := f.fn(x, y)
				if err != nil {
					cfg.warn("%s %s: %s correlation of %s and %s: %v\n", k[0], k[1], f.name, pair[0], pair[1], err)
				}
				row = append(row, formatFloat(nanIf(err, c.Coef)), formatFloat(nanIf(err, c.P)))
			}
			tab = append(tab, row)
		}
		out = append(out, artifact{fmt.Sprintf("Correlation-%s-%s.csv", pair[0], pair[1]), tab})
	}
	return out, nil
}

// baseline computes, per (part, size), the relative difference of
// every test's mean time against the mean time of cfg.Baseline.
func baseline(cfg *Config, t *table.Table) ([]artifact, error) {
	tests := counterproc.GroupBy(t, counterfmt.ColPart, counterfmt.ColSize, counterfmt.ColTest)
	cells := counterproc.GroupBy(t, counterfmt.ColPart, counterfmt.ColSize)
	rel := newSizeMatrix(counterfmt.ColPart, counterfmt.ColTest)

	for _, k := range cells.Keys() {
		size, err := sizeOf(k, 1)
		if err != nil {
			return nil, err
		}
		bt, err := tests.Lookup(k[0], k[1], cfg.Baseline)
		if err != nil {
			return nil, fmt.Errorf("baseline %s: %w", cfg.Baseline, err)
		}
		base, err := mean(bt, cfg.TimeCol)
		if err != nil {
			return nil, err
		}
		gs := counterproc.GroupBy(cells.Table(k), counterfmt.ColTest)
		for _, tk := range gs.Keys() {
			m, err := mean(gs.Table(tk), cfg.TimeCol)
			if err != nil {
				return nil, err
			}
			rel.set([]string{fmt.Sprint(k[0]), fmt.Sprint(tk[0])}, size, countermath.RelDiff(m, base, cfg.RelDiff))
		}
	}
	return []artifact{{"baseline-reldiff.csv", rel.records()}}, nil
}
