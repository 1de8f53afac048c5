// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package countermath

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/mathext"
)

// An ANOVAResult is the result of a one-way analysis of variance.
type ANOVAResult struct {
	// Groups is the number of groups and N the total number of
	// observations.
	Groups, N int

	// F is the ratio of the between-group to the within-group mean
	// square.
	F float64

	// DFBetween and DFWithin are the degrees of freedom of the
	// numerator and denominator of F.
	DFBetween, DFWithin int

	// MSWithin is the within-group mean square, the pooled
	// variance estimate.
	MSWithin float64

	// P is the probability of an F at least this large if all
	// groups have the same mean.
	P float64
}

// OneWayANOVA tests the null hypothesis that every group has the same
// mean. There must be at least two groups, every group must be
// non-empty, and there must be more observations than groups.
func OneWayANOVA(groups [][]float64) (ANOVAResult, error) {
	res := ANOVAResult{Groups: len(groups), F: math.NaN(), MSWithin: math.NaN(), P: math.NaN()}
	if len(groups) < 2 {
		return res, ErrSampleSize
	}
	var all []float64
	for _, g := range groups {
		if len(g) == 0 {
			return res, ErrSampleSize
		}
		all = append(all, g...)
	}
	res.N = len(all)
	res.DFBetween = len(groups) - 1
	res.DFWithin = res.N - len(groups)
	if res.DFWithin < 1 {
		return res, ErrSampleSize
	}

	grand := stats.Mean(all)
	var ssb, ssw float64
	for _, g := range groups {
		m := stats.Mean(g)
		ssb += float64(len(g)) * (m - grand) * (m - grand)
		for _, x := range g {
			ssw += (x - m) * (x - m)
		}
	}
	res.MSWithin = ssw / float64(res.DFWithin)
	if ssw == 0 {
		return res, ErrZeroVariance
	}
	res.F = (ssb / float64(res.DFBetween)) / res.MSWithin
	res.P = fSurvival(res.F, float64(res.DFBetween), float64(res.DFWithin))
	return res, nil
}

// fSurvival returns P(X > f) for X ~ F(d1, d2).
func fSurvival(f, d1, d2 float64) float64 {
	if f <= 0 {
		return 1
	}
	return mathext.RegIncBeta(d2/2, d1/2, d2/(d2+d1*f))
}
