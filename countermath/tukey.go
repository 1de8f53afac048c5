// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package countermath

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// A Group is a labeled sample taking part in a multiple comparison.
type Group struct {
	Label string
	Xs    []float64
}

// A TukeyPair is the result of comparing two groups in Tukey's honest
// significant difference test.
type TukeyPair struct {
	A, B string

	// Diff is mean(B) - mean(A).
	Diff float64

	// Q is the studentized range statistic of the pair.
	Q float64

	// P is the adjusted p-value of the null hypothesis that A and
	// B have the same mean.
	P float64
}

// Label returns the pair's label, "A - B".
func (p TukeyPair) Label() string {
	return p.A + " - " + p.B
}

// TukeyHSD compares every pair of groups, in input order, using
// Tukey's honest significant difference test with the Tukey-Kramer
// adjustment for unequal group sizes.
//
// If the pooled variance is zero, TukeyHSD returns the pairs with NaN
// statistics and ErrZeroVariance.
func TukeyHSD(groups []Group) ([]TukeyPair, error) {
	xs := make([][]float64, len(groups))
	for i, g := range groups {
		xs[i] = g.Xs
	}
	anova, err := OneWayANOVA(xs)
	if err == ErrSampleSize {
		return nil, err
	}

	pairs := make([]TukeyPair, 0, len(groups)*(len(groups)-1)/2)
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			a, b := groups[i], groups[j]
			p := TukeyPair{A: a.Label, B: b.Label, Diff: stats.Mean(b.Xs) - stats.Mean(a.Xs), Q: math.NaN(), P: math.NaN()}
			if err == nil {
				se := math.Sqrt(anova.MSWithin / 2 * (1/float64(len(a.Xs)) + 1/float64(len(b.Xs))))
				p.Q = math.Abs(p.Diff) / se
				p.P = clamp01(1 - StudentizedRangeCDF(p.Q, len(groups), float64(anova.DFWithin)))
			}
			pairs = append(pairs, p)
		}
	}
	return pairs, err
}
