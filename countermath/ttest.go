// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package countermath

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// A TTestResult is the result of a two-sample t-test.
type TTestResult struct {
	N1, N2 int

	// T is the test statistic and DoF its degrees of freedom.
	T, DoF float64

	// P is the two-sided p-value.
	P float64
}

// WelchTTest performs an unequal-variance two-sample t-test of the
// null hypothesis that a and b have the same mean. Swapping a and b
// negates T and leaves P unchanged.
func WelchTTest(a, b []float64) (TTestResult, error) {
	res := TTestResult{N1: len(a), N2: len(b), T: math.NaN(), DoF: math.NaN(), P: math.NaN()}
	r, err := stats.TwoSampleWelchTTest(stats.Sample{Xs: a}, stats.Sample{Xs: b}, stats.LocationDiffers)
	if err != nil {
		return res, err
	}
	res.T, res.DoF, res.P = r.T, r.DoF, r.P
	return res, nil
}
