// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package countermath provides the statistical tests used to compare
// distributions of hardware counter measurements.
//
// Tests that cannot be computed from their input return an error
// along with a result whose statistics are NaN. Callers typically
// record the NaN and report the error as a warning.
package countermath

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"golang.org/x/perf/benchmath"
)

var (
	// ErrSampleSize is returned when a sample is too small for a test.
	ErrSampleSize = stats.ErrSampleSize

	// ErrZeroVariance is returned when a test statistic is undefined
	// because its samples have no variance.
	ErrZeroVariance = stats.ErrZeroVariance
)

// A Sample is a set of repeated measurements of one metric.
type Sample struct {
	Xs []float64
}

// Mean returns the arithmetic mean of s.
func (s Sample) Mean() float64 {
	return stats.Mean(s.Xs)
}

// StdDev returns the sample standard deviation of s.
func (s Sample) StdDev() float64 {
	return stats.StdDev(s.Xs)
}

// MeanCI returns the mean of s and the bounds of the t-based
// confidence interval around it. Confidence is in the range (0, 1),
// e.g., 0.95 for 95% confidence. With fewer than two values the
// interval collapses to the mean.
func (s Sample) MeanCI(confidence float64) (mean, lo, hi float64) {
	mean = s.Mean()
	if len(s.Xs) < 2 {
		return mean, mean, mean
	}
	// NewSample sorts its argument.
	xs := append([]float64(nil), s.Xs...)
	sum := benchmath.AssumeNormal.Summary(benchmath.NewSample(xs, &benchmath.DefaultThresholds), confidence)
	if math.IsNaN(sum.Lo) || math.IsNaN(sum.Hi) {
		return mean, mean, mean
	}
	return sum.Center, sum.Lo, sum.Hi
}

// MeanStdDev returns the mean of s and the bounds one sample standard
// deviation either side of it.
func (s Sample) MeanStdDev() (mean, lo, hi float64) {
	mean = s.Mean()
	if len(s.Xs) < 2 {
		return mean, mean, mean
	}
	sd := s.StdDev()
	return mean, mean - sd, mean + sd
}
