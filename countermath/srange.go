// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package countermath

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	rangeNodes = 128 // inner integral over z
	scaleNodes = 256 // outer integral over the scale s

	// Above this many degrees of freedom the scale distribution is
	// treated as a point mass at 1.
	largeDF = 25000
)

var (
	scaleOnce    sync.Once
	scaleX       []float64 // Legendre nodes on [-1, 1]
	scaleWeights []float64
)

// StudentizedRangeCDF returns P(Q <= q) where Q is the studentized
// range of k independent standard normal variables scaled by an
// independent chi/sqrt(df) variable with df degrees of freedom. df
// may be +Inf.
func StudentizedRangeCDF(q float64, k int, df float64) float64 {
	switch {
	case math.IsNaN(q) || k < 2 || !(df > 0):
		return math.NaN()
	case q <= 0:
		return 0
	case math.IsInf(q, 1):
		return 1
	}
	if df > largeDF {
		return normalRangeCDF(q, k)
	}

	scaleOnce.Do(func() {
		scaleX = make([]float64, scaleNodes)
		scaleWeights = make([]float64, scaleNodes)
		quad.Legendre{}.FixedLocations(scaleX, scaleWeights, -1, 1)
	})

	// The scale s = chi/sqrt(df) concentrates around 1 with
	// standard deviation about 1/sqrt(2 df).
	spread := 10 / math.Sqrt(2*df)
	lo, hi := math.Max(0, 1-spread), math.Min(8, 1+spread)
	mid, half := (lo+hi)/2, (hi-lo)/2

	logNorm := df/2*math.Log(df/2) - lgamma(df/2) + math.Ln2
	var p, mass float64
	for i, x := range scaleX {
		s := mid + half*x
		if s <= 0 {
			continue
		}
		w := scaleWeights[i] * half * math.Exp(logNorm+(df-1)*math.Log(s)-df*s*s/2)
		mass += w
		p += w * normalRangeCDF(q*s, k)
	}
	if mass == 0 {
		return math.NaN()
	}
	return clamp01(p / mass)
}

// normalRangeCDF returns P(R <= w) for the range R of k independent
// standard normal variables.
func normalRangeCDF(w float64, k int) float64 {
	if w <= 0 {
		return 0
	}
	n := distuv.UnitNormal
	f := func(z float64) float64 {
		d := n.CDF(z) - n.CDF(z-w)
		if d <= 0 {
			return 0
		}
		return n.Prob(z) * math.Pow(d, float64(k-1))
	}
	return clamp01(float64(k) * quad.Fixed(f, -8, 8, rangeNodes, quad.Legendre{}, 1))
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
