// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package countermath

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrLengthMismatch is returned when paired samples differ in length.
var ErrLengthMismatch = errors.New("paired samples have different lengths")

// A Correlation is a correlation coefficient with the two-sided
// p-value of the null hypothesis of no association.
type Correlation struct {
	N    int
	Coef float64
	P    float64
}

func nanCorrelation(n int) Correlation {
	return Correlation{N: n, Coef: math.NaN(), P: math.NaN()}
}

func checkPaired(x, y []float64) error {
	if len(x) != len(y) {
		return ErrLengthMismatch
	}
	if len(x) < 3 {
		return ErrSampleSize
	}
	return nil
}

// Pearson returns the Pearson product-moment correlation of x and y.
// The p-value uses the t distribution with n-2 degrees of freedom.
func Pearson(x, y []float64) (Correlation, error) {
	if err := checkPaired(x, y); err != nil {
		return nanCorrelation(len(x)), err
	}
	return pearson(x, y)
}

func pearson(x, y []float64) (Correlation, error) {
	c := nanCorrelation(len(x))
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return c, ErrZeroVariance
	}
	r = math.Max(-1, math.Min(1, r))
	c.Coef = r
	if math.Abs(r) == 1 {
		c.P = 0
		return c, nil
	}
	df := float64(len(x) - 2)
	t := r * math.Sqrt(df/(1-r*r))
	c.P = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(-math.Abs(t))
	return c, nil
}

// Spearman returns Spearman's rank correlation of x and y: the
// Pearson correlation of their ranks, with tied values given their
// average rank.
func Spearman(x, y []float64) (Correlation, error) {
	if err := checkPaired(x, y); err != nil {
		return nanCorrelation(len(x)), err
	}
	return pearson(ranks(x), ranks(y))
}

// ranks returns the 1-based ranks of xs, averaging ties.
func ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return xs[idx[i]] < xs[idx[j]] })
	r := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && xs[idx[j]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for _, k := range idx[i:j] {
			r[k] = avg
		}
		i = j
	}
	return r
}

// Kendall returns Kendall's tau-b of x and y, which corrects for
// ties. Without ties and for at most maxExactKendall pairs of values,
// the p-value is exact. Otherwise it uses the normal approximation
// with the variance adjusted for ties.
func Kendall(x, y []float64) (Correlation, error) {
	c := nanCorrelation(len(x))
	if err := checkPaired(x, y); err != nil {
		return c, err
	}

	n := len(x)
	var conc, disc, tiesX, tiesY float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx, dy := sign(x[i]-x[j]), sign(y[i]-y[j])
			switch {
			case dx == 0 && dy == 0:
				tiesX++
				tiesY++
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case dx == dy:
				conc++
			default:
				disc++
			}
		}
	}
	pairs := float64(n) * float64(n-1) / 2
	denom := math.Sqrt((pairs - tiesX) * (pairs - tiesY))
	if denom == 0 {
		return c, ErrZeroVariance
	}
	c.Coef = (conc - disc) / denom

	if tiesX == 0 && tiesY == 0 && n <= maxExactKendall {
		c.P = kendallExactP(n, int(math.Min(disc, pairs-disc)))
		return c, nil
	}

	tx, ty := tieGroups(x), tieGroups(y)
	fn := float64(n)
	v0 := fn * (fn - 1) * (2*fn + 5)
	var vt, vu, t1, u1, t2, u2 float64
	for _, t := range tx {
		vt += t * (t - 1) * (2*t + 5)
		t1 += t * (t - 1)
		t2 += t * (t - 1) * (t - 2)
	}
	for _, u := range ty {
		vu += u * (u - 1) * (2*u + 5)
		u1 += u * (u - 1)
		u2 += u * (u - 1) * (u - 2)
	}
	variance := (v0-vt-vu)/18 + t1*u1/(2*fn*(fn-1)) + t2*u2/(9*fn*(fn-1)*(fn-2))
	z := (conc - disc) / math.Sqrt(variance)
	c.P = 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	return c, nil
}

const maxExactKendall = 33

// kendallExactP returns the two-sided probability that a random
// permutation of n values has at most d inversions or at most d
// non-inversions.
func kendallExactP(n, d int) float64 {
	// counts[k] is the number of permutations with k inversions.
	counts := []float64{1}
	for m := 2; m <= n; m++ {
		next := make([]float64, len(counts)+m-1)
		for k, c := range counts {
			for j := 0; j < m; j++ {
				next[k+j] += c
			}
		}
		counts = next
	}
	var tail, total float64
	for k, c := range counts {
		if k <= d {
			tail += c
		}
		total += c
	}
	return math.Min(1, 2*tail/total)
}

// tieGroups returns the sizes of the groups of equal values in xs
// that have more than one member.
func tieGroups(xs []float64) []float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	var out []float64
	for i := 0; i < len(s); {
		j := i + 1
		for j < len(s) && s[j] == s[i] {
			j++
		}
		if j-i > 1 {
			out = append(out, float64(j-i))
		}
		i = j
	}
	return out
}

func sign(x float64) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
