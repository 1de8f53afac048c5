// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package countermath

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// For two groups the studentized range reduces to |t| * sqrt(2).
func twoGroupRangeCDF(q, df float64) float64 {
	return 2*distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(q/math.Sqrt2) - 1
}

func TestStudentizedRangeCDF(t *testing.T) {
	check := func(q float64, k int, df, want, tol float64) {
		t.Helper()
		got := StudentizedRangeCDF(q, k, df)
		if !near(got, want, tol) {
			t.Errorf("StudentizedRangeCDF(%v, %d, %v) = %v, want %v", q, k, df, got, want)
		}
	}
	for _, df := range []float64{2, 5, 10, 30, 120} {
		for _, q := range []float64{0.5, 1, 2, 3, 5} {
			check(q, 2, df, twoGroupRangeCDF(q, df), 1e-3)
		}
	}
	// Infinite df is the range of standard normals.
	n := distuv.UnitNormal
	check(2, 2, math.Inf(1), 2*n.CDF(2/math.Sqrt2)-1, 1e-6)

	// Upper 5% points of the studentized range.
	check(3.877, 3, 10, 0.95, 2e-3)
	check(4.327, 4, 10, 0.95, 2e-3)
	check(3.356, 3, 120, 0.95, 2e-3)

	check(0, 3, 10, 0, 0)
	if got := StudentizedRangeCDF(1, 1, 10); !math.IsNaN(got) {
		t.Errorf("k=1: got %v, want NaN", got)
	}
}

func TestStudentizedRangeCDFMonotone(t *testing.T) {
	prev := 0.0
	for q := 0.25; q < 8; q += 0.25 {
		p := StudentizedRangeCDF(q, 5, 12)
		if p < prev-1e-9 {
			t.Fatalf("CDF decreased at q=%v: %v < %v", q, p, prev)
		}
		prev = p
	}
}

func TestTukeyHSD(t *testing.T) {
	pairs, err := TukeyHSD([]Group{
		{"a", []float64{1, 2, 3}},
		{"b", []float64{4, 5, 6}},
		{"c", []float64{4.5, 5.5, 6.5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	labels := []string{"a - b", "a - c", "b - c"}
	for i, p := range pairs {
		if p.Label() != labels[i] {
			t.Errorf("pair %d label = %q, want %q", i, p.Label(), labels[i])
		}
		if !(p.P >= 0 && p.P <= 1) {
			t.Errorf("pair %s P = %v, want in [0, 1]", p.Label(), p.P)
		}
	}
	if pairs[0].Diff != 3 {
		t.Errorf("a - b diff = %v, want 3", pairs[0].Diff)
	}
	// MSW = 1, so q = |diff| / sqrt(1/3).
	if !near(pairs[0].Q, 3*math.Sqrt(3), 1e-12) {
		t.Errorf("a - b q = %v, want %v", pairs[0].Q, 3*math.Sqrt(3))
	}
	if !(pairs[0].P < 0.05 && pairs[2].P > 0.5) {
		t.Errorf("P(a - b) = %v, P(b - c) = %v; want significant and not", pairs[0].P, pairs[2].P)
	}
}

func TestTukeyHSDTwoGroups(t *testing.T) {
	// With two groups Tukey's test is the pooled two-sample t-test.
	pairs, err := TukeyHSD([]Group{
		{"x", []float64{1, 2, 3}},
		{"y", []float64{4, 5, 6}},
	})
	if err != nil {
		t.Fatal(err)
	}
	q := 3 * math.Sqrt(3)
	want := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 4}.CDF(-q/math.Sqrt2)
	if !near(pairs[0].P, want, 1e-3) {
		t.Errorf("P = %v, want %v", pairs[0].P, want)
	}
}

func TestTukeyHSDErrors(t *testing.T) {
	if _, err := TukeyHSD([]Group{{"a", []float64{1, 2}}}); err != ErrSampleSize {
		t.Errorf("one group: got %v, want %v", err, ErrSampleSize)
	}
	pairs, err := TukeyHSD([]Group{{"a", []float64{1, 1}}, {"b", []float64{2, 2}}})
	if err != ErrZeroVariance {
		t.Errorf("zero variance: got %v, want %v", err, ErrZeroVariance)
	}
	if len(pairs) != 1 || !math.IsNaN(pairs[0].P) {
		t.Errorf("zero variance pairs = %v, want one NaN pair", pairs)
	}
}
