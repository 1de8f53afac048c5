// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package countermath

import (
	"math"
	"testing"
)

func TestWelchTTestSymmetric(t *testing.T) {
	a := []float64{10, 11, 12, 13, 11.5}
	b := []float64{14, 15, 13.5, 16, 17, 15.5}
	ab, err := WelchTTest(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := WelchTTest(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if ab.P != ba.P {
		t.Errorf("P(a, b) = %v, P(b, a) = %v; want equal", ab.P, ba.P)
	}
	if ab.T != -ba.T {
		t.Errorf("T(a, b) = %v, T(b, a) = %v; want negated", ab.T, ba.T)
	}
	if !(ab.P > 0 && ab.P < 0.01) {
		t.Errorf("P = %v, want a small p-value", ab.P)
	}
	if ab.N1 != 5 || ab.N2 != 6 {
		t.Errorf("N = %d+%d, want 5+6", ab.N1, ab.N2)
	}
}

func TestWelchTTestErrors(t *testing.T) {
	check := func(a, b []float64, want error) {
		t.Helper()
		res, err := WelchTTest(a, b)
		if err != want {
			t.Errorf("WelchTTest(%v, %v) error = %v, want %v", a, b, err, want)
		}
		if !math.IsNaN(res.P) {
			t.Errorf("WelchTTest(%v, %v) P = %v, want NaN", a, b, res.P)
		}
	}
	check([]float64{1}, []float64{1, 2}, ErrSampleSize)
	check([]float64{1, 1}, []float64{2, 2}, ErrZeroVariance)
}
