// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterproc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cachelab/counterstat/counterfmt"
)

func TestGroupBy(t *testing.T) {
	gs := GroupBy(measurements(), counterfmt.ColScenario, counterfmt.ColSize)
	want := []Key{{"r", 16}, {"s", 16}, {"s", 32}}
	if diff := cmp.Diff(want, gs.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}

	tab, err := gs.Lookup("s", 16)
	if err != nil {
		t.Fatal(err)
	}
	xs, err := Values(tab, "wall_clock")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{10, 20, 30}, xs); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
	if gs.Table(Key{"r", 16}) == nil {
		t.Errorf("Table(r/16) = nil")
	}
}

func TestLookupMissing(t *testing.T) {
	gs := GroupBy(measurements(), counterfmt.ColScenario, counterfmt.ColKind)
	check := func(vals ...interface{}) {
		t.Helper()
		_, err := gs.Lookup(vals...)
		var merr *MissingGroupError
		if !errors.As(err, &merr) {
			t.Errorf("Lookup(%v): got %v, want *MissingGroupError", vals, err)
		}
	}
	check("s", "B")
	check("q", "A")
	// Values of the wrong type never match.
	check("s", 1)

	_, err := gs.Lookup("r", "C")
	if want := "no rows for scenario=r kind=C"; err == nil || err.Error() != want {
		t.Errorf("got error %v, want %q", err, want)
	}
}

func TestDistinct(t *testing.T) {
	got, err := Distinct(measurements(), counterfmt.ColSize)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Key{16, 32}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, err := Distinct(measurements(), "missing"); err == nil {
		t.Errorf("Distinct of missing column: want error")
	}
}

func TestTitle(t *testing.T) {
	check := func(col, want string) {
		t.Helper()
		if got := Title(col); got != want {
			t.Errorf("Title(%q) = %q, want %q", col, got, want)
		}
	}
	check("cache_miss_rate", "Cache miss rate")
	check("inst_per_cycle", "Inst per cycle")
	check("", "")
}
