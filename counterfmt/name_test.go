// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterfmt

import (
	"errors"
	"testing"
)

func TestParseName(t *testing.T) {
	check := func(file string, want Name) {
		t.Helper()
		got, err := ParseName(file)
		if err != nil {
			t.Errorf("%s: unexpected error %v", file, err)
			return
		}
		if got != want {
			t.Errorf("%s: got %+v, want %+v", file, got, want)
		}
	}
	checkErr := func(file string) {
		t.Helper()
		_, err := ParseName(file)
		var nerr *NameError
		if !errors.As(err, &nerr) {
			t.Errorf("%s: got error %v, want *NameError", file, err)
		}
	}

	want := Name{Part: "Part", Scenario: "Scenario", Kind: "Kind", Size: 128}
	check("Part.Scenario-Kind-128.csv", want)
	check("Part.Scenario-Kind-128-extra.csv", want)
	check("/some/dir/Part.Scenario-Kind-128.csv", want)
	check("p.loop-aos-0.csv", Name{"p", "loop", "aos", 0})

	checkErr("Part.Scenario-Kind.csv")
	checkErr("Part.Scenario.csv")
	checkErr("Part.a-b-c-d-e.csv")
	checkErr("Part.Scenario-Kind-big.csv")
	checkErr("Part.Scenario-Kind--1.csv")
	checkErr("Part.Scenario-Kind-1.tar.csv")
	checkErr("nodots")
	checkErr(".Scenario-Kind-1.csv")
	checkErr("Part.-Kind-1.csv")
}

func TestNameTest(t *testing.T) {
	n := Name{Part: "p", Scenario: "branchy", Kind: "sorted", Size: 64}
	if got, want := n.Test(), "branchy-sorted"; got != want {
		t.Errorf("Test() = %q, want %q", got, want)
	}
	if got, want := n.String(), "p.branchy-sorted-64.csv"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
