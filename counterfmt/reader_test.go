// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterfmt

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleCSV = `wall_clock, cpu_cycles, note
1,10,warmup
2,20,warmup
3,30,run
4,40,run
`

func TestReader(t *testing.T) {
	name := Name{Part: "p", Scenario: "s", Kind: "k", Size: 8}
	rd := Reader{Skip: 2}
	tab, err := rd.Read(strings.NewReader(sampleCSV), "p.s-k-8.csv", name)
	if err != nil {
		t.Fatal(err)
	}

	wantCols := []string{"wall_clock", "cpu_cycles", "note", ColPart, ColScenario, ColKind, ColSize, ColTest}
	if diff := cmp.Diff(wantCols, tab.Columns()); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if tab.Len() != 2 {
		t.Fatalf("got %d rows, want 2", tab.Len())
	}
	if diff := cmp.Diff([]float64{3, 4}, tab.Column("wall_clock")); diff != "" {
		t.Errorf("wall_clock (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"run", "run"}, tab.Column("note")); diff != "" {
		t.Errorf("note (-want +got):\n%s", diff)
	}
	for col, want := range map[string]interface{}{
		ColPart: "p", ColScenario: "s", ColKind: "k", ColSize: 8, ColTest: "s-k",
	} {
		got, ok := tab.Const(col)
		if !ok || got != want {
			t.Errorf("const %s = %v, %v; want %v", col, got, ok, want)
		}
	}
}

func TestReaderSkipAll(t *testing.T) {
	rd := Reader{Skip: DefaultSkip}
	tab, err := rd.Read(strings.NewReader(sampleCSV), "", Name{"p", "s", "k", 1})
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 0 {
		t.Errorf("got %d rows, want 0", tab.Len())
	}
	if _, ok := tab.Column("wall_clock").([]float64); !ok {
		t.Errorf("empty numeric column has type %T, want []float64", tab.Column("wall_clock"))
	}
}

func TestReaderErrors(t *testing.T) {
	check := func(input, wantErr string) {
		t.Helper()
		var rd Reader
		_, err := rd.Read(strings.NewReader(input), "f.csv", Name{"p", "s", "k", 1})
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("got error %v, want *SyntaxError", err)
			return
		}
		if err.Error() != wantErr {
			t.Errorf("got error %q, want %q", err, wantErr)
		}
	}
	check("", "f.csv:1: missing header line")
	check("a,a\n1,2\n", `f.csv:1: duplicate column "a"`)
	check("a,,b\n", "f.csv:1: column 2 has an empty name")
	check("a,size\n1,2\n", `f.csv:1: column "size" collides with a tag column`)
	check("a,b\n1,2\n3\n", "f.csv:3: wrong number of fields")
}
