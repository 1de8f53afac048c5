// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cachelab/counterstat/counterfmt"
	"github.com/cachelab/counterstat/countermath"
	"github.com/cachelab/counterstat/counterproc"
)

const header = "wall_clock,cpu_cycles,instructions,cache_references,cache_misses,branch_instructions,branch_misses\n"

// results returns three measurement rows whose times are base,
// base+10 and base+20.
func results(base float64) string {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < counterfmt.DefaultSkip; i++ {
		b.WriteString("0,0,0,0,0,0,0\n")
	}
	for i := 0; i < 3; i++ {
		w := base + 10*float64(i)
		f := float64(i)
		fmt.Fprintf(&b, "%g,%g,%g,%g,%g,%g,%g\n", w, 100*w, 200*w+50*f*f, 1000.0, 10*w+f, 500.0, 5+f*w/10)
	}
	return b.String()
}

// writeData writes the named result files into dir/data and returns
// dir.
func writeData(t *testing.T, files map[string]float64) string {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	if err := os.Mkdir(data, 0777); err != nil {
		t.Fatal(err)
	}
	for name, base := range files {
		if err := os.WriteFile(filepath.Join(data, name), []byte(results(base)), 0666); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func layoutData(t *testing.T) string {
	return writeData(t, map[string]float64{
		"p.seq-aos-16.csv": 10,
		"p.seq-soa-16.csv": 12,
		"p.seq-aos-32.csv": 40,
		"p.seq-soa-32.csv": 36,
	})
}

func testConfig(dir string) Config {
	cfg := DefaultConfig()
	cfg.Dir = dir
	cfg.Charts = false
	cfg.HTML = false
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func parseFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestRun(t *testing.T) {
	dir := layoutData(t)
	cfg := testConfig(dir)
	cfg.Kinds = []string{"aos", "soa"}
	cfg.Baseline = "seq-aos"
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	var want []string
	want = append(want, SummaryFile, InstructionsFile)
	cols := counterproc.Cols(res.Metrics)
	for _, m := range cols {
		want = append(want, m+"-ttest-pvalue.csv")
	}
	want = append(want, "layout-reldiff.csv")
	for _, m := range cols {
		want = append(want, m+"-anova.csv")
	}
	for _, m := range cols {
		want = append(want, m+"-tukey.csv")
	}
	want = append(want,
		"Correlation-wall_clock-cache_miss_rate.csv",
		"Correlation-wall_clock-branch_miss_rate.csv",
		"Correlation-inst_per_cycle-cache_miss_rate.csv",
		"Correlation-inst_per_cycle-branch_miss_rate.csv",
		"baseline-reldiff.csv")
	if diff := cmp.Diff(want, res.Artifacts); diff != "" {
		t.Fatalf("artifacts (-want +got):\n%s", diff)
	}
	for _, name := range want {
		if _, err := os.Stat(filepath.Join(dir, "figures", name)); err != nil {
			t.Error(err)
		}
	}

	sum := readCSV(t, filepath.Join(res.OutDir, SummaryFile))
	if diff := cmp.Diff([]string{"size", "part", "scenario", "kind", "wall_clock", "wall_clock_std"}, sum[0][:6]); diff != "" {
		t.Errorf("summary header (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"16", "p", "seq", "aos", "20", "10"}, sum[1][:6]); diff != "" {
		t.Errorf("summary row (-want +got):\n%s", diff)
	}
	if len(sum) != 5 {
		t.Errorf("summary has %d rows, want 5", len(sum))
	}

	ins := readCSV(t, filepath.Join(res.OutDir, InstructionsFile))
	if diff := cmp.Diff([]string{"size", "part", "scenario", "kind", "instructions", "instructions_std", "instructions_per_item", "instructions_per_item_std"}, ins[0]); diff != "" {
		t.Errorf("instructions header (-want +got):\n%s", diff)
	}

	rel := readCSV(t, filepath.Join(res.OutDir, "layout-reldiff.csv"))
	if diff := cmp.Diff([]string{"part", "scenario", "16", "32"}, rel[0]); diff != "" {
		t.Errorf("layout reldiff header (-want +got):\n%s", diff)
	}
	if got := parseFloat(t, rel[1][2]); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("layout reldiff at 16 = %v, want 0.1", got)
	}
	if got := parseFloat(t, rel[1][3]); math.Abs(got+0.08) > 1e-12 {
		t.Errorf("layout reldiff at 32 = %v, want -0.08", got)
	}

	base := readCSV(t, filepath.Join(res.OutDir, "baseline-reldiff.csv"))
	if diff := cmp.Diff([]string{"p", "seq-aos", "0", "0"}, base[1]); diff != "" {
		t.Errorf("baseline row (-want +got):\n%s", diff)
	}
	if got := parseFloat(t, base[2][2]); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("baseline reldiff at 16 = %v, want 0.1", got)
	}

	tukey := readCSV(t, filepath.Join(res.OutDir, "wall_clock-tukey.csv"))
	if diff := cmp.Diff([]string{"part", "pair", "16", "32"}, tukey[0]); diff != "" {
		t.Errorf("tukey header (-want +got):\n%s", diff)
	}
	if len(tukey) != 2 || tukey[1][1] != "seq-aos - seq-soa" {
		t.Errorf("tukey rows = %q, want one seq-aos - seq-soa row", tukey[1:])
	}

	anova := readCSV(t, filepath.Join(res.OutDir, "wall_clock-anova.csv"))
	if diff := cmp.Diff([]string{"part", "size", "groups", "f", "p"}, anova[0]); diff != "" {
		t.Errorf("anova header (-want +got):\n%s", diff)
	}
	if len(anova) != 3 {
		t.Errorf("anova has %d rows, want 3", len(anova))
	}
}

func TestRunOneMinusRatio(t *testing.T) {
	dir := layoutData(t)
	cfg := testConfig(dir)
	cfg.Kinds = []string{"aos", "soa"}
	cfg.RelDiff = countermath.OneMinusRatio
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	rel := readCSV(t, filepath.Join(res.OutDir, "layout-reldiff.csv"))
	if got := parseFloat(t, rel[1][2]); math.Abs(got+0.1) > 1e-12 {
		t.Errorf("layout reldiff at 16 = %v, want -0.1", got)
	}
}

func TestRunRepeatable(t *testing.T) {
	dir := layoutData(t)
	cfg := testConfig(dir)
	read := func() [][]byte {
		if _, err := Run(context.Background(), cfg); err != nil {
			t.Fatal(err)
		}
		var out [][]byte
		for _, name := range []string{SummaryFile, InstructionsFile} {
			data, err := os.ReadFile(filepath.Join(dir, "figures", name))
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, data)
		}
		return out
	}
	first, second := read(), read()
	for i := range first {
		if !bytes.Equal(first[i], second[i]) {
			t.Errorf("rerun changed file %d:\n%s\nvs\n%s", i, first[i], second[i])
		}
	}
}

func TestRunTTestSymmetric(t *testing.T) {
	pvalues := func(kinds ...string) [][]string {
		dir := layoutData(t)
		cfg := testConfig(dir)
		cfg.Kinds = kinds
		if _, err := Run(context.Background(), cfg); err != nil {
			t.Fatal(err)
		}
		return readCSV(t, filepath.Join(dir, "figures", "wall_clock-ttest-pvalue.csv"))
	}
	ab, ba := pvalues("aos", "soa"), pvalues("soa", "aos")
	if len(ab) != 2 || len(ba) != 2 {
		t.Fatalf("got %d and %d rows, want 2", len(ab), len(ba))
	}
	for j := 2; j < len(ab[1]); j++ {
		p1, p2 := parseFloat(t, ab[1][j]), parseFloat(t, ba[1][j])
		if math.Abs(p1-p2) > 1e-12 {
			t.Errorf("size %s: p(A,B) = %v, p(B,A) = %v", ab[0][j], p1, p2)
		}
		if !(p1 > 0 && p1 <= 1) {
			t.Errorf("size %s: p = %v not in (0, 1]", ab[0][j], p1)
		}
	}
}

func TestRunMissingGroup(t *testing.T) {
	check := func(name string, cfg Config, wantCols []string) {
		t.Helper()
		_, err := Run(context.Background(), cfg)
		var merr *counterproc.MissingGroupError
		if !errors.As(err, &merr) {
			t.Errorf("%s: got %v, want *MissingGroupError", name, err)
			return
		}
		if diff := cmp.Diff(wantCols, merr.Cols); diff != "" {
			t.Errorf("%s: columns (-want +got):\n%s", name, diff)
		}
	}

	dir := writeData(t, map[string]float64{
		"p.seq-aos-16.csv": 10,
		"p.seq-soa-16.csv": 12,
		"p.seq-aos-32.csv": 40,
	})
	cfg := testConfig(dir)
	cfg.Kinds = []string{"aos", "soa"}
	check("layout", cfg, []string{"part", "scenario", "size", "kind"})

	cfg = testConfig(dir)
	cfg.Baseline = "seq-soa"
	check("baseline", cfg, []string{"part", "size", "test"})

	// A scenario with neither kind cannot be compared either.
	dir = writeData(t, map[string]float64{
		"p.seq-aos-16.csv":  10,
		"p.seq-soa-16.csv":  12,
		"p.ptr-list-16.csv": 30,
	})
	cfg = testConfig(dir)
	cfg.Kinds = []string{"aos", "soa"}
	check("non-layout scenario", cfg, []string{"part", "scenario", "size", "kind"})
}

func TestRunSingleTest(t *testing.T) {
	dir := writeData(t, map[string]float64{
		"p.seq-aos-16.csv": 10,
	})
	cfg := testConfig(dir)
	var warnings []string
	cfg.Warn = func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	anova := readCSV(t, filepath.Join(res.OutDir, "wall_clock-anova.csv"))
	if len(anova) != 1 {
		t.Errorf("anova has %d rows, want header only", len(anova))
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "skipping ANOVA") {
			found = true
		}
	}
	if !found {
		t.Errorf("no skipped ANOVA warning in %q", warnings)
	}
}

func TestRunErrors(t *testing.T) {
	empty := t.TempDir()
	if err := os.Mkdir(filepath.Join(empty, "data"), 0777); err != nil {
		t.Fatal(err)
	}
	if _, err := Run(context.Background(), testConfig(empty)); !errors.Is(err, counterfmt.ErrNoFiles) {
		t.Errorf("empty data: got %v, want ErrNoFiles", err)
	}

	cfg := testConfig(layoutData(t))
	cfg.TimeCol = "execution_time"
	var cerr *counterproc.ColumnError
	if _, err := Run(context.Background(), cfg); !errors.As(err, &cerr) {
		t.Errorf("missing time column: got %v, want *ColumnError", err)
	}

	for _, kinds := range [][]string{{"aos"}, {"aos", "aos"}} {
		cfg := testConfig(layoutData(t))
		cfg.Kinds = kinds
		if _, err := Run(context.Background(), cfg); err == nil {
			t.Errorf("kinds %q: want error", kinds)
		}
	}
}

func TestRunChartsAndIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("renders charts")
	}
	dir := layoutData(t)
	cfg := testConfig(dir)
	cfg.Charts = true
	cfg.HTML = true
	cfg.DPI = 40
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Charts) != 1 || res.Charts[0].Scope.Name != "seq" {
		t.Fatalf("got charts %v, want one scope seq", res.Charts)
	}
	if got, want := len(res.Charts[0].Files), 4*len(res.Metrics); got != want {
		t.Errorf("got %d charts, want %d", got, want)
	}

	page, err := os.ReadFile(filepath.Join(res.OutDir, IndexFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`href="summary.csv"`,
		`src="seq-wall_clock-bar-stdev.png"`,
		`<h2>seq</h2>`,
	} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("index.html does not contain %s:\n%s", want, page)
		}
	}
}
