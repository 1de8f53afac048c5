// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aclements/go-gg/table"

	"github.com/cachelab/counterstat/counterchart"
	"github.com/cachelab/counterstat/counterfmt"
	"github.com/cachelab/counterstat/counterproc"
)

// Names of the fixed artifacts in the output directory.
const (
	SummaryFile      = "summary.csv"
	InstructionsFile = "instructions.csv"
	IndexFile        = "index.html"
)

// A Result describes a completed run.
type Result struct {
	// DataDir and OutDir are the input and output directories.
	DataDir, OutDir string

	// Table is the unified measurement table, with derived
	// columns.
	Table *table.Table

	// Summary is the aggregated table written to SummaryFile.
	Summary *table.Table

	// Metrics are the summarized metrics, in column order.
	Metrics []counterproc.Metric

	// Artifacts lists the CSV files written to OutDir, in the
	// order they were written.
	Artifacts []string

	// Charts lists the chart files written per scope.
	Charts []counterchart.Rendered
}

// Run loads every result file in cfg.Dir/data, derives and summarizes
// the counter metrics, and writes every analysis table, chart and the
// index page to cfg.Dir/figures.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	res := &Result{
		DataDir: filepath.Join(cfg.Dir, "data"),
		OutDir:  filepath.Join(cfg.Dir, "figures"),
		Metrics: counterproc.SummaryMetrics(cfg.TimeCol, cfg.HitRate),
	}

	files := counterfmt.Files{Dir: res.DataDir, Skip: cfg.Skip, Warn: cfg.Warn}
	raw, err := files.Load()
	if err != nil {
		return nil, err
	}
	if _, err := counterproc.Values(raw, cfg.TimeCol); err != nil {
		return nil, err
	}
	res.Table, err = counterproc.Derive(raw, counterproc.DeriveOptions{HitRate: cfg.HitRate})
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(res.OutDir, 0777); err != nil {
		return nil, err
	}

	metricCols := counterproc.Cols(res.Metrics)
	res.Summary, err = counterproc.Summarize(res.Table, counterproc.SummaryKeys, metricCols)
	if err != nil {
		return nil, err
	}
	if err := res.writeTable(&cfg, SummaryFile, res.Summary, counterproc.SummaryColumns(counterproc.SummaryKeys, metricCols)); err != nil {
		return nil, err
	}

	insCols := []string{counterproc.ColInstructions, counterproc.ColInstructionsPerItem}
	ins, err := counterproc.Summarize(res.Table, counterproc.SummaryKeys, insCols)
	if err != nil {
		return nil, err
	}
	if err := res.writeTable(&cfg, InstructionsFile, ins, counterproc.SummaryColumns(counterproc.SummaryKeys, insCols)); err != nil {
		return nil, err
	}

	type analysis func() ([]artifact, error)
	analyses := []analysis{
		func() ([]artifact, error) { return compareTests(&cfg, res.Table, res.Metrics) },
		func() ([]artifact, error) { return correlations(&cfg, res.Table) },
	}
	if cfg.Kinds != nil {
		analyses = append([]analysis{func() ([]artifact, error) { return layout(&cfg, res.Table, res.Metrics) }}, analyses...)
	}
	if cfg.Baseline != "" {
		analyses = append(analyses, func() ([]artifact, error) { return baseline(&cfg, res.Table) })
	}
	for _, a := range analyses {
		arts, err := a()
		if err != nil {
			return nil, err
		}
		for _, art := range arts {
			if err := res.write(&cfg, art); err != nil {
				return nil, err
			}
		}
	}

	if cfg.Charts {
		res.Charts, err = counterchart.Render(ctx, res.OutDir, counterchart.Scopes(res.Table), res.Metrics, counterchart.Options{
			Confidence: cfg.Confidence,
			Refs:       cfg.Refs,
			Jobs:       cfg.Jobs,
			DPI:        cfg.DPI,
		})
		if err != nil {
			return nil, fmt.Errorf("rendering charts: %w", err)
		}
		for _, r := range res.Charts {
			cfg.warn("%s: %d charts\n", r.Scope.Name, len(r.Files))
		}
	}

	if cfg.HTML {
		if err := writeIndex(res); err != nil {
			return nil, err
		}
		cfg.warn("wrote %s\n", IndexFile)
	}
	return res, nil
}

func (res *Result) writeTable(cfg *Config, name string, t *table.Table, cols []string) error {
	records, err := tableRecords(t, cols)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return res.write(cfg, artifact{name, records})
}

func (res *Result) write(cfg *Config, art artifact) error {
	if err := writeCSV(res.OutDir, art.name, art.records); err != nil {
		return err
	}
	res.Artifacts = append(res.Artifacts, art.name)
	cfg.warn("wrote %s\n", art.name)
	return nil
}
