// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report runs the counter analysis pipeline over a results
// directory and writes its CSV tables, charts and index page.
package report

import (
	"fmt"
	"runtime"

	"github.com/cachelab/counterstat/counterchart"
	"github.com/cachelab/counterstat/counterfmt"
	"github.com/cachelab/counterstat/countermath"
	"github.com/cachelab/counterstat/counterproc"
)

// Config configures Run.
type Config struct {
	// Dir is the base directory. Result files are read from
	// Dir/data and artifacts are written to Dir/figures.
	Dir string

	// Skip is the number of rows after each header to discard.
	Skip int

	// TimeCol names the time column.
	TimeCol string

	// Kinds, if set, must hold exactly two kinds to compare with a
	// t-test and relative difference per scenario and size. Every
	// (part, scenario, size) in the data must have rows of both
	// kinds, or Run fails with a *counterproc.MissingGroupError.
	Kinds []string

	// Baseline, if set, is the test every test's time is compared
	// against per size.
	Baseline string

	// RelDiff is the sign convention of relative differences.
	RelDiff countermath.RelDiffSign

	// HitRate adds the cache hit rate metric.
	HitRate bool

	// Confidence is the confidence level of chart intervals.
	Confidence float64

	// Refs are cache-size reference lines for line charts.
	Refs []counterchart.RefLine

	// Charts enables chart rendering.
	Charts bool

	// Jobs bounds the number of chart scopes rendered concurrently.
	Jobs int

	// DPI is the chart resolution.
	DPI int

	// HTML enables writing index.html.
	HTML bool

	// Warn, if non-nil, is called with progress messages and with
	// warnings about statistics that could not be computed.
	Warn func(format string, args ...interface{})
}

// DefaultConfig returns the default configuration. The caller must
// still set Dir.
func DefaultConfig() Config {
	return Config{
		Skip:       counterfmt.DefaultSkip,
		TimeCol:    counterproc.DefaultTimeCol,
		RelDiff:    countermath.RatioMinusOne,
		Confidence: 0.95,
		Charts:     true,
		Jobs:       runtime.GOMAXPROCS(0),
		DPI:        counterchart.DefaultDPI,
		HTML:       true,
	}
}

func (c *Config) check() error {
	if c.Dir == "" {
		return fmt.Errorf("no base directory")
	}
	if c.Kinds != nil && len(c.Kinds) != 2 {
		return fmt.Errorf("layout comparison needs exactly two kinds, got %d", len(c.Kinds))
	}
	if c.Kinds != nil && c.Kinds[0] == c.Kinds[1] {
		return fmt.Errorf("layout comparison of kind %q with itself", c.Kinds[0])
	}
	if !(c.Confidence > 0 && c.Confidence < 1) {
		return fmt.Errorf("confidence %v not in (0, 1)", c.Confidence)
	}
	if c.TimeCol == "" {
		return fmt.Errorf("no time column")
	}
	return nil
}

func (c *Config) warn(format string, args ...interface{}) {
	if c.Warn != nil {
		c.Warn(format, args...)
	}
}
