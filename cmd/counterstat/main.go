// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Counterstat analyzes hardware counter measurements of benchmark
// runs.
//
// Usage:
//
//	counterstat [options] dir
//
// Counterstat reads every result file dir/data/*.csv, named
// part.scenario-kind-size[-extra].csv, and writes summary tables,
// statistical comparisons and charts to dir/figures.
//
// The written tables are:
//
//	summary.csv              mean and standard deviation of each metric
//	instructions.csv         instruction counts, total and per item
//	METRIC-ttest-pvalue.csv  Welch t-test of the -kinds pair (with -kinds)
//	layout-reldiff.csv       relative time difference of the -kinds pair (with -kinds)
//	METRIC-anova.csv         one-way ANOVA across tests per size
//	METRIC-tukey.csv         Tukey HSD p-values across tests per size
//	Correlation-X-Y.csv      Pearson, Spearman and Kendall correlations
//	baseline-reldiff.csv     relative time difference to -baseline (with -baseline)
//
// Charts are written as SCOPE-METRIC-KIND-EXTENT.png for bar and line
// charts with standard deviation and confidence interval extents.
//
// With -db, the measurements and summary are also exported to a SQL
// database. With -publish gs://bucket/prefix, the output directory is
// uploaded to Google Cloud Storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"github.com/cachelab/counterstat/counterchart"
	"github.com/cachelab/counterstat/counterfmt"
	"github.com/cachelab/counterstat/countermath"
	"github.com/cachelab/counterstat/counterproc"
	"github.com/cachelab/counterstat/internal/publish"
	"github.com/cachelab/counterstat/internal/resultdb"
	"github.com/cachelab/counterstat/report"
)

var exit = os.Exit // replaced during testing

func usage() {
	fmt.Fprintf(os.Stderr, "usage: counterstat [options] dir\n")
	fmt.Fprintf(os.Stderr, "options:\n")
	flag.PrintDefaults()
	exit(2)
}

var (
	flagSkip       = flag.Int("skip", counterfmt.DefaultSkip, "discard the first `n` rows after each header")
	flagTime       = flag.String("time", counterproc.DefaultTimeCol, "name of the time `column`")
	flagKinds      = flag.String("kinds", "", "compare kinds `A,B` with a t-test and relative difference; every scenario and size must have both")
	flagBaseline   = flag.String("baseline", "", "compare every test's time against `test`")
	flagRelDiff    = flag.String("reldiff", countermath.RatioMinusOne.String(), "relative difference `sign`: ratio-minus-one or one-minus-ratio")
	flagHitRate    = flag.Bool("hit-rate", false, "also analyze the cache hit rate")
	flagConfidence = flag.Float64("confidence", 0.95, "confidence `level` of chart intervals")
	flagCaches     = flag.String("caches", "", "draw cache reference lines `L1=32KiB,L2=1MiB,...` on line charts")
	flagItemBytes  = flag.Int("item-bytes", 8, "size of one work item in `bytes`, for -caches")
	flagCharts     = flag.Bool("charts", true, "render charts")
	flagJobs       = flag.Int("j", runtime.GOMAXPROCS(0), "render up to `n` scopes concurrently")
	flagHTML       = flag.Bool("html", true, "write an index.html page")
	flagDPI        = flag.Int("dpi", counterchart.DefaultDPI, "chart resolution in `dpi`")
	flagDBDriver   = flag.String("db-driver", "sqlite3", "SQL `driver` for -db: sqlite3 or mysql")
	flagDB         = flag.String("db", "", "export results to the database with this `DSN`")
	flagPublish    = flag.String("publish", "", "upload the output directory to `gs://bucket/prefix`")
	flagGCSCreds   = flag.String("gcs-credentials", "", "Google Cloud credentials `file` for -publish")
)

// newConfig returns the report configuration for dir from the
// command-line flags.
func newConfig(dir string) (report.Config, error) {
	cfg := report.DefaultConfig()
	cfg.Dir = dir
	cfg.Skip = *flagSkip
	cfg.TimeCol = *flagTime
	cfg.Baseline = *flagBaseline
	cfg.HitRate = *flagHitRate
	cfg.Confidence = *flagConfidence
	cfg.Charts = *flagCharts
	cfg.Jobs = *flagJobs
	cfg.HTML = *flagHTML
	cfg.DPI = *flagDPI
	cfg.Warn = func(format string, args ...interface{}) {
		log.Printf(format, args...)
	}

	if *flagSkip < 0 {
		return cfg, fmt.Errorf("-skip must not be negative")
	}
	if *flagKinds != "" {
		cfg.Kinds = strings.Split(*flagKinds, ",")
		if len(cfg.Kinds) != 2 || cfg.Kinds[0] == "" || cfg.Kinds[1] == "" {
			return cfg, fmt.Errorf("-kinds must be two comma-separated kinds, got %q", *flagKinds)
		}
	}
	sign, err := countermath.ParseRelDiffSign(*flagRelDiff)
	if err != nil {
		return cfg, err
	}
	cfg.RelDiff = sign
	if *flagCaches != "" {
		if *flagItemBytes <= 0 {
			return cfg, fmt.Errorf("-item-bytes must be positive")
		}
		cfg.Refs, err = counterchart.ParseCaches(*flagCaches, *flagItemBytes)
		if err != nil {
			return cfg, err
		}
	}
	if *flagPublish != "" {
		if _, err := publish.ParseURL(*flagPublish); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func main() {
	log.SetPrefix("counterstat: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	cfg, err := newConfig(flag.Arg(0))
	if err != nil {
		log.Print(err)
		flag.Usage()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

// run runs the report and the optional export and upload steps.
func run(ctx context.Context, cfg report.Config) error {
	res, err := report.Run(ctx, cfg)
	if err != nil {
		return err
	}

	if *flagDB != "" {
		db, err := resultdb.OpenSQL(*flagDBDriver, *flagDB)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		id, err := db.InsertRun(ctx, cfg.Dir, res.Table, res.Summary, counterproc.Cols(res.Metrics))
		if cerr := db.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("exporting results: %w", err)
		}
		cfg.Warn("exported run %d\n", id)
	}

	if *flagPublish != "" {
		u, err := publish.ParseURL(*flagPublish)
		if err != nil {
			return err
		}
		gcs, err := publish.NewGCS(ctx, u, *flagGCSCreds)
		if err != nil {
			return err
		}
		defer gcs.Close()
		names, err := publish.Dir(ctx, gcs, res.OutDir)
		if err != nil {
			return err
		}
		cfg.Warn("uploaded %d files to %s\n", len(names), u)
	}
	return nil
}
