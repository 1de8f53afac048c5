// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterchart

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/cachelab/counterstat/counterfmt"
	"github.com/cachelab/counterstat/counterproc"
)

// Options configures Render.
type Options struct {
	// Confidence is the confidence level of CI extents.
	Confidence float64

	// Refs are drawn on every line chart.
	Refs []RefLine

	// Jobs bounds the number of scopes rendered concurrently. If 0,
	// there is no bound.
	Jobs int

	// DPI is the image resolution. If 0, DefaultDPI is used.
	DPI int
}

// A Rendered lists the chart files written for one scope, by base
// name.
type Rendered struct {
	Scope Scope
	Files []string
}

// Render writes every chart kind and extent of every metric of every
// scope to dir. Scopes render concurrently; each chart is a distinct
// file. Render stops at the first error and returns it.
func Render(ctx context.Context, dir string, scopes []Scope, metrics []counterproc.Metric, opts Options) ([]Rendered, error) {
	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	out := make([]Rendered, len(scopes))
	for i, sc := range scopes {
		i, sc := i, sc
		out[i].Scope = sc
		g.Go(func() error {
			for _, m := range metrics {
				for _, ext := range Extents {
					if err := ctx.Err(); err != nil {
						return err
					}
					series, err := BuildSeries(sc.Table, counterfmt.ColKind, m.Col, ext, opts.Confidence)
					if err != nil {
						return err
					}
					for _, kind := range Kinds {
						c := &Chart{Scope: sc.Name, Metric: m, Kind: kind, Extent: ext, Series: series}
						if kind == Line {
							c.Refs = opts.Refs
						}
						path, err := c.Save(dir, opts.DPI)
						if err != nil {
							return err
						}
						out[i].Files = append(out[i].Files, filepath.Base(path))
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
