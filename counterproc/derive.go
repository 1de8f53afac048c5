// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package counterproc derives, groups and aggregates tables of
// hardware counter measurements.
//
// Tables are go-gg tables as produced by package counterfmt. All
// functions in this package return new tables and never modify their
// inputs.
package counterproc

import (
	"fmt"

	"github.com/aclements/go-gg/table"

	"github.com/cachelab/counterstat/counterfmt"
)

// Raw counter columns read from result files.
const (
	ColCycles             = "cpu_cycles"
	ColInstructions       = "instructions"
	ColCacheReferences    = "cache_references"
	ColCacheMisses        = "cache_misses"
	ColBranchInstructions = "branch_instructions"
	ColBranchMisses       = "branch_misses"
)

// Derived columns added by Derive.
const (
	ColIPC                 = "inst_per_cycle"
	ColCacheMissRate       = "cache_miss_rate"
	ColBranchMissRate      = "branch_miss_rate"
	ColCacheHitRate        = "cache_hit_rate"
	ColInstructionsPerItem = "instructions_per_item"
)

// RateOrZero returns num/den, or 0 if den is not positive. Every
// rate metric uses this policy so that runs that never touched a
// counter report a rate of zero rather than NaN.
func RateOrZero(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}

// DeriveOptions controls which derived columns Derive adds.
type DeriveOptions struct {
	// HitRate adds the cache_hit_rate column.
	HitRate bool
}

// A ColumnError reports a column that is missing or has the wrong
// type for an operation.
type ColumnError struct {
	Col string
	Msg string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q: %s", e.Col, e.Msg)
}

// Derive returns t extended with the derived metric columns.
//
// inst_per_cycle is instructions/cpu_cycles with no zero guard, as a
// run with zero cycles is not a valid measurement.
func Derive(t *table.Table, opts DeriveOptions) (*table.Table, error) {
	for _, col := range []string{ColCycles, ColInstructions, ColCacheReferences, ColCacheMisses, ColBranchInstructions, ColBranchMisses} {
		if err := checkFloat(t, col); err != nil {
			return nil, err
		}
	}
	if _, ok := t.Column(counterfmt.ColSize).([]int); !ok {
		return nil, &ColumnError{counterfmt.ColSize, "missing or not an integer column"}
	}

	var g table.Grouping = t
	g = table.MapCols(g, func(ins, cycles, ipc []float64) {
		for i := range ins {
			ipc[i] = ins[i] / cycles[i]
		}
	}, ColInstructions, ColCycles)(ColIPC)
	g = table.MapCols(g, rates, ColCacheMisses, ColCacheReferences)(ColCacheMissRate)
	g = table.MapCols(g, rates, ColBranchMisses, ColBranchInstructions)(ColBranchMissRate)
	if opts.HitRate {
		g = table.MapCols(g, func(miss, hit []float64) {
			for i := range miss {
				hit[i] = 1 - miss[i]
			}
		}, ColCacheMissRate)(ColCacheHitRate)
	}
	g = table.MapCols(g, func(ins []float64, size []int, per []float64) {
		for i := range ins {
			per[i] = RateOrZero(ins[i], float64(size[i]))
		}
	}, ColInstructions, counterfmt.ColSize)(ColInstructionsPerItem)
	return table.Flatten(g), nil
}

func rates(num, den, out []float64) {
	for i := range num {
		out[i] = RateOrZero(num[i], den[i])
	}
}

func checkFloat(t *table.Table, col string) error {
	switch t.Column(col).(type) {
	case nil:
		return &ColumnError{col, "missing"}
	case []float64:
		return nil
	}
	return &ColumnError{col, fmt.Sprintf("has type %T, want numeric values", t.Column(col))}
}
