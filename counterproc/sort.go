// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterproc

import (
	"fmt"
	"sort"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
)

// SortBy returns t with its rows stably sorted by the tuple of cols.
// Each column must be []int, []float64 or []string.
//
// Unlike table.SortBy, the order is always lexicographic over all of
// cols, even when a leading column is already sorted on its own.
func SortBy(t *table.Table, cols ...string) (*table.Table, error) {
	cmps := make([]func(i, j int) int, len(cols))
	for k, col := range cols {
		cmp, err := comparer(t.Column(col))
		if err != nil {
			return nil, &ColumnError{col, err.Error()}
		}
		cmps[k] = cmp
	}

	perm := make([]int, t.Len())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		for _, cmp := range cmps {
			if c := cmp(perm[a], perm[b]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	var nt table.Builder
	for _, col := range t.Columns() {
		if cv, ok := t.Const(col); ok {
			nt.AddConst(col, cv)
			continue
		}
		nt.Add(col, slice.Select(t.Column(col), perm))
	}
	return nt.Done(), nil
}

func comparer(col table.Slice) (func(i, j int) int, error) {
	switch xs := col.(type) {
	case nil:
		return nil, fmt.Errorf("missing")
	case []int:
		return func(i, j int) int { return compare(xs[i] < xs[j], xs[i] > xs[j]) }, nil
	case []float64:
		return func(i, j int) int { return compare(xs[i] < xs[j], xs[i] > xs[j]) }, nil
	case []string:
		return func(i, j int) int { return compare(xs[i] < xs[j], xs[i] > xs[j]) }, nil
	}
	return nil, fmt.Errorf("cannot sort values of type %T", col)
}

func compare(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
