// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterproc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aclements/go-gg/table"

	"github.com/cachelab/counterstat/counterfmt"
)

// A Key is the tuple of grouping column values identifying one group.
type Key []interface{}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "/")
}

// index returns a map key for k that distinguishes values of
// different types.
func (k Key) index() string {
	var b strings.Builder
	for _, v := range k {
		fmt.Fprintf(&b, "%T:%v\x00", v, v)
	}
	return b.String()
}

// A MissingGroupError reports a lookup of a group that has no rows.
type MissingGroupError struct {
	Cols []string
	Key  Key
}

func (e *MissingGroupError) Error() string {
	var b strings.Builder
	for i, col := range e.Cols {
		if i > 0 {
			b.WriteString(" ")
		}
		if i < len(e.Key) {
			fmt.Fprintf(&b, "%s=%v", col, e.Key[i])
		}
	}
	return fmt.Sprintf("no rows for %s", b.String())
}

// Groups is a table partitioned by the distinct values of a set of
// columns. Each group's table is materialized and safe for concurrent
// reads.
type Groups struct {
	Cols []string

	keys []Key
	tabs map[string]*table.Table
}

// GroupBy partitions t by the distinct values of cols.
func GroupBy(t *table.Table, cols ...string) *Groups {
	gs := &Groups{Cols: cols, tabs: make(map[string]*table.Table)}
	g := table.GroupBy(t, cols...)
	for _, gid := range g.Tables() {
		key := make(Key, len(cols))
		for i, p := len(cols)-1, gid; i >= 0; i, p = i-1, p.Parent() {
			key[i] = p.Label()
		}
		gs.keys = append(gs.keys, key)
		gs.tabs[key.index()] = counterfmt.Materialize(g.Table(gid))
	}
	sort.SliceStable(gs.keys, func(i, j int) bool {
		return compareKeys(gs.keys[i], gs.keys[j]) < 0
	})
	return gs
}

// Keys returns the group keys in ascending order.
func (gs *Groups) Keys() []Key {
	return gs.keys
}

// Len returns the number of groups.
func (gs *Groups) Len() int {
	return len(gs.keys)
}

// Table returns the table of the group with the given key, or nil.
func (gs *Groups) Table(key Key) *table.Table {
	return gs.tabs[key.index()]
}

// Lookup returns the table of the group whose key is vals. It returns
// a *MissingGroupError if there is no such group.
func (gs *Groups) Lookup(vals ...interface{}) (*table.Table, error) {
	t := gs.tabs[Key(vals).index()]
	if t == nil {
		return nil, &MissingGroupError{gs.Cols, Key(vals)}
	}
	return t, nil
}

// Values returns the values of numeric column col of t.
func Values(t *table.Table, col string) ([]float64, error) {
	if err := checkFloat(t, col); err != nil {
		return nil, err
	}
	return t.Column(col).([]float64), nil
}

// Distinct returns the distinct values of column col of t in
// ascending order. col must have type []int, []float64 or []string.
func Distinct(t *table.Table, col string) (Key, error) {
	if _, err := comparer(t.Column(col)); err != nil {
		return nil, &ColumnError{col, err.Error()}
	}
	gs := GroupBy(t, col)
	var out Key
	for _, k := range gs.keys {
		out = append(out, k[0])
	}
	return out, nil
}

func compareKeys(a, b Key) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

func compareValues(a, b interface{}) int {
	switch a := a.(type) {
	case int:
		if b, ok := b.(int); ok {
			return compare(a < b, a > b)
		}
	case float64:
		if b, ok := b.(float64); ok {
			return compare(a < b, a > b)
		}
	case string:
		if b, ok := b.(string); ok {
			return compare(a < b, a > b)
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	return compare(as < bs, as > bs)
}
