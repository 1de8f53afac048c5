// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"

	"github.com/aclements/go-gg/table"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// tableRecords returns a header row followed by one row per row of t,
// restricted to cols.
func tableRecords(t *table.Table, cols []string) ([][]string, error) {
	tab := [][]string{append([]string(nil), cols...)}
	fmts := make([]func(i int) string, len(cols))
	for j, col := range cols {
		switch xs := t.Column(col).(type) {
		case nil:
			return nil, fmt.Errorf("no column %q", col)
		case []float64:
			fmts[j] = func(i int) string { return formatFloat(xs[i]) }
		case []int:
			fmts[j] = func(i int) string { return strconv.Itoa(xs[i]) }
		case []string:
			fmts[j] = func(i int) string { return xs[i] }
		default:
			rv := reflect.ValueOf(xs)
			fmts[j] = func(i int) string { return fmt.Sprint(rv.Index(i).Interface()) }
		}
	}
	for i := 0; i < t.Len(); i++ {
		row := make([]string, len(cols))
		for j, f := range fmts {
			row[j] = f(i)
		}
		tab = append(tab, row)
	}
	return tab, nil
}

// writeCSV writes records to dir/name.
func writeCSV(dir, name string, records [][]string) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	csvw := csv.NewWriter(f)
	csvw.WriteAll(records)
	if err := csvw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// A sizeMatrix is a table with one row per key and one column per
// size. Cells never set are written empty.
type sizeMatrix struct {
	head  []string
	rows  [][]string
	cells []map[int]float64
	index map[string]int
	sizes map[int]bool
}

func newSizeMatrix(head ...string) *sizeMatrix {
	return &sizeMatrix{head: head, index: make(map[string]int), sizes: make(map[int]bool)}
}

func (m *sizeMatrix) set(keys []string, size int, v float64) {
	k := fmt.Sprintf("%q", keys)
	i, ok := m.index[k]
	if !ok {
		i = len(m.rows)
		m.index[k] = i
		m.rows = append(m.rows, keys)
		m.cells = append(m.cells, make(map[int]float64))
	}
	m.cells[i][size] = v
	m.sizes[size] = true
}

func (m *sizeMatrix) records() [][]string {
	sizes := make([]int, 0, len(m.sizes))
	for sz := range m.sizes {
		sizes = append(sizes, sz)
	}
	sort.Ints(sizes)

	head := append([]string(nil), m.head...)
	for _, sz := range sizes {
		head = append(head, strconv.Itoa(sz))
	}
	tab := [][]string{head}
	for i, keys := range m.rows {
		row := append([]string(nil), keys...)
		for _, sz := range sizes {
			if v, ok := m.cells[i][sz]; ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		tab = append(tab, row)
	}
	return tab
}
