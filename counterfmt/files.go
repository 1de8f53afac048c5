// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterfmt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aclements/go-gg/table"
)

// ErrNoFiles is returned by Files.Load when the directory contains no
// result files.
var ErrNoFiles = errors.New("no result files found")

// A ColumnMismatchError reports a result file whose columns differ
// from those of the first file loaded.
type ColumnMismatchError struct {
	File      string
	Want, Got []string
}

func (e *ColumnMismatchError) Error() string {
	return fmt.Sprintf("%s: columns %q do not match %q", e.File, e.Got, e.Want)
}

// A Files loads every result file in a directory into one table.
type Files struct {
	// Dir is the directory holding the *.csv result files.
	Dir string

	// Skip is the number of rows after each header to discard.
	Skip int

	// Warn, if non-nil, is called with progress messages.
	Warn func(format string, args ...interface{})
}

// Paths returns the result files in f.Dir in lexical order.
func (f *Files) Paths() ([]string, error) {
	if _, err := os.Stat(f.Dir); err != nil {
		return nil, err
	}
	paths, err := filepath.Glob(filepath.Join(f.Dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Load reads every result file and concatenates them into a single
// table. Every file must parse as a Name and have exactly the same
// columns, with the same types, as the first file. A file with no
// rows left after skipping takes its column types from the first
// file that has rows.
//
// All columns of the returned table are materialized, so it is safe
// to read concurrently.
func (f *Files) Load() (*table.Table, error) {
	paths, err := f.Paths()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Dir, ErrNoFiles)
	}

	rd := Reader{Skip: f.Skip}
	tabs := make([]*table.Table, 0, len(paths))
	// ref is the first table with rows, which fixes the column types.
	var first, ref *table.Table
	var refFile string
	for _, path := range paths {
		name, err := ParseName(path)
		if err != nil {
			return nil, err
		}
		t, err := f.read(&rd, path, name)
		if err != nil {
			return nil, err
		}
		if f.Warn != nil {
			f.Warn("loaded %s: %d rows\n", filepath.Base(path), t.Len())
		}
		if first == nil {
			first = t
		} else if err := sameColumns(first, t); err != nil {
			return nil, &ColumnMismatchError{filepath.Base(path), dataColumns(first), dataColumns(t)}
		}
		if t.Len() > 0 {
			if ref == nil {
				ref, refFile = t, filepath.Base(path)
			} else if err := sameTypes(ref, t); err != nil {
				return nil, fmt.Errorf("%s: %v (compared with %s)", filepath.Base(path), err, refFile)
			}
		}
		tabs = append(tabs, t)
	}

	gs := make([]table.Grouping, len(tabs))
	for i, t := range tabs {
		if t.Len() == 0 && ref != nil {
			t = retype(t, ref)
		}
		gs[i] = t
	}
	return Materialize(table.Flatten(table.Concat(gs...))), nil
}

// retype returns the empty table t with the data column types of ref.
func retype(t, ref *table.Table) *table.Table {
	var b table.Builder
	for _, col := range t.Columns() {
		if v, ok := t.Const(col); ok {
			b.AddConst(col, v)
			continue
		}
		b.Add(col, reflect.MakeSlice(reflect.TypeOf(ref.Column(col)), 0, 0).Interface())
	}
	return b.Done()
}

func (f *Files) read(rd *Reader, path string, name Name) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return rd.Read(file, filepath.Base(path), name)
}

// Materialize returns a copy of t in which every constant column has
// been expanded into a regular column.
func Materialize(t *table.Table) *table.Table {
	var b table.Builder
	for _, col := range t.Columns() {
		b.Add(col, t.Column(col))
	}
	return b.Done()
}

func dataColumns(t *table.Table) []string {
	var cols []string
	for _, col := range t.Columns() {
		if _, ok := t.Const(col); !ok {
			cols = append(cols, col)
		}
	}
	return cols
}

func sameColumns(a, b *table.Table) error {
	ac, bc := dataColumns(a), dataColumns(b)
	if len(ac) != len(bc) {
		return errors.New("column count differs")
	}
	set := make(map[string]bool, len(ac))
	for _, c := range ac {
		set[c] = true
	}
	var missing []string
	for _, c := range bc {
		if !set[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unexpected columns %s", strings.Join(missing, ", "))
	}
	return nil
}

func sameTypes(a, b *table.Table) error {
	for _, col := range dataColumns(a) {
		at, bt := reflect.TypeOf(a.Column(col)), reflect.TypeOf(b.Column(col))
		if at != bt {
			return fmt.Errorf("column %q has type %v, want %v", col, bt, at)
		}
	}
	return nil
}
