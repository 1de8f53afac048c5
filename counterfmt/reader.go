// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterfmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
)

// Names of the tag columns attached to every row.
const (
	ColPart     = "part"
	ColScenario = "scenario"
	ColKind     = "kind"
	ColSize     = "size"
	ColTest     = "test"
)

// TagColumns lists the tag columns in the order they are appended to
// each table.
var TagColumns = []string{ColPart, ColScenario, ColKind, ColSize, ColTest}

// DefaultSkip is the number of rows following the header that the
// benchmark harness fills with warm-up and summary lines.
const DefaultSkip = 5

// A SyntaxError represents a malformed line in a result file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// A Reader reads one CSV result file into a table.
//
// The zero Reader skips no rows.
type Reader struct {
	// Skip is the number of data rows after the header line to
	// discard.
	Skip int
}

// Read reads a CSV result file from r. fileName is used in error
// messages; it is purely diagnostic. The first line names the
// columns. Columns whose every remaining cell parses as a number
// become []float64 columns; all others stay []string. A file with no
// rows after the skipped ones has only []float64 columns. The
// returned table additionally has constant tag columns derived from
// name.
func (rd *Reader) Read(r io.Reader, fileName string, name Name) (*table.Table, error) {
	if fileName == "" {
		fileName = name.String()
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SyntaxError{fileName, 1, "missing header line"}
	} else if err != nil {
		return nil, csvError(fileName, err)
	}
	cols := make([]string, len(header))
	seen := make(map[string]bool)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, &SyntaxError{fileName, 1, fmt.Sprintf("column %d has an empty name", i+1)}
		}
		if seen[h] {
			return nil, &SyntaxError{fileName, 1, fmt.Sprintf("duplicate column %q", h)}
		}
		for _, tag := range TagColumns {
			if h == tag {
				return nil, &SyntaxError{fileName, 1, fmt.Sprintf("column %q collides with a tag column", h)}
			}
		}
		seen[h] = true
		cols[i] = h
	}

	var rows [][]string
	for skipped := 0; ; {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, csvError(fileName, err)
		}
		if skipped < rd.Skip {
			skipped++
			continue
		}
		rows = append(rows, rec)
	}

	var b table.Builder
	for i, col := range cols {
		b.Add(col, column(rows, i))
	}
	b.AddConst(ColPart, name.Part)
	b.AddConst(ColScenario, name.Scenario)
	b.AddConst(ColKind, name.Kind)
	b.AddConst(ColSize, name.Size)
	b.AddConst(ColTest, name.Test())
	return b.Done(), nil
}

// column extracts column i of rows, as []float64 if every cell is
// numeric and as []string otherwise.
func column(rows [][]string, i int) table.Slice {
	fs := make([]float64, len(rows))
	for j, row := range rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			ss := make([]string, len(rows))
			for k, row := range rows {
				ss[k] = row[i]
			}
			return ss
		}
		fs[j] = v
	}
	return fs
}

func csvError(fileName string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &SyntaxError{fileName, perr.Line, perr.Err.Error()}
	}
	return fmt.Errorf("%s: %w", fileName, err)
}
