// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterfmt

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// A Name is the metadata encoded in a result file name of the form
//
//	part.scenario-kind-size[-extra].csv
//
// The optional trailing extra token is discarded.
type Name struct {
	Part     string
	Scenario string
	Kind     string
	Size     int
}

// Test returns the scenario label, which identifies the finest unit
// of comparison: the scenario and kind joined by "-".
func (n Name) Test() string {
	return n.Scenario + "-" + n.Kind
}

// String returns the canonical file name for n, without any extra
// token.
func (n Name) String() string {
	return fmt.Sprintf("%s.%s-%s-%d.csv", n.Part, n.Scenario, n.Kind, n.Size)
}

// A NameError reports a result file name that does not have the
// expected shape.
type NameError struct {
	File string
	Msg  string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// ParseName parses the base name of file into a Name.
func ParseName(file string) (Name, error) {
	base := filepath.Base(file)
	fields := strings.Split(base, ".")
	if len(fields) != 3 {
		return Name{}, &NameError{base, fmt.Sprintf("want part.rest.csv, got %d dot-separated fields", len(fields))}
	}
	part, rest := fields[0], fields[1]
	if part == "" {
		return Name{}, &NameError{base, "empty part"}
	}

	toks := strings.Split(rest, "-")
	if len(toks) == 4 {
		// Drop the extra token.
		toks = toks[:3]
	}
	if len(toks) != 3 {
		return Name{}, &NameError{base, fmt.Sprintf("want scenario-kind-size[-extra], got %d tokens", len(toks))}
	}
	for _, tok := range toks {
		if tok == "" {
			return Name{}, &NameError{base, "empty token in " + strconv.Quote(rest)}
		}
	}
	size, err := strconv.Atoi(toks[2])
	if err != nil || size < 0 {
		return Name{}, &NameError{base, fmt.Sprintf("size %q is not a non-negative integer", toks[2])}
	}
	return Name{Part: part, Scenario: toks[0], Kind: toks[1], Size: size}, nil
}
