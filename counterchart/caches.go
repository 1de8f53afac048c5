// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counterchart

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/perf/benchunit"
)

// A RefLine is a labeled vertical marker on the size axis of a line
// chart.
type RefLine struct {
	Label string
	X     float64
}

var capacityUnits = map[string]float64{
	"":    1,
	"B":   1,
	"K":   1 << 10,
	"KB":  1 << 10,
	"KIB": 1 << 10,
	"M":   1 << 20,
	"MB":  1 << 20,
	"MIB": 1 << 20,
	"G":   1 << 30,
	"GB":  1 << 30,
	"GIB": 1 << 30,
}

// ParseCapacity parses a byte capacity such as "32KiB", "1M" or
// "4096". All multiples are binary.
func ParseCapacity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r == '.')
	})
	if i < 0 {
		i = len(s)
	}
	num, unit := s[:i], strings.ToUpper(strings.TrimSpace(s[i:]))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("bad capacity %q", s)
	}
	f, ok := capacityUnits[unit]
	if !ok {
		return 0, fmt.Errorf("bad capacity %q: unknown unit %q", s, s[i:])
	}
	if v <= 0 {
		return 0, fmt.Errorf("bad capacity %q: must be positive", s)
	}
	return v * f, nil
}

// ParseCaches parses a comma-separated list of name=capacity pairs,
// such as "L1=32KiB,L2=1MiB", into reference lines placed at the
// number of items of itemBytes each that fill the capacity.
func ParseCaches(list string, itemBytes int) ([]RefLine, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	if itemBytes <= 0 {
		return nil, fmt.Errorf("item size must be positive, got %d", itemBytes)
	}
	var refs []RefLine
	for _, f := range strings.Split(list, ",") {
		name, capStr, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("bad cache %q: want name=capacity", f)
		}
		c, err := ParseCapacity(capStr)
		if err != nil {
			return nil, fmt.Errorf("cache %s: %w", name, err)
		}
		refs = append(refs, RefLine{
			Label: fmt.Sprintf("%s (%sB)", name, benchunit.Scale(c, benchunit.Binary)),
			X:     c / float64(itemBytes),
		})
	}
	return refs, nil
}
