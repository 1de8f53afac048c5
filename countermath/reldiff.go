// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package countermath

import (
	"fmt"
	"math"
)

// A RelDiffSign selects the sign convention of a relative difference.
type RelDiffSign int

const (
	// RatioMinusOne is value/base - 1: positive when value is
	// larger than base.
	RatioMinusOne RelDiffSign = iota

	// OneMinusRatio is 1 - value/base: positive when value is
	// smaller than base.
	OneMinusRatio
)

var relDiffNames = map[RelDiffSign]string{
	RatioMinusOne: "ratio-minus-one",
	OneMinusRatio: "one-minus-ratio",
}

func (s RelDiffSign) String() string {
	if n, ok := relDiffNames[s]; ok {
		return n
	}
	return fmt.Sprintf("RelDiffSign(%d)", int(s))
}

// ParseRelDiffSign parses the name of a sign convention as returned
// by RelDiffSign.String.
func ParseRelDiffSign(name string) (RelDiffSign, error) {
	for s, n := range relDiffNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown relative difference convention %q (want ratio-minus-one or one-minus-ratio)", name)
}

// RelDiff returns the relative difference of value against base. It
// is 0 if both are equal and NaN if base is 0 and value is not.
func RelDiff(value, base float64, sign RelDiffSign) float64 {
	if value == base {
		return 0
	}
	if base == 0 {
		return math.NaN()
	}
	d := value/base - 1
	if sign == OneMinusRatio {
		d = -d
	}
	return d
}
