// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/dustin/go-humanize"
)

var sizePattern = regexp.MustCompile(`^([.\d]+) ([GMK]?)B$`)

var sizeUnits = map[string]float64{
	"":  1,
	"K": humanize.KiByte,
	"M": humanize.MiByte,
	"G": humanize.GiByte,
}

// matchSize reports whether text looks like a size cell, e.g. "2.1 GB".
func matchSize(text string) bool {
	return sizePattern.MatchString(text)
}

// ParseSize converts a size cell to bytes. Units are 1024-based and case
// sensitive; fractional bytes are truncated toward zero.
func ParseSize(text string) (int64, error) {
	m := sizePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("invalid size %q", text)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", text, err)
	}
	bytes := math.Trunc(value * sizeUnits[m[2]])
	if bytes > math.MaxInt64 {
		return 0, fmt.Errorf("size %q overflows", text)
	}
	return int64(bytes), nil
}
