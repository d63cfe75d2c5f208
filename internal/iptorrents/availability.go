// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package iptorrents

import "math"

// Availability scores how easy a release is to obtain. The score grows with
// seeds and shrinks as leeches compete for them. Availability(0, 0) is 0.
func Availability(seeds, leeches int) float64 {
	if seeds < 0 {
		seeds = 0
	}
	if leeches < 0 {
		leeches = 0
	}
	return 2 * float64(seeds) / (1 + math.Log1p(float64(leeches)))
}

// Better orders two records by availability, using the raw seed count to
// break ties.
func Better(a, b Record) bool {
	if a.Availability != b.Availability {
		return a.Availability > b.Availability
	}
	return a.Seeds > b.Seeds
}
