// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import "math"

// Cost is the best-effort approximation of the actual cost of executing a
// path, in abstract units.
type Cost float64

// costTolerance is the relative difference under which two costs are
// considered equal. Costs of equivalent plans can differ slightly because
// their components are added up in a different order.
const costTolerance = 1e-10

// Less returns true if this cost is lower than the given cost, by more than
// the tolerance.
func (c Cost) Less(other Cost) bool {
	if c == other {
		return false
	}
	return float64(other)-float64(c) > costTolerance*math.Abs(float64(other))
}

// Add adds the other cost to this cost.
func (c *Cost) Add(other Cost) {
	*c += other
}

// Compare returns -1, 0 or 1 depending on whether c is less than, equal to
// (within the tolerance) or greater than other.
func (c Cost) Compare(other Cost) int {
	switch {
	case c.Less(other):
		return -1
	case other.Less(c):
		return 1
	}
	return 0
}
