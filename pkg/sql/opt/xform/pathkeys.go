// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
)

// CheapestPathForPathKeys returns the cheapest path, by the given criterion,
// whose ordering satisfies the required pathkeys. Returns nil if no path
// qualifies. Ties keep the earlier path.
func CheapestPathForPathKeys(
	paths []*memo.Path, required props.PathKeys, criterion opt.CostCriterion, c memo.Coster,
) *memo.Path {
	var matched *memo.Path
	for _, p := range paths {
		// The cost check is cheaper than the ordering check, so do it first.
		if matched != nil && c.ComparePathCosts(matched, p, criterion) <= 0 {
			continue
		}
		if required.ContainedIn(p.PathKeys) {
			matched = p
		}
	}
	return matched
}

// CheapestFractionalPathForPathKeys is like CheapestPathForPathKeys, but
// compares the cost of fetching the given fraction of each path's rows.
func CheapestFractionalPathForPathKeys(
	paths []*memo.Path, required props.PathKeys, fraction float64, c memo.Coster,
) *memo.Path {
	var matched *memo.Path
	for _, p := range paths {
		if matched != nil && c.CompareFractionalCosts(matched, p, fraction) <= 0 {
			continue
		}
		if required.ContainedIn(p.PathKeys) {
			matched = p
		}
	}
	return matched
}
