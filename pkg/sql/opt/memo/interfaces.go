// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import "github.com/cockroachdb/relplan/pkg/sql/opt"

// Coster estimates sizes and compares the costs of paths.
type Coster interface {
	// EstimateJoinSize returns the estimated row count and width of a new join
	// relation given the inputs and restriction list it was first built from.
	EstimateJoinSize(
		joinRel, outer, inner *RelNode, joinType opt.JoinType, restrict []*RestrictInfo,
	) (rows float64, width int)

	// ComparePathCosts returns a negative number if a is cheaper than b by the
	// given criterion, a positive number if it is more expensive, and zero if
	// they cost the same.
	ComparePathCosts(a, b *Path, criterion opt.CostCriterion) int

	// CompareFractionalCosts is like ComparePathCosts, but compares the cost of
	// fetching the given fraction of each path's rows.
	CompareFractionalCosts(a, b *Path, fraction float64) int
}

// Simplifier removes duplicate and redundant clauses from the restriction
// list of a join.
type Simplifier interface {
	RemoveRedundant(list []*RestrictInfo, joinType opt.JoinType) []*RestrictInfo
}

// dedupSimplifier is the Simplifier used when none is configured. It only
// removes duplicate pointers.
type dedupSimplifier struct{}

func (dedupSimplifier) RemoveRedundant(list []*RestrictInfo, _ opt.JoinType) []*RestrictInfo {
	var res []*RestrictInfo
	for _, ri := range list {
		if !containsRestrictInfo(res, ri) {
			res = append(res, ri)
		}
	}
	return res
}
