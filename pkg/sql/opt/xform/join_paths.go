// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/ordering"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
)

// addJoinPaths adds the candidate join paths of one outer/inner pairing to
// joinRel: nested loops over every outer path, merge joins over explicitly
// sorted inputs and over already ordered outer paths, and one hash join per
// merge ordering of the join clauses.
func (o *Optimizer) addJoinPaths(
	joinRel, outer, inner *memo.RelNode, joinType opt.JoinType, restrict []*memo.RestrictInfo,
) {
	mergeable := selectMergeClauses(restrict, outer, inner)

	o.addNestLoopPaths(joinRel, outer, inner, joinType, restrict)
	if len(mergeable) > 0 {
		o.addSortedMergePaths(joinRel, outer, inner, joinType, restrict, mergeable)
		o.addPresortedMergePaths(joinRel, outer, inner, joinType, restrict, mergeable)
		o.addHashPaths(joinRel, outer, inner, joinType, restrict, mergeable)
	}
}

// selectMergeClauses returns the mergejoinable clauses of restrict whose
// operands each come entirely from one of the two inputs.
func selectMergeClauses(restrict []*memo.RestrictInfo, outer, inner *memo.RelNode) []*memo.RestrictInfo {
	var res []*memo.RestrictInfo
	for _, ri := range restrict {
		if !ri.CanMergeJoin() || ri.LeftRelids.Empty() || ri.RightRelids.Empty() {
			continue
		}
		if (ri.LeftRelids.SubsetOf(outer.Relids) && ri.RightRelids.SubsetOf(inner.Relids)) ||
			(ri.LeftRelids.SubsetOf(inner.Relids) && ri.RightRelids.SubsetOf(outer.Relids)) {
			res = append(res, ri)
		}
	}
	return res
}

func newJoinPath(
	typ memo.PathType, joinRel *memo.RelNode, outer, inner *memo.Path,
	joinType opt.JoinType, restrict []*memo.RestrictInfo,
) *memo.Path {
	return &memo.Path{
		Type:         typ,
		Parent:       joinRel,
		Outer:        outer,
		Inner:        inner,
		JoinType:     joinType,
		JoinRestrict: restrict,
	}
}

// addNestLoopPaths pairs every outer path with the cheapest inner path. The
// join preserves the ordering of the outer path.
func (o *Optimizer) addNestLoopPaths(
	joinRel, outer, inner *memo.RelNode, joinType opt.JoinType, restrict []*memo.RestrictInfo,
) {
	for _, outerPath := range outer.Paths {
		p := newJoinPath(memo.NestLoopPath, joinRel, outerPath, inner.CheapestTotalPath, joinType, restrict)
		p.PathKeys = ordering.ForJoin(outerPath.PathKeys)
		o.coster.costNestLoop(p)
		o.mem.AddPath(joinRel, p)
	}
}

// addSortedMergePaths merges the cheapest paths of both inputs on all the
// mergeable clauses, sorting each input unless it is already ordered.
func (o *Optimizer) addSortedMergePaths(
	joinRel, outer, inner *memo.RelNode,
	joinType opt.JoinType,
	restrict, mergeable []*memo.RestrictInfo,
) {
	keys := ordering.FromMergeClauses(&o.reg, mergeable)
	outerPath, innerPath := outer.CheapestTotalPath, inner.CheapestTotalPath

	p := newJoinPath(memo.MergeJoinPath, joinRel, outerPath, innerPath, joinType, restrict)
	p.MergeClauses = mergeable
	if !keys.ContainedIn(outerPath.PathKeys) {
		p.OuterSortKeys = keys
	}
	if !keys.ContainedIn(innerPath.PathKeys) {
		p.InnerSortKeys = keys
	}
	p.PathKeys = ordering.ForJoin(outerOrdering(outerPath, p.OuterSortKeys))
	o.coster.costMergeJoin(p)
	o.mem.AddPath(joinRel, p)
}

// addPresortedMergePaths merges every ordered outer path on the clauses its
// ordering already satisfies. The inner input is the cheapest inner path
// with a suitable ordering, or the cheapest inner path sorted explicitly.
func (o *Optimizer) addPresortedMergePaths(
	joinRel, outer, inner *memo.RelNode,
	joinType opt.JoinType,
	restrict, mergeable []*memo.RestrictInfo,
) {
	c := o.mem.Coster()
	for _, outerPath := range outer.Paths {
		if len(outerPath.PathKeys) == 0 {
			continue
		}
		clauses := ordering.FindMergeClauses(outerPath.PathKeys, mergeable)
		if len(clauses) == 0 {
			continue
		}
		innerKeys := ordering.FromMergeClauses(&o.reg, clauses)

		var innerSortKeys props.PathKeys
		innerPath := CheapestPathForPathKeys(inner.Paths, innerKeys, opt.TotalCost, c)
		if innerPath == nil {
			innerPath = inner.CheapestTotalPath
			innerSortKeys = innerKeys
		}

		p := newJoinPath(memo.MergeJoinPath, joinRel, outerPath, innerPath, joinType, restrict)
		p.MergeClauses = clauses
		p.InnerSortKeys = innerSortKeys
		p.PathKeys = ordering.ForJoin(outerPath.PathKeys)
		o.coster.costMergeJoin(p)
		o.mem.AddPath(joinRel, p)
	}
}

// addHashPaths adds a hash join of the cheapest paths of both inputs for
// every group of mergeable clauses sharing a merge ordering. Hash joins
// produce unordered output.
func (o *Optimizer) addHashPaths(
	joinRel, outer, inner *memo.RelNode,
	joinType opt.JoinType,
	restrict, mergeable []*memo.RestrictInfo,
) {
	for _, group := range ordering.GroupClausesByOrder(mergeable, inner.Relids) {
		p := newJoinPath(memo.HashJoinPath, joinRel, outer.CheapestTotalPath, inner.CheapestTotalPath, joinType, restrict)
		p.HashClauses = group.Clauses
		o.coster.costHashJoin(p)
		o.mem.AddPath(joinRel, p)
	}
}

// outerOrdering returns the ordering of the outer input of a merge join.
func outerOrdering(outerPath *memo.Path, sortKeys props.PathKeys) props.PathKeys {
	if len(sortKeys) > 0 {
		return sortKeys
	}
	return outerPath.PathKeys
}
