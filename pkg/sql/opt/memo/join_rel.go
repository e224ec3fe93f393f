// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/util/log"
)

// BuildJoinRel returns the join relation node for joinRelids, which must be
// the disjoint union of the outer and inner relids, creating it if it does
// not exist yet. It also returns the restriction list for this particular
// outer/inner pairing: the join clauses of either input that reference no
// relation outside of joinRelids, minus duplicate and redundant clauses.
//
// A join relation node is created once, by whichever pairing reaches its
// relid set first. Its target list, join info and size estimate do not
// depend on the pairing, so later pairings only compute their restriction
// list.
func (m *Memo) BuildJoinRel(
	joinRelids opt.RelSet, outer, inner *RelNode, joinType opt.JoinType,
) (*RelNode, []*RestrictInfo) {
	if outer.Relids.Intersects(inner.Relids) || !outer.Relids.Union(inner.Relids).Equals(joinRelids) {
		panic(errors.AssertionFailedf(
			"cannot build join rel %s from %s and %s", joinRelids, outer.Relids, inner.Relids,
		))
	}

	if joinRel := m.FindJoinRel(joinRelids); joinRel != nil {
		m.stats.JoinRelsReused++
		return joinRel, m.buildJoinRestrictList(joinRel, outer, inner, joinType)
	}

	joinRel := &RelNode{
		Kind:   JoinRel,
		Relids: joinRelids.Copy(),
		Source: cat.JoinSource,
	}

	// The target list is the concatenation of both inputs' target lists. Its
	// order depends on the first pairing, but its contents do not.
	joinRel.TargetList = newJoinTargetList(outer.TargetList, 1)
	joinRel.TargetList = append(joinRel.TargetList,
		newJoinTargetList(inner.TargetList, len(joinRel.TargetList)+1)...)

	restrict := m.buildJoinRestrictList(joinRel, outer, inner, joinType)
	m.buildJoinJoinList(joinRel, outer, inner)

	if m.coster == nil {
		panic(errors.AssertionFailedf("memo has no coster"))
	}
	joinRel.Rows, joinRel.Width = m.coster.EstimateJoinSize(joinRel, outer, inner, joinType, restrict)

	m.joinRels = append(m.joinRels, joinRel)
	m.stats.JoinRelsBuilt++
	log.VEventf(m.ctx, 2, "built join rel %s: %d restrictions, %d join infos, rows=%.0f",
		joinRelids, len(restrict), len(joinRel.JoinInfo), joinRel.Rows)
	return joinRel, restrict
}

// buildJoinRestrictList collects the clauses of both inputs that become
// restrictions of the join, and removes duplicates and redundant clauses.
// Clauses arrive from both inputs, so duplicates are expected.
func (m *Memo) buildJoinRestrictList(
	joinRel, outer, inner *RelNode, joinType opt.JoinType,
) []*RestrictInfo {
	list := graduatedClauses(joinRel, outer.JoinInfo)
	list = append(list, graduatedClauses(joinRel, inner.JoinInfo)...)
	return m.simplifier.RemoveRedundant(list, joinType)
}

// buildJoinJoinList carries the clauses of both inputs that still wait for
// relations outside of the join into the join's JoinInfo list.
func (m *Memo) buildJoinJoinList(joinRel, outer, inner *RelNode) {
	carryJoinInfo(joinRel, outer.JoinInfo)
	carryJoinInfo(joinRel, inner.JoinInfo)
}

func graduatedClauses(joinRel *RelNode, joinInfo []*JoinInfo) []*RestrictInfo {
	var res []*RestrictInfo
	for _, ji := range joinInfo {
		if ji.UnjoinedRelids.SubsetOf(joinRel.Relids) {
			res = append(res, ji.RestrictInfos...)
		}
	}
	return res
}

func carryJoinInfo(joinRel *RelNode, joinInfo []*JoinInfo) {
	for _, ji := range joinInfo {
		unjoined := ji.UnjoinedRelids.Difference(joinRel.Relids)
		if unjoined.Empty() {
			// These clauses graduated to restrictions.
			continue
		}
		joinRel.ensureJoinInfo(unjoined).addRestrictInfos(ji.RestrictInfos)
	}
}
