// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package ordering

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
)

// FromMergeClauses returns the canonical pathkeys an input must be sorted by
// to be merge joined on the given clauses, in clause order. Each position is
// the class of the clause's left operand under its left sort operator.
//
// Every clause must be mergejoinable.
func FromMergeClauses(reg *props.EquivRegistry, clauses []*memo.RestrictInfo) props.PathKeys {
	if len(clauses) == 0 {
		return nil
	}
	res := make(props.PathKeys, len(clauses))
	for i, ri := range clauses {
		if !ri.CanMergeJoin() {
			panic(errors.AssertionFailedf("clause %s has no mergejoin operator", ri.Clause.String()))
		}
		res[i], _ = ri.MergeClausePathKeys(reg)
	}
	return res
}

// FindMergeClauses returns the longest list of clauses that can be merged on
// using an input ordered by pathkeys. Positions are matched in order. Within
// a position, each member is tried in order, and the first unused clause
// with an operand equal to that member (under the matching sort operator) is
// taken. Matching stops at the first position no clause matches. Clauses that
// are not mergejoinable are ignored.
func FindMergeClauses(pathkeys props.PathKeys, restrict []*memo.RestrictInfo) []*memo.RestrictInfo {
	var res []*memo.RestrictInfo
	for _, pk := range pathkeys {
		var matched *memo.RestrictInfo
		for _, key := range pk.Members() {
			for _, ri := range restrict {
				if !ri.CanMergeJoin() || containsClause(res, ri) {
					continue
				}
				if (key.SortOp == ri.LeftSortOp && scalar.Equal(key.Expr, scalar.LeftOp(ri.Clause))) ||
					(key.SortOp == ri.RightSortOp && scalar.Equal(key.Expr, scalar.RightOp(ri.Clause))) {
					matched = ri
					break
				}
			}
			if matched != nil {
				break
			}
		}
		if matched == nil {
			break
		}
		res = append(res, matched)
	}
	return res
}

func containsClause(list []*memo.RestrictInfo, ri *memo.RestrictInfo) bool {
	for _, item := range list {
		if item == ri {
			return true
		}
	}
	return false
}

// MergeOrder identifies a merge join ordering: the join operator and the
// operators each input is sorted by.
type MergeOrder struct {
	JoinOp      cat.OperatorID
	LeftSortOp  cat.OperatorID
	RightSortOp cat.OperatorID
}

// JoinKey is a pair of operands of a join clause, oriented by input.
type JoinKey struct {
	Outer scalar.Expr
	Inner scalar.Expr
}

// MergeInfo groups the mergejoinable clauses of a join that share a merge
// ordering. Keys[i] holds the operands of Clauses[i].
type MergeInfo struct {
	Order   MergeOrder
	Clauses []*memo.RestrictInfo
	Keys    []JoinKey
}

// GroupClausesByOrder groups the mergejoinable clauses of a restriction list
// by merge ordering. Groups are returned in the order their first clause
// appears. The join keys of each clause are oriented so that Inner is the
// operand that references the inner relations.
func GroupClausesByOrder(restrict []*memo.RestrictInfo, innerRelids opt.RelSet) []MergeInfo {
	var res []MergeInfo
	for _, ri := range restrict {
		if !ri.CanMergeJoin() {
			continue
		}
		order := MergeOrder{JoinOp: ri.MergeJoinOp, LeftSortOp: ri.LeftSortOp, RightSortOp: ri.RightSortOp}
		key := JoinKey{Outer: scalar.LeftOp(ri.Clause), Inner: scalar.RightOp(ri.Clause)}
		if !ri.LeftRelids.Empty() && ri.LeftRelids.SubsetOf(innerRelids) {
			key.Outer, key.Inner = key.Inner, key.Outer
		}

		idx := -1
		for i := range res {
			if res[i].Order == order {
				idx = i
				break
			}
		}
		if idx < 0 {
			res = append(res, MergeInfo{Order: order})
			idx = len(res) - 1
		}
		res[idx].Clauses = append(res[idx].Clauses, ri)
		res[idx].Keys = append(res[idx].Keys, key)
	}
	return res
}
