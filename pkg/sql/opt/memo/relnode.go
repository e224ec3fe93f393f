// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
)

// RelKind distinguishes the kinds of relation nodes.
type RelKind uint8

const (
	// BaseRel is a table, subquery or function in the query's FROM list.
	BaseRel RelKind = iota
	// OtherChildRel is an auxiliary relation such as an inheritance child. It
	// is not part of the join search.
	OtherChildRel
	// JoinRel is the join of two or more base relations.
	JoinRel
)

func (k RelKind) String() string {
	switch k {
	case BaseRel:
		return "base"
	case OtherChildRel:
		return "other"
	case JoinRel:
		return "join"
	}
	return "unknown"
}

// SafeValue implements the redact.SafeValue interface.
func (RelKind) SafeValue() {}

// TargetEntry is one output column of a relation node. ResNo is its 1-based
// position in the target list.
type TargetEntry struct {
	ResNo int
	Expr  scalar.Expr
}

// JoinInfo holds the join clauses of a relation that are waiting for the
// relations in UnjoinedRelids to be joined in. Once a join relation covers
// UnjoinedRelids, the clauses become restrictions of that join.
type JoinInfo struct {
	UnjoinedRelids opt.RelSet
	RestrictInfos  []*RestrictInfo
}

// addRestrictInfos unions the given clauses into the JoinInfo, skipping those
// that are already present.
func (ji *JoinInfo) addRestrictInfos(list []*RestrictInfo) {
	for _, ri := range list {
		if !containsRestrictInfo(ji.RestrictInfos, ri) {
			ji.RestrictInfos = append(ji.RestrictInfos, ri)
		}
	}
}

// RelNode is the planner's representation of a base relation or of a join of
// base relations. There is at most one RelNode per relation id set in a
// memo.
type RelNode struct {
	Kind RelKind

	// Relids is the set of base relations the node covers. It is a singleton
	// for base and other relations.
	Relids opt.RelSet

	// Rows and Width are the estimated output size after applying the node's
	// restrictions.
	Rows  float64
	Width int

	// TargetList is the list of expressions the node must produce for upper
	// levels of the plan.
	TargetList []TargetEntry

	// Paths is the list of candidate access or join strategies that are not
	// dominated by another candidate.
	Paths []*Path

	CheapestStartupPath *Path
	CheapestTotalPath   *Path

	// Source is the kind of range table entry the node was built from. It is
	// JoinSource for join relations.
	Source cat.DataSourceKind

	// Table, Pages, Tuples and Indexes describe the underlying table of a
	// relation source. They are zero for the other kinds.
	Table   cat.TableID
	Pages   float64
	Tuples  float64
	Indexes []*cat.Index

	// BaseRestrictInfo holds the clauses that reference only this relation.
	// Only base and other relations have them.
	BaseRestrictInfo []*RestrictInfo

	// JoinInfo holds the clauses that reference this relation and at least one
	// relation outside of it, grouped by the set of outside relations.
	JoinInfo []*JoinInfo
}

// IsJoin returns true for join relations.
func (r *RelNode) IsJoin() bool {
	return r.Kind == JoinRel
}

// FindJoinInfo returns the JoinInfo entry whose unjoined set equals the given
// set, or nil if there is none.
func (r *RelNode) FindJoinInfo(unjoined opt.RelSet) *JoinInfo {
	for _, ji := range r.JoinInfo {
		if ji.UnjoinedRelids.Equals(unjoined) {
			return ji
		}
	}
	return nil
}

// ensureJoinInfo returns the JoinInfo entry for the given unjoined set,
// creating it if needed.
func (r *RelNode) ensureJoinInfo(unjoined opt.RelSet) *JoinInfo {
	if ji := r.FindJoinInfo(unjoined); ji != nil {
		return ji
	}
	ji := &JoinInfo{UnjoinedRelids: unjoined.Copy()}
	r.JoinInfo = append(r.JoinInfo, ji)
	return ji
}

// hasTargetExpr returns true if the target list already produces e.
func (r *RelNode) hasTargetExpr(e scalar.Expr) bool {
	for i := range r.TargetList {
		if scalar.Equal(r.TargetList[i].Expr, e) {
			return true
		}
	}
	return false
}

// newJoinTargetList copies a target list, renumbering its entries starting at
// firstResNo. No entries are removed, even if they are not needed above the
// join.
func newJoinTargetList(tlist []TargetEntry, firstResNo int) []TargetEntry {
	res := make([]TargetEntry, len(tlist))
	for i := range tlist {
		res[i] = TargetEntry{ResNo: firstResNo + i, Expr: tlist[i].Expr}
	}
	return res
}
