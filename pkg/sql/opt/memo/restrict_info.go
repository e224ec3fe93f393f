// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
)

// RestrictInfo is a WHERE or JOIN clause annotated with the facts the planner
// derives from it. RestrictInfos are shared by pointer between the relation
// nodes that hold them; a single clause has exactly one RestrictInfo per
// query.
type RestrictInfo struct {
	Clause scalar.Expr

	// ClauseRelids is the set of base relations referenced by the clause.
	ClauseRelids opt.RelSet

	// LeftRelids and RightRelids are the relations referenced by each operand
	// of a binary clause. They are empty for other clauses.
	LeftRelids  opt.RelSet
	RightRelids opt.RelSet

	// MergeJoinOp is the clause's operator if it is a mergejoinable equality,
	// else zero. LeftSortOp and RightSortOp are the operators the two inputs
	// of a merge join must be sorted by.
	MergeJoinOp cat.OperatorID
	LeftSortOp  cat.OperatorID
	RightSortOp cat.OperatorID

	// leftPathKey and rightPathKey cache the canonical positions of the two
	// sort keys once the equivalence registry is closed.
	leftPathKey  *props.PathKey
	rightPathKey *props.PathKey
}

// NewRestrictInfo annotates a clause. The clause is mergejoinable if it is a
// binary operator clause and ops reports merge join sort operators for its
// operator.
func NewRestrictInfo(clause scalar.Expr, ops cat.Operators) *RestrictInfo {
	ri := &RestrictInfo{Clause: clause, ClauseRelids: scalar.Rels(clause)}
	op, ok := clause.(*scalar.OpExpr)
	if !ok || op.Left == nil || op.Right == nil {
		return ri
	}
	ri.LeftRelids = scalar.Rels(op.Left)
	ri.RightRelids = scalar.Rels(op.Right)
	if ops != nil {
		if leftSort, rightSort, ok := ops.MergeJoinInfo(op.Operator); ok {
			ri.MergeJoinOp = op.Operator
			ri.LeftSortOp = leftSort
			ri.RightSortOp = rightSort
		}
	}
	return ri
}

// CanMergeJoin returns true if the clause is a mergejoinable equality.
func (ri *RestrictInfo) CanMergeJoin() bool {
	return ri.MergeJoinOp != 0
}

// IsJoinClause returns true if the clause references more than one relation.
func (ri *RestrictInfo) IsJoinClause() bool {
	return ri.ClauseRelids.Len() > 1
}

// LeftKey returns the sort key of the clause's left operand. It panics if the
// clause is not mergejoinable.
func (ri *RestrictInfo) LeftKey() props.ExprKey {
	ri.checkMergeJoinable()
	return props.MakeExprKey(scalar.LeftOp(ri.Clause), ri.LeftSortOp)
}

// RightKey returns the sort key of the clause's right operand. It panics if
// the clause is not mergejoinable.
func (ri *RestrictInfo) RightKey() props.ExprKey {
	ri.checkMergeJoinable()
	return props.MakeExprKey(scalar.RightOp(ri.Clause), ri.RightSortOp)
}

// MergeClausePathKeys returns the canonical positions of the clause's left and
// right sort keys. The result is cached once the registry is closed.
func (ri *RestrictInfo) MergeClausePathKeys(reg *props.EquivRegistry) (left, right *props.PathKey) {
	if ri.leftPathKey != nil {
		return ri.leftPathKey, ri.rightPathKey
	}
	left, right = reg.Resolve(ri.LeftKey()), reg.Resolve(ri.RightKey())
	if reg.IsClosed() {
		ri.leftPathKey, ri.rightPathKey = left, right
	}
	return left, right
}

func (ri *RestrictInfo) checkMergeJoinable() {
	if !ri.CanMergeJoin() {
		panic(errors.AssertionFailedf("clause %s is not mergejoinable", ri.Clause.String()))
	}
}

func (ri *RestrictInfo) String() string {
	return ri.Clause.String()
}

// containsRestrictInfo returns true if the list holds the given RestrictInfo.
func containsRestrictInfo(list []*RestrictInfo, ri *RestrictInfo) bool {
	for _, item := range list {
		if item == ri {
			return true
		}
	}
	return false
}
