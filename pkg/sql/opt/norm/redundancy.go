// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package norm simplifies the restriction lists the memo builds for joins.
package norm

import (
	"context"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
	"github.com/cockroachdb/relplan/pkg/util/log"
)

// RedundancyEliminator removes duplicate and redundant clauses from join
// restriction lists. A mergejoinable clause is redundant if an earlier clause
// of the list relates the same equivalence classes between the same sides of
// the join: once r.a = s.a is applied, r.a = s.b adds nothing if a and b are
// known to be equal.
//
// It implements memo.Simplifier and must be used only after the equivalence
// registry is closed.
type RedundancyEliminator struct {
	ctx     context.Context
	reg     *props.EquivRegistry
	removed int
}

var _ memo.Simplifier = &RedundancyEliminator{}

// Init prepares the eliminator to use the given registry.
func (r *RedundancyEliminator) Init(ctx context.Context, reg *props.EquivRegistry) {
	// This initialization pattern ensures that fields are not unwittingly
	// reused. Field reuse must be explicit.
	*r = RedundancyEliminator{ctx: ctx, reg: reg}
}

// Removed returns the number of clauses removed so far.
func (r *RedundancyEliminator) Removed() int {
	return r.removed
}

// RemoveRedundant is part of the memo.Simplifier interface. The order of the
// kept clauses is preserved.
func (r *RedundancyEliminator) RemoveRedundant(
	list []*memo.RestrictInfo, joinType opt.JoinType,
) []*memo.RestrictInfo {
	var res []*memo.RestrictInfo
	for _, ri := range list {
		if r.isRedundant(ri, res, joinType) {
			r.removed++
			continue
		}
		res = append(res, ri)
	}
	if n := len(list) - len(res); n > 0 && log.V(3) {
		log.Infof(r.ctx, "removed %d redundant join clauses", n)
	}
	return res
}

func (r *RedundancyEliminator) isRedundant(
	ri *memo.RestrictInfo, kept []*memo.RestrictInfo, joinType opt.JoinType,
) bool {
	for _, k := range kept {
		if k == ri || scalar.Equal(k.Clause, ri.Clause) {
			return true
		}
	}
	if !ri.CanMergeJoin() {
		return false
	}

	left, right := ri.MergeClausePathKeys(r.reg)
	redundant := false
	for _, k := range kept {
		if !k.CanMergeJoin() {
			continue
		}
		kLeft, kRight := k.MergeClausePathKeys(r.reg)
		if !left.Equals(kLeft) || !right.Equals(kRight) {
			continue
		}
		if (ri.LeftRelids.Equals(k.LeftRelids) && ri.RightRelids.Equals(k.RightRelids)) ||
			(ri.LeftRelids.Equals(k.RightRelids) && ri.RightRelids.Equals(k.LeftRelids)) {
			redundant = true
			break
		}
	}
	if !redundant {
		return false
	}

	// A "var = const" clause filters the nullable side of an outer join, so
	// it is never redundant there.
	if joinType.IsOuter() && (ri.LeftRelids.Empty() || ri.RightRelids.Empty()) {
		return false
	}
	return true
}
