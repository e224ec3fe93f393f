// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package ordering builds the pathkeys describing the sort order of query
// results, index scans, merge joins and join outputs.
//
// Pathkeys built from ORDER BY clauses are not canonical; they become
// comparable to the others only after the equivalence registry is closed and
// they are passed through EquivRegistry.Canonicalize. All other builders
// return canonical pathkeys.
package ordering

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
)

// SortClause is one ORDER BY item. Ref is the ResNo of the target list entry
// being sorted, and SortOp the operator it is sorted by.
type SortClause struct {
	Ref    int
	SortOp cat.OperatorID
}

// FromSortClauses builds the pathkeys for a query's ORDER BY list. Each
// position is a singleton holding the referenced target expression.
func FromSortClauses(clauses []SortClause, tlist []memo.TargetEntry) props.PathKeys {
	if len(clauses) == 0 {
		return nil
	}
	res := make(props.PathKeys, len(clauses))
	for i, sc := range clauses {
		te := findTargetEntry(tlist, sc.Ref)
		if te == nil {
			panic(errors.AssertionFailedf("ORDER BY item %d not found in target list", sc.Ref))
		}
		res[i] = props.NewSingleton(props.MakeExprKey(te.Expr, sc.SortOp))
	}
	return res
}

func findTargetEntry(tlist []memo.TargetEntry, resNo int) *memo.TargetEntry {
	for i := range tlist {
		if tlist[i].ResNo == resNo {
			return &tlist[i]
		}
	}
	return nil
}

// ForJoin returns the pathkeys of a join path's output. Nested loop and merge
// joins preserve the order of their outer input; the inner order is lost.
func ForJoin(outer props.PathKeys) props.PathKeys {
	return outer
}
