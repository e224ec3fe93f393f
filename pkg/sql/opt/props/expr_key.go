// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"fmt"

	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
)

// ExprKey identifies "the value of expression Expr, sorted by operator
// SortOp". It is the unit that equivalence classes and sort positions are
// built from. ExprKeys are immutable.
type ExprKey struct {
	Expr   scalar.Expr
	SortOp cat.OperatorID
}

// MakeExprKey constructs a new ExprKey.
func MakeExprKey(e scalar.Expr, sortOp cat.OperatorID) ExprKey {
	return ExprKey{Expr: e, SortOp: sortOp}
}

// Equals returns true if the two keys have structurally equal expressions and
// the same sort operator.
func (k ExprKey) Equals(other ExprKey) bool {
	return k.SortOp == other.SortOp && scalar.Equal(k.Expr, other.Expr)
}

func (k ExprKey) String() string {
	return fmt.Sprintf("%s/%d", k.Expr, k.SortOp)
}

// Format renders the key using the operator's display name.
func (k ExprKey) Format(ops cat.Operators) string {
	if ops == nil {
		return k.String()
	}
	return fmt.Sprintf("%s %s", k.Expr, ops.OperatorName(k.SortOp))
}
