// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package scalar defines the scalar expression trees the planner reasons
// about: column references, constants, function calls and binary operator
// clauses. Expressions are immutable once built and may be shared freely.
package scalar

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
)

// Expr is a scalar expression.
type Expr interface {
	fmt.Stringer

	// Op returns the kind of the expression.
	Op() Operator
}

// Operator is the kind of a scalar expression node.
type Operator uint8

const (
	// UnknownOp is not a valid expression kind.
	UnknownOp Operator = iota
	// VariableOp is a column reference.
	VariableOp
	// ConstOp is a literal.
	ConstOp
	// FuncOp is a function call.
	FuncOp
	// BinaryOp is a binary operator clause.
	BinaryOp
)

// Variable references one attribute of a base relation.
type Variable struct {
	Rel     opt.RelID
	Attr    cat.AttrNum
	Type    cat.TypeID
	TypeMod int32

	// Name is used for display only and does not take part in equality.
	Name string
}

// Const is a literal value. Value holds its textual form.
type Const struct {
	Type  cat.TypeID
	Value string
}

// FuncCall applies a function to a list of arguments.
type FuncCall struct {
	Func cat.FuncID
	Type cat.TypeID
	Args []Expr

	// Name is used for display only.
	Name string
}

// OpExpr is a binary operator clause such as "r.a = s.a".
type OpExpr struct {
	Operator cat.OperatorID
	Left     Expr
	Right    Expr

	// Name is the operator's display name.
	Name string
}

var _ Expr = &Variable{}
var _ Expr = &Const{}
var _ Expr = &FuncCall{}
var _ Expr = &OpExpr{}

// Op is part of the Expr interface.
func (*Variable) Op() Operator { return VariableOp }

// Op is part of the Expr interface.
func (*Const) Op() Operator { return ConstOp }

// Op is part of the Expr interface.
func (*FuncCall) Op() Operator { return FuncOp }

// Op is part of the Expr interface.
func (*OpExpr) Op() Operator { return BinaryOp }

func (v *Variable) String() string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("$%d.%d", v.Rel, v.Attr)
}

func (c *Const) String() string {
	return c.Value
}

func (f *FuncCall) String() string {
	var b strings.Builder
	if f.Name != "" {
		b.WriteString(f.Name)
	} else {
		fmt.Fprintf(&b, "func%d", f.Func)
	}
	b.WriteByte('(')
	for i, arg := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (e *OpExpr) String() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("op%d", e.Operator)
	}
	return fmt.Sprintf("%s %s %s", e.Left, name, e.Right)
}
