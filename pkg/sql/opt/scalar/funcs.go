// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package scalar

import "github.com/cockroachdb/relplan/pkg/sql/opt"

// Equal returns true if the two expressions are structurally identical.
// Display names are ignored.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	switch t := a.(type) {
	case *Variable:
		o, ok := b.(*Variable)
		return ok && t.Rel == o.Rel && t.Attr == o.Attr && t.Type == o.Type && t.TypeMod == o.TypeMod

	case *Const:
		o, ok := b.(*Const)
		return ok && t.Type == o.Type && t.Value == o.Value

	case *FuncCall:
		o, ok := b.(*FuncCall)
		if !ok || t.Func != o.Func || t.Type != o.Type || len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !Equal(t.Args[i], o.Args[i]) {
				return false
			}
		}
		return true

	case *OpExpr:
		o, ok := b.(*OpExpr)
		return ok && t.Operator == o.Operator && Equal(t.Left, o.Left) && Equal(t.Right, o.Right)
	}
	return false
}

// LeftOp returns the left operand of a binary operator clause, or nil if e is
// not one.
func LeftOp(e Expr) Expr {
	if op, ok := e.(*OpExpr); ok {
		return op.Left
	}
	return nil
}

// RightOp returns the right operand of a binary operator clause, or nil if e
// is not one.
func RightOp(e Expr) Expr {
	if op, ok := e.(*OpExpr); ok {
		return op.Right
	}
	return nil
}

// Rels returns the set of base relations referenced by the expression.
func Rels(e Expr) opt.RelSet {
	var rels opt.RelSet
	collectRels(e, &rels)
	return rels
}

func collectRels(e Expr, rels *opt.RelSet) {
	switch t := e.(type) {
	case *Variable:
		rels.Add(t.Rel)
	case *FuncCall:
		for _, arg := range t.Args {
			collectRels(arg, rels)
		}
	case *OpExpr:
		collectRels(t.Left, rels)
		collectRels(t.Right, rels)
	}
}

// Variables returns the distinct column references in the expression, in the
// order they are first encountered.
func Variables(e Expr) []*Variable {
	var res []*Variable
	var walk func(e Expr)
	walk = func(e Expr) {
		switch t := e.(type) {
		case *Variable:
			for _, v := range res {
				if Equal(v, t) {
					return
				}
			}
			res = append(res, t)
		case *FuncCall:
			for _, arg := range t.Args {
				walk(arg)
			}
		case *OpExpr:
			walk(t.Left)
			walk(t.Right)
		}
	}
	walk(e)
	return res
}
