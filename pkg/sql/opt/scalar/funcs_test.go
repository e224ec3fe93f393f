// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package scalar

import (
	"testing"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	ra := &Variable{Rel: 1, Attr: 1, Type: 23, Name: "r.a"}
	ra2 := &Variable{Rel: 1, Attr: 1, Type: 23, Name: "alias.a"}
	sa := &Variable{Rel: 2, Attr: 1, Type: 23, Name: "s.a"}
	one := &Const{Type: 23, Value: "1"}

	testCases := []struct {
		a, b     Expr
		expected bool
	}{
		{a: ra, b: ra, expected: true},
		{a: ra, b: ra2, expected: true},
		{a: ra, b: sa, expected: false},
		{a: ra, b: one, expected: false},
		{a: one, b: &Const{Type: 23, Value: "1"}, expected: true},
		{a: one, b: &Const{Type: 20, Value: "1"}, expected: false},
		{
			a:        &FuncCall{Func: 7, Args: []Expr{ra, sa}, Name: "f"},
			b:        &FuncCall{Func: 7, Args: []Expr{ra2, sa}, Name: "g"},
			expected: true,
		},
		{
			a:        &FuncCall{Func: 7, Args: []Expr{ra, sa}},
			b:        &FuncCall{Func: 7, Args: []Expr{sa, ra}},
			expected: false,
		},
		{
			a:        &OpExpr{Operator: 96, Left: ra, Right: sa},
			b:        &OpExpr{Operator: 96, Left: ra2, Right: sa, Name: "="},
			expected: true,
		},
		{
			a:        &OpExpr{Operator: 96, Left: ra, Right: sa},
			b:        &OpExpr{Operator: 96, Left: sa, Right: ra},
			expected: false,
		},
		{a: nil, b: nil, expected: true},
		{a: ra, b: nil, expected: false},
	}

	for i, tc := range testCases {
		if res := Equal(tc.a, tc.b); res != tc.expected {
			t.Errorf("%d: Equal(%v, %v) = %v, expected %v", i, tc.a, tc.b, res, tc.expected)
		}
	}
}

func TestOperandsAndRels(t *testing.T) {
	ra := &Variable{Rel: 1, Attr: 1, Name: "r.a"}
	sc := &Variable{Rel: 3, Attr: 2, Name: "s.c"}
	clause := &OpExpr{Operator: 96, Left: ra, Right: &FuncCall{Func: 1, Args: []Expr{sc}, Name: "abs"}, Name: "="}

	require.Same(t, ra, LeftOp(clause))
	require.Equal(t, "abs(s.c)", RightOp(clause).String())
	require.Nil(t, LeftOp(ra))
	require.Nil(t, RightOp(ra))

	require.True(t, Rels(clause).Equals(opt.MakeRelSet(1, 3)))
	require.True(t, Rels(&Const{Value: "1"}).Empty())
	require.Equal(t, "r.a = abs(s.c)", clause.String())
}

func TestVariables(t *testing.T) {
	ra := &Variable{Rel: 1, Attr: 1, Name: "r.a"}
	sb := &Variable{Rel: 2, Attr: 2, Name: "s.b"}
	e := &OpExpr{
		Operator: 1,
		Left:     &FuncCall{Func: 1, Args: []Expr{ra, sb}},
		Right:    &Variable{Rel: 1, Attr: 1, Name: "r.a2"},
	}
	vars := Variables(e)
	require.Len(t, vars, 2)
	require.Same(t, ra, vars[0])
	require.Same(t, sb, vars[1])
	require.Empty(t, Variables(&Const{Value: "1"}))
}
