// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package norm_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/norm"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
	"github.com/cockroachdb/relplan/pkg/sql/opt/testutils/testcat"
	"github.com/stretchr/testify/require"
)

func TestRemoveRedundant(t *testing.T) {
	catalog := testcat.New()
	eq, lt := catalog.Operator("="), catalog.Operator("<")
	v := func(rel opt.RelID, attr cat.AttrNum, name string) *scalar.Variable {
		return &scalar.Variable{Rel: rel, Attr: attr, Type: testcat.Int4Type, Name: name}
	}
	clause := func(op cat.OperatorID, name string, left, right scalar.Expr) *memo.RestrictInfo {
		return memo.NewRestrictInfo(&scalar.OpExpr{Operator: op, Left: left, Right: right, Name: name}, catalog)
	}
	plus := func(a, b scalar.Expr) scalar.Expr {
		return &scalar.FuncCall{Func: 1, Type: testcat.Int4Type, Args: []scalar.Expr{a, b}, Name: "plus"}
	}

	ax, ay := v(1, 1, "a.x"), v(1, 2, "a.y")
	bx, by := v(2, 1, "b.x"), v(2, 2, "b.y")
	cx := v(3, 1, "c.x")
	five := &scalar.Const{Type: testcat.Int4Type, Value: "5"}

	axbx := clause(eq, "=", ax, bx)
	axbx2 := clause(eq, "=", v(1, 1, ""), v(2, 1, ""))
	bxax := clause(eq, "=", bx, ax)
	aybx := clause(eq, "=", ay, bx)
	axcx := clause(eq, "=", ax, cx)
	axltbx := clause(lt, "<", ax, bx)
	aybyEqFive := clause(eq, "=", plus(ay, by), five)
	aybyEqFive2 := clause(eq, "=", plus(ay, by), &scalar.Const{Type: testcat.Int4Type, Value: "6"})

	// a.x, b.x, a.y and c.x are all known equal. plus(a.y, b.y) is equal to
	// both constants.
	reg := &props.EquivRegistry{}
	reg.Init(context.Background())
	for _, ri := range []*memo.RestrictInfo{axbx, aybx, axcx, aybyEqFive, aybyEqFive2} {
		reg.AddEquijoinedKeys(ri.LeftKey(), ri.RightKey())
	}
	reg.Close()

	testCases := []struct {
		name     string
		list     []*memo.RestrictInfo
		joinType opt.JoinType
		expected []*memo.RestrictInfo
	}{
		{name: "empty", list: nil, expected: nil},
		{name: "same pointer", list: []*memo.RestrictInfo{axbx, axbx}, expected: []*memo.RestrictInfo{axbx}},
		{name: "structural duplicate", list: []*memo.RestrictInfo{axbx, axbx2}, expected: []*memo.RestrictInfo{axbx}},
		{name: "commuted", list: []*memo.RestrictInfo{axbx, bxax}, expected: []*memo.RestrictInfo{axbx}},
		{name: "implied", list: []*memo.RestrictInfo{axbx, aybx}, expected: []*memo.RestrictInfo{axbx}},
		{name: "different sides", list: []*memo.RestrictInfo{axbx, axcx}, expected: []*memo.RestrictInfo{axbx, axcx}},
		{name: "not mergejoinable", list: []*memo.RestrictInfo{axltbx, axbx}, expected: []*memo.RestrictInfo{axltbx, axbx}},
		{
			name:     "var = const inner join",
			list:     []*memo.RestrictInfo{aybyEqFive, aybyEqFive2},
			joinType: opt.InnerJoin,
			expected: []*memo.RestrictInfo{aybyEqFive},
		},
		{
			name:     "var = const outer join",
			list:     []*memo.RestrictInfo{aybyEqFive, aybyEqFive2},
			joinType: opt.LeftJoin,
			expected: []*memo.RestrictInfo{aybyEqFive, aybyEqFive2},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var r norm.RedundancyEliminator
			r.Init(context.Background(), reg)
			res := r.RemoveRedundant(tc.list, tc.joinType)
			require.Equal(t, tc.expected, res)
			require.Equal(t, len(tc.list)-len(tc.expected), r.Removed())
		})
	}
}
