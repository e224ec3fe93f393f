// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package ordering_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/ordering"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
	"github.com/cockroachdb/relplan/pkg/sql/opt/testutils/testcat"
	"github.com/stretchr/testify/require"
)

// fixture is a memo over r(x, y, z) and s(x, y), with r.x = s.x recorded as
// an equivalence.
type fixture struct {
	tc   *testcat.Catalog
	reg  *props.EquivRegistry
	m    *memo.Memo
	r, s *memo.RelNode
	join *memo.RestrictInfo

	lt, gt, noCom cat.OperatorID
}

func newFixture(t *testing.T, rIndexes ...*cat.Index) *fixture {
	f := &fixture{tc: testcat.New(), reg: &props.EquivRegistry{}}
	f.lt, f.gt = f.tc.Operator("<"), f.tc.Operator(">")
	f.noCom = f.tc.AddOperator(testcat.Operator{Name: "~<~"})

	cols := []testcat.Column{
		{Name: "x", Type: testcat.Int4Type},
		{Name: "y", Type: testcat.Int4Type},
		{Name: "z", Type: testcat.TextType},
	}
	r := f.tc.AddTable(&testcat.Table{Name: "r", Columns: cols, Pages: 10, Tuples: 1000, Indexes: rIndexes})
	s := f.tc.AddTable(&testcat.Table{Name: "s", Columns: cols[:2], Pages: 5, Tuples: 100})
	rt := []cat.DataSource{
		{Kind: cat.RelationSource, Table: r.ID, Name: "r", Columns: r.ColumnNames()},
		{Kind: cat.RelationSource, Table: s.ID, Name: "s", Columns: s.ColumnNames()},
	}

	ctx := context.Background()
	f.reg.Init(ctx)
	f.m = &memo.Memo{}
	f.m.Init(ctx, f.tc, f.tc, rt, f.reg)
	f.r = f.m.BuildBaseRel(1)
	f.s = f.m.BuildBaseRel(2)
	f.join = f.clause("=", f.v(1, 1), f.v(2, 1))
	f.m.DistributeQual(f.join)
	f.reg.Close()
	require.Equal(t, 1, len(f.reg.Classes()))
	return f
}

func (f *fixture) v(rel opt.RelID, attr cat.AttrNum) *scalar.Variable {
	ds := f.m.DataSource(rel)
	return &scalar.Variable{Rel: rel, Attr: attr, Type: testcat.Int4Type, Name: ds.Name + "." + ds.Columns[attr-1]}
}

func (f *fixture) clause(op string, left, right scalar.Expr) *memo.RestrictInfo {
	return memo.NewRestrictInfo(&scalar.OpExpr{Operator: f.tc.Operator(op), Left: left, Right: right, Name: op}, f.tc)
}

func TestFromSortClauses(t *testing.T) {
	f := newFixture(t)
	tlist := []memo.TargetEntry{
		{ResNo: 1, Expr: f.v(1, 2)},
		{ResNo: 2, Expr: f.v(2, 1)},
	}

	keys := ordering.FromSortClauses([]ordering.SortClause{{Ref: 2, SortOp: f.lt}, {Ref: 1, SortOp: f.gt}}, tlist)
	require.Len(t, keys, 2)
	require.Equal(t, 1, keys[0].Len())
	require.True(t, keys[0].First().Equals(props.MakeExprKey(f.v(2, 1), f.lt)))
	require.True(t, keys[1].First().Equals(props.MakeExprKey(f.v(1, 2), f.gt)))

	// Sort pathkeys are singletons until canonicalized.
	class := f.reg.Classes()[0]
	require.NotSame(t, class, keys[0])
	canon := f.reg.Canonicalize(keys)
	require.Same(t, class, canon[0])
	require.Equal(t, 2, canon[0].Len())

	require.Nil(t, ordering.FromSortClauses(nil, tlist))
	require.Panics(t, func() {
		ordering.FromSortClauses([]ordering.SortClause{{Ref: 3, SortOp: f.lt}}, tlist)
	})
}

func TestFromIndex(t *testing.T) {
	// The fixture registers the same operators in the same order.
	ids := testcat.New()
	lt := ids.Operator("<")
	noCom := ids.AddOperator(testcat.Operator{Name: "~<~"})
	lower := ids.AddFunction("lower", testcat.TextType)

	xy := &cat.Index{Name: "r_xy", Keys: []cat.AttrNum{1, 2}, Ordering: []cat.OperatorID{lt, lt}}
	yOdd := &cat.Index{Name: "r_y_odd", Keys: []cat.AttrNum{2}, Ordering: []cat.OperatorID{noCom}}
	hash := &cat.Index{Name: "r_z_hash", Keys: []cat.AttrNum{3}}
	fn := &cat.Index{Name: "r_lower_z", Keys: []cat.AttrNum{3}, Ordering: []cat.OperatorID{lt},
		Func: lower, FuncName: "lower", FuncType: testcat.TextType}
	fnOdd := &cat.Index{Name: "r_lower_z_odd", Keys: []cat.AttrNum{3}, Ordering: []cat.OperatorID{noCom},
		Func: lower, FuncName: "lower", FuncType: testcat.TextType}

	f := newFixture(t, xy, yOdd, hash, fn, fnOdd)
	class := f.reg.Classes()[0]

	testCases := []struct {
		index    *cat.Index
		dir      opt.ScanDirection
		expected string
	}{
		{index: xy, dir: opt.ForwardScan, expected: "(r.x/2, s.x/2),(r.y/2)"},
		{index: xy, dir: opt.BackwardScan, expected: "(r.x/3),(r.y/3)"},
		{index: yOdd, dir: opt.ForwardScan, expected: "(r.y/7)"},
		{index: yOdd, dir: opt.BackwardScan, expected: "()"},
		{index: hash, dir: opt.ForwardScan, expected: "()"},
		{index: fn, dir: opt.ForwardScan, expected: "(lower(r.z)/2)"},
		{index: fn, dir: opt.BackwardScan, expected: "(lower(r.z)/3)"},
		{index: fnOdd, dir: opt.BackwardScan, expected: "()"},
	}
	for _, tc := range testCases {
		keys := ordering.FromIndex(f.m, f.r, tc.index, tc.dir)
		if actual := keys.String(); actual != tc.expected {
			t.Errorf("%s %s: expected %s, got %s", tc.index.Name, tc.dir, tc.expected, actual)
		}
	}

	// The forward scan's first position is the registered class itself.
	keys := ordering.FromIndex(f.m, f.r, xy, opt.ForwardScan)
	require.Same(t, class, keys[0])
}

func TestFromIndexUsesTargetListVar(t *testing.T) {
	f := newFixture(t)
	idx := &cat.Index{Name: "s_y", Keys: []cat.AttrNum{2}, Ordering: []cat.OperatorID{f.lt}}
	f.s.Indexes = []*cat.Index{idx}

	tv := &scalar.Variable{Rel: 2, Attr: 2, Type: testcat.Int4Type, Name: "target"}
	f.s.TargetList = append(f.s.TargetList, memo.TargetEntry{ResNo: len(f.s.TargetList) + 1, Expr: tv})

	keys := ordering.FromIndex(f.m, f.s, idx, opt.ForwardScan)
	require.Len(t, keys, 1)
	require.Same(t, tv, keys[0].First().Expr)
}

func TestFromMergeClauses(t *testing.T) {
	f := newFixture(t)
	class := f.reg.Classes()[0]

	keys := ordering.FromMergeClauses(f.reg, []*memo.RestrictInfo{f.join})
	require.Len(t, keys, 1)
	require.Same(t, class, keys[0])

	// The ordering of a merge join's inputs is the same on either side.
	flipped := f.clause("=", f.v(2, 1), f.v(1, 1))
	require.Same(t, class, ordering.FromMergeClauses(f.reg, []*memo.RestrictInfo{flipped})[0])

	require.Nil(t, ordering.FromMergeClauses(f.reg, nil))
	require.Panics(t, func() {
		ordering.FromMergeClauses(f.reg, []*memo.RestrictInfo{f.clause("<", f.v(1, 1), f.v(2, 1))})
	})
}

func TestFindMergeClauses(t *testing.T) {
	f := newFixture(t)
	class := f.reg.Classes()[0]
	ry := f.clause("=", f.v(1, 2), f.v(2, 2))
	nonMerge := f.clause("<", f.v(1, 1), f.v(2, 1))
	restrict := []*memo.RestrictInfo{nonMerge, ry, f.join}

	ryKey := props.NewSingleton(props.MakeExprKey(f.v(1, 2), f.lt))
	syKey := props.NewSingleton(props.MakeExprKey(f.v(2, 2), f.lt))
	rzKey := props.NewSingleton(props.MakeExprKey(f.v(1, 3), f.lt))

	testCases := []struct {
		name     string
		pathkeys props.PathKeys
		expected []*memo.RestrictInfo
	}{
		{name: "both", pathkeys: props.PathKeys{class, ryKey}, expected: []*memo.RestrictInfo{f.join, ry}},
		{name: "right side", pathkeys: props.PathKeys{syKey}, expected: []*memo.RestrictInfo{ry}},
		{name: "stop at gap", pathkeys: props.PathKeys{class, rzKey, ryKey}, expected: []*memo.RestrictInfo{f.join}},
		{name: "first unmatched", pathkeys: props.PathKeys{rzKey, class}, expected: nil},
		{name: "each clause once", pathkeys: props.PathKeys{class, class}, expected: []*memo.RestrictInfo{f.join}},
		{name: "empty", pathkeys: nil, expected: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ordering.FindMergeClauses(tc.pathkeys, restrict))
		})
	}

	// A position sorted by another operator does not match.
	desc := props.NewSingleton(props.MakeExprKey(f.v(1, 2), f.gt))
	require.Empty(t, ordering.FindMergeClauses(props.PathKeys{desc}, restrict))

	// Members are tried in order: the clause on r.y wins over the clause on
	// r.x even though the latter comes first in the list.
	var other props.EquivRegistry
	other.Init(context.Background())
	other.AddEquijoinedKeys(props.MakeExprKey(f.v(1, 2), f.lt), props.MakeExprKey(f.v(1, 1), f.lt))
	yx := other.Classes()[0]
	require.Equal(t, []*memo.RestrictInfo{ry},
		ordering.FindMergeClauses(props.PathKeys{yx}, []*memo.RestrictInfo{f.join, ry}))
}

func TestGroupClausesByOrder(t *testing.T) {
	f := newFixture(t)
	f.tc.AddOperator(testcat.Operator{Name: "==", Commutator: "==", LeftSort: "<", RightSort: "<"})
	ry := f.clause("=", f.v(2, 2), f.v(1, 2))
	other := f.clause("==", f.v(1, 3), f.v(2, 2))
	nonMerge := f.clause("<", f.v(1, 1), f.v(2, 1))

	groups := ordering.GroupClausesByOrder([]*memo.RestrictInfo{f.join, nonMerge, other, ry}, opt.MakeRelSet(2))
	require.Len(t, groups, 2)

	require.Equal(t, f.tc.Operator("="), groups[0].Order.JoinOp)
	require.Equal(t, []*memo.RestrictInfo{f.join, ry}, groups[0].Clauses)
	require.Equal(t, "r.x", groups[0].Keys[0].Outer.String())
	require.Equal(t, "s.x", groups[0].Keys[0].Inner.String())
	// The left operand of ry is on the inner side, so the key is flipped.
	require.Equal(t, "r.y", groups[0].Keys[1].Outer.String())
	require.Equal(t, "s.y", groups[0].Keys[1].Inner.String())

	require.Equal(t, f.tc.Operator("=="), groups[1].Order.JoinOp)
	require.Equal(t, []*memo.RestrictInfo{other}, groups[1].Clauses)

	require.Empty(t, ordering.GroupClausesByOrder([]*memo.RestrictInfo{nonMerge}, opt.MakeRelSet(2)))
}

func TestForJoin(t *testing.T) {
	f := newFixture(t)
	outer := props.PathKeys{f.reg.Classes()[0]}
	require.Equal(t, outer, ordering.ForJoin(outer))
	require.Nil(t, ordering.ForJoin(nil))
}
