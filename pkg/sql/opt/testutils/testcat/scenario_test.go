// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testcat

import (
	"testing"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
functions:
  - {name: lower, returns: text}
tables:
  - name: r
    pages: 10
    tuples: 1000
    columns: [{name: a, type: int4}, {name: b, type: text}]
    indexes:
      - {name: r_a, columns: [a], ordering: ["<"]}
      - {name: r_lower_b, columns: [b], ordering: ["<"], function: lower}
  - name: s
    pages: 5
    tuples: 100
    columns: [{name: a, type: int4}, {name: c, type: int4}]
query:
  from:
    - {alias: r, table: r}
    - {alias: s, table: s}
    - {alias: sub, kind: subquery, columns: [x]}
  where:
    - {left: r.a, op: "=", right: s.a}
    - {left: lower(r.b), op: "=", right: "'abc'"}
    - {left: sub.x, op: "<", right: "10"}
  select: [r.a, s.c]
  order_by: [{expr: s.c, op: "<"}, {expr: r.b, op: ">"}]
settings:
  enable_hashjoin: false
`

func TestScenarioBuild(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	tc, q, err := sc.Build()
	require.NoError(t, err)

	r := tc.Table("r")
	require.NotNil(t, r)
	require.Len(t, r.Indexes, 2)
	require.Equal(t, []cat.AttrNum{1}, r.Indexes[0].Keys)
	require.Equal(t, []cat.OperatorID{tc.Operator("<")}, r.Indexes[0].Ordering)
	require.True(t, r.Indexes[1].IsFunctional())
	require.Equal(t, TextType, r.Indexes[1].FuncType)

	indexed, pages, tuples := tc.RelationStats(r.ID)
	require.True(t, indexed)
	require.Equal(t, 10.0, pages)
	require.Equal(t, 1000.0, tuples)
	indexed, _, _ = tc.RelationStats(tc.Table("s").ID)
	require.False(t, indexed)

	require.Len(t, q.RangeTable, 3)
	require.Equal(t, cat.SubquerySource, q.RangeTable[2].Kind)
	require.True(t, q.OtherRels.Empty())

	require.Len(t, q.Where, 3)
	join := q.Where[0].(*scalar.OpExpr)
	require.Equal(t, "r.a = s.a", join.String())
	require.True(t, scalar.Rels(join).Equals(opt.MakeRelSet(1, 2)))
	require.Equal(t, "lower(r.b) = 'abc'", q.Where[1].String())
	require.Equal(t, opt.MakeRelSet(3), scalar.Rels(q.Where[2]))

	// r.b is not selected, so it is appended for the ORDER BY.
	require.Len(t, q.Select, 3)
	require.Equal(t, []OrderByItem{
		{Ref: 2, SortOp: tc.Operator("<")},
		{Ref: 3, SortOp: tc.Operator(">")},
	}, q.OrderBy)

	var settings struct {
		EnableHashJoin bool `yaml:"enable_hashjoin"`
	}
	settings.EnableHashJoin = true
	require.NoError(t, sc.Settings.Decode(&settings))
	require.False(t, settings.EnableHashJoin)
}

func TestScenarioErrors(t *testing.T) {
	testCases := []struct {
		yaml string
		err  string
	}{
		{yaml: `bogus: 1`, err: "field bogus not found"},
		{
			yaml: `{tables: [{name: r, columns: [{name: a, type: blob}]}]}`,
			err:  `unknown type "blob"`,
		},
		{
			yaml: `{query: {from: [{alias: r, table: nope}]}}`,
			err:  `unknown table "nope"`,
		},
		{
			yaml: `{tables: [{name: r, columns: [{name: a, type: int4}]}], query: {from: [{table: r}], where: [{left: r.z, op: "=", right: "1"}]}}`,
			err: `relation r has no column "z"`,
		},
		{
			yaml: `{tables: [{name: r, columns: [{name: a, type: int4}]}], query: {from: [{table: r}], where: [{left: a, op: "=", right: "1"}]}}`,
			err: `must be qualified`,
		},
		{
			yaml: `{tables: [{name: r, columns: [{name: a, type: int4}]}], query: {from: [{table: r}], where: [{left: r.a, op: "~~", right: "1"}]}}`,
			err: `unknown operator "~~"`,
		},
	}
	for _, tc := range testCases {
		sc, err := ParseScenario([]byte(tc.yaml))
		if err == nil {
			_, _, err = sc.Build()
		}
		require.Error(t, err, tc.yaml)
		require.Contains(t, err.Error(), tc.err)
	}
}

func TestOperators(t *testing.T) {
	tc := New()
	lt, gt, eq := tc.Operator("<"), tc.Operator(">"), tc.Operator("=")

	com, ok := tc.Commutator(lt)
	require.True(t, ok)
	require.Equal(t, gt, com)

	leftSort, rightSort, ok := tc.MergeJoinInfo(eq)
	require.True(t, ok)
	require.Equal(t, lt, leftSort)
	require.Equal(t, lt, rightSort)

	_, _, ok = tc.MergeJoinInfo(lt)
	require.False(t, ok)

	// Overriding an operator keeps its id.
	noCom := tc.AddOperator(Operator{Name: "<"})
	require.Equal(t, lt, noCom)
	_, ok = tc.Commutator(lt)
	require.False(t, ok)
	require.Equal(t, "<", tc.OperatorName(lt))
}
