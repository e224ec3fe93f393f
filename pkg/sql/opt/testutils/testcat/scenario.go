// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testcat

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
	"gopkg.in/yaml.v3"
)

// Scenario is a YAML description of a schema and a query to plan:
//
//	tables:
//	  - name: r
//	    pages: 10
//	    tuples: 1000
//	    columns: [{name: a, type: int4}, {name: b, type: int4}]
//	    indexes:
//	      - {name: r_a, columns: [a], ordering: ["<"]}
//	query:
//	  from: [{alias: r, table: r}, {alias: s, table: s}]
//	  where:
//	    - {left: r.a, op: "=", right: s.a}
//	  select: [r.a, s.c]
//	  order_by: [{expr: r.a, op: "<"}]
//
// The optional settings block is decoded by the optimizer.
type Scenario struct {
	Operators []OperatorDef `yaml:"operators"`
	Functions []FunctionDef `yaml:"functions"`
	Tables    []TableDef    `yaml:"tables"`
	Query     QueryDef      `yaml:"query"`
	Settings  yaml.Node     `yaml:"settings"`
}

// OperatorDef declares an operator, or overrides a default one.
type OperatorDef struct {
	Name       string `yaml:"name"`
	Commutator string `yaml:"commutator"`
	LeftSort   string `yaml:"left_sort"`
	RightSort  string `yaml:"right_sort"`
}

// FunctionDef declares a function usable in clauses and functional indexes.
type FunctionDef struct {
	Name    string `yaml:"name"`
	Returns string `yaml:"returns"`
}

// TableDef declares a table.
type TableDef struct {
	Name    string      `yaml:"name"`
	Pages   float64     `yaml:"pages"`
	Tuples  float64     `yaml:"tuples"`
	Columns []ColumnDef `yaml:"columns"`
	Indexes []IndexDef  `yaml:"indexes"`
}

// ColumnDef declares a column.
type ColumnDef struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	TypeMod int32  `yaml:"typmod"`
}

// IndexDef declares an index. If Function is set, the index is over
// Function(Columns...).
type IndexDef struct {
	Name     string   `yaml:"name"`
	Columns  []string `yaml:"columns"`
	Ordering []string `yaml:"ordering"`
	Function string   `yaml:"function"`
	Pages    float64  `yaml:"pages"`
	Tuples   float64  `yaml:"tuples"`
}

// QueryDef describes the query to plan.
type QueryDef struct {
	From    []FromDef    `yaml:"from"`
	Where   []ClauseDef  `yaml:"where"`
	Select  []string     `yaml:"select"`
	OrderBy []OrderByDef `yaml:"order_by"`
}

// FromDef is one range table entry. Kind defaults to "relation". Other marks
// an auxiliary relation, such as an inheritance child, that does not take
// part in the join search.
type FromDef struct {
	Alias   string   `yaml:"alias"`
	Table   string   `yaml:"table"`
	Kind    string   `yaml:"kind"`
	Columns []string `yaml:"columns"`
	Other   bool     `yaml:"other"`
}

// ClauseDef is a binary WHERE clause.
type ClauseDef struct {
	Left  string `yaml:"left"`
	Op    string `yaml:"op"`
	Right string `yaml:"right"`
}

// OrderByDef is one ORDER BY item.
type OrderByDef struct {
	Expr string `yaml:"expr"`
	Op   string `yaml:"op"`
}

// Query is a scenario query resolved against the catalog.
type Query struct {
	RangeTable []cat.DataSource

	// OtherRels is the set of relations declared as auxiliary.
	OtherRels opt.RelSet

	Where  []scalar.Expr
	Select []scalar.Expr

	// OrderBy refers to Select by 1-based position. Items that are not
	// selected are appended to Select.
	OrderBy []OrderByItem
}

// OrderByItem is a resolved ORDER BY item.
type OrderByItem struct {
	Ref    int
	SortOp cat.OperatorID
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scenario %s", path)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing scenario %s", path)
	}
	return sc, nil
}

// ParseScenario parses a YAML scenario. Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}
	return &sc, nil
}

// Build creates a test catalog holding the scenario's schema and resolves
// the scenario's query against it.
func (sc *Scenario) Build() (*Catalog, *Query, error) {
	tc := New()
	for _, op := range sc.Operators {
		if op.Name == "" {
			return nil, nil, errors.New("operator without a name")
		}
		tc.AddOperator(Operator{
			Name: op.Name, Commutator: op.Commutator, LeftSort: op.LeftSort, RightSort: op.RightSort,
		})
	}
	for _, f := range sc.Functions {
		typ, err := ParseType(f.Returns)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "function %s", f.Name)
		}
		tc.AddFunction(f.Name, typ)
	}
	for i := range sc.Tables {
		if err := sc.addTable(tc, &sc.Tables[i]); err != nil {
			return nil, nil, err
		}
	}
	q, err := sc.buildQuery(tc)
	if err != nil {
		return nil, nil, err
	}
	return tc, q, nil
}

func (sc *Scenario) addTable(tc *Catalog, def *TableDef) error {
	if tc.Table(def.Name) != nil {
		return errors.Newf("table %q declared twice", def.Name)
	}
	t := &Table{Name: def.Name, Pages: def.Pages, Tuples: def.Tuples}
	for _, c := range def.Columns {
		typ, err := ParseType(c.Type)
		if err != nil {
			return errors.Wrapf(err, "column %s.%s", def.Name, c.Name)
		}
		t.Columns = append(t.Columns, Column{Name: c.Name, Type: typ, TypeMod: c.TypeMod})
	}
	for _, idxDef := range def.Indexes {
		idx := &cat.Index{Name: idxDef.Name, Pages: idxDef.Pages, Tuples: idxDef.Tuples}
		for _, col := range idxDef.Columns {
			attr, ok := t.ColumnOrdinal(col)
			if !ok {
				return errors.Newf("index %s: table %s has no column %q", idxDef.Name, def.Name, col)
			}
			idx.Keys = append(idx.Keys, attr)
		}
		for _, opName := range idxDef.Ordering {
			op := tc.Operator(opName)
			if op == 0 {
				return errors.Newf("index %s: unknown operator %q", idxDef.Name, opName)
			}
			idx.Ordering = append(idx.Ordering, op)
		}
		if idxDef.Function != "" {
			f := tc.Function(idxDef.Function)
			if f == nil {
				return errors.Newf("index %s: unknown function %q", idxDef.Name, idxDef.Function)
			}
			idx.Func, idx.FuncName, idx.FuncType = f.ID, f.Name, f.Returns
		}
		t.Indexes = append(t.Indexes, idx)
	}
	tc.AddTable(t)
	return nil
}

func (sc *Scenario) buildQuery(tc *Catalog) (*Query, error) {
	q := &Query{}
	r := resolver{tc: tc, aliases: make(map[string]opt.RelID)}
	for i, from := range sc.Query.From {
		relid := opt.RelID(i + 1)
		kind, err := cat.ParseDataSourceKind(from.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "from entry %d", i+1)
		}
		ds := cat.DataSource{Kind: kind, Name: from.Alias, Columns: from.Columns}
		if kind == cat.RelationSource {
			t := tc.Table(from.Table)
			if t == nil {
				return nil, errors.Newf("unknown table %q", from.Table)
			}
			ds.Table = t.ID
			ds.Columns = t.ColumnNames()
			if ds.Name == "" {
				ds.Name = t.Name
			}
		}
		if ds.Name == "" {
			return nil, errors.Newf("from entry %d has no alias", i+1)
		}
		if _, ok := r.aliases[ds.Name]; ok {
			return nil, errors.Newf("duplicate alias %q", ds.Name)
		}
		r.aliases[ds.Name] = relid
		q.RangeTable = append(q.RangeTable, ds)
		if from.Other {
			q.OtherRels.Add(relid)
		}
	}
	r.rangeTable = q.RangeTable

	for _, c := range sc.Query.Where {
		left, err := r.parse(c.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.parse(c.Right)
		if err != nil {
			return nil, err
		}
		op := tc.Operator(c.Op)
		if op == 0 {
			return nil, errors.Newf("unknown operator %q", c.Op)
		}
		q.Where = append(q.Where, &scalar.OpExpr{Operator: op, Left: left, Right: right, Name: c.Op})
	}

	for _, s := range sc.Query.Select {
		e, err := r.parse(s)
		if err != nil {
			return nil, err
		}
		q.Select = append(q.Select, e)
	}

	for _, ob := range sc.Query.OrderBy {
		e, err := r.parse(ob.Expr)
		if err != nil {
			return nil, err
		}
		op := tc.Operator(ob.Op)
		if op == 0 {
			return nil, errors.Newf("unknown sort operator %q", ob.Op)
		}
		ref := 0
		for i := range q.Select {
			if scalar.Equal(q.Select[i], e) {
				ref = i + 1
				break
			}
		}
		if ref == 0 {
			q.Select = append(q.Select, e)
			ref = len(q.Select)
		}
		q.OrderBy = append(q.OrderBy, OrderByItem{Ref: ref, SortOp: op})
	}
	return q, nil
}
