// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testcat

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
)

// Well-known type ids used by the test catalog.
const (
	BoolType cat.TypeID = 16
	Int8Type cat.TypeID = 20
	Int4Type cat.TypeID = 23
	TextType cat.TypeID = 25
	Float8Type cat.TypeID = 701
)

var typesByName = map[string]cat.TypeID{
	"bool":   BoolType,
	"int8":   Int8Type,
	"int4":   Int4Type,
	"int":    Int4Type,
	"text":   TextType,
	"float8": Float8Type,
}

// ParseType returns the id of the named type.
func ParseType(name string) (cat.TypeID, error) {
	if typ, ok := typesByName[name]; ok {
		return typ, nil
	}
	return 0, errors.Newf("unknown type %q", name)
}

// Column is a column of a test table.
type Column struct {
	Name    string
	Type    cat.TypeID
	TypeMod int32
}

// Table is a table of the test catalog.
type Table struct {
	ID      cat.TableID
	Name    string
	Columns []Column
	Pages   float64
	Tuples  float64
	Indexes []*cat.Index
}

// ColumnOrdinal returns the attribute number of the named column.
func (t *Table) ColumnOrdinal(name string) (cat.AttrNum, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return cat.AttrNum(i + 1), true
		}
	}
	return 0, false
}

// ColumnNames returns the names of the table's columns in attribute order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Operator is a comparison operator of the test catalog. Commutator,
// LeftSort and RightSort refer to other operators by name; LeftSort and
// RightSort are only set for mergejoinable equalities.
type Operator struct {
	ID         cat.OperatorID
	Name       string
	Commutator string
	LeftSort   string
	RightSort  string
}

// Function is a function of the test catalog.
type Function struct {
	ID      cat.FuncID
	Name    string
	Returns cat.TypeID
}

// Catalog implements the cat.Catalog and cat.Operators interfaces for testing
// purposes.
type Catalog struct {
	tables      map[cat.TableID]*Table
	tableNames  map[string]*Table
	operators   map[cat.OperatorID]*Operator
	opNames     map[string]*Operator
	functions   map[string]*Function
	nextTableID cat.TableID
	nextIndexID cat.IndexID
	nextOpID    cat.OperatorID
	nextFuncID  cat.FuncID
}

var _ cat.Catalog = &Catalog{}
var _ cat.Operators = &Catalog{}

// New creates a new test catalog holding the default comparison operators:
// "=", "<", ">", "<=", ">=" and "<>". "=" is mergejoinable and sorts by "<"
// on both sides.
func New() *Catalog {
	tc := &Catalog{
		tables:      make(map[cat.TableID]*Table),
		tableNames:  make(map[string]*Table),
		operators:   make(map[cat.OperatorID]*Operator),
		opNames:     make(map[string]*Operator),
		functions:   make(map[string]*Function),
		nextTableID: 100,
		nextIndexID: 1,
		nextOpID:    1,
		nextFuncID:  1,
	}
	for _, op := range []Operator{
		{Name: "=", Commutator: "=", LeftSort: "<", RightSort: "<"},
		{Name: "<", Commutator: ">"},
		{Name: ">", Commutator: "<"},
		{Name: "<=", Commutator: ">="},
		{Name: ">=", Commutator: "<="},
		{Name: "<>", Commutator: "<>"},
	} {
		tc.AddOperator(op)
	}
	return tc
}

// AddTable registers a table and assigns ids to it and its indexes.
func (tc *Catalog) AddTable(t *Table) *Table {
	if _, ok := tc.tableNames[t.Name]; ok {
		panic(errors.AssertionFailedf("table %q already exists", t.Name))
	}
	t.ID = tc.nextTableID
	tc.nextTableID++
	for _, idx := range t.Indexes {
		idx.ID = tc.nextIndexID
		tc.nextIndexID++
	}
	tc.tables[t.ID] = t
	tc.tableNames[t.Name] = t
	return t
}

// Table returns the named table, or nil.
func (tc *Catalog) Table(name string) *Table {
	return tc.tableNames[name]
}

// AddOperator registers or replaces an operator and returns its id.
func (tc *Catalog) AddOperator(op Operator) cat.OperatorID {
	if existing, ok := tc.opNames[op.Name]; ok {
		op.ID = existing.ID
	} else {
		op.ID = tc.nextOpID
		tc.nextOpID++
	}
	tc.operators[op.ID] = &op
	tc.opNames[op.Name] = &op
	return op.ID
}

// Operator returns the id of the named operator, or zero.
func (tc *Catalog) Operator(name string) cat.OperatorID {
	if op, ok := tc.opNames[name]; ok {
		return op.ID
	}
	return 0
}

// AddFunction registers a function and returns its id.
func (tc *Catalog) AddFunction(name string, returns cat.TypeID) cat.FuncID {
	if f, ok := tc.functions[name]; ok {
		return f.ID
	}
	f := &Function{ID: tc.nextFuncID, Name: name, Returns: returns}
	tc.nextFuncID++
	tc.functions[name] = f
	return f.ID
}

// Function returns the named function, or nil.
func (tc *Catalog) Function(name string) *Function {
	return tc.functions[name]
}

// RelationStats is part of the cat.Catalog interface.
func (tc *Catalog) RelationStats(id cat.TableID) (indexed bool, pages, tuples float64) {
	t := tc.mustTable(id)
	return len(t.Indexes) > 0, t.Pages, t.Tuples
}

// IndexList is part of the cat.Catalog interface.
func (tc *Catalog) IndexList(id cat.TableID) []*cat.Index {
	return tc.mustTable(id).Indexes
}

// ColumnType is part of the cat.Catalog interface.
func (tc *Catalog) ColumnType(id cat.TableID, attr cat.AttrNum) (cat.TypeID, int32) {
	t := tc.mustTable(id)
	if attr <= 0 || int(attr) > len(t.Columns) {
		panic(errors.AssertionFailedf("table %s has no attribute %d", t.Name, attr))
	}
	col := &t.Columns[attr-1]
	return col.Type, col.TypeMod
}

// Commutator is part of the cat.Operators interface.
func (tc *Catalog) Commutator(id cat.OperatorID) (cat.OperatorID, bool) {
	op, ok := tc.operators[id]
	if !ok || op.Commutator == "" {
		return 0, false
	}
	com := tc.Operator(op.Commutator)
	return com, com != 0
}

// MergeJoinInfo is part of the cat.Operators interface.
func (tc *Catalog) MergeJoinInfo(id cat.OperatorID) (leftSort, rightSort cat.OperatorID, ok bool) {
	op, found := tc.operators[id]
	if !found || op.LeftSort == "" || op.RightSort == "" {
		return 0, 0, false
	}
	leftSort, rightSort = tc.Operator(op.LeftSort), tc.Operator(op.RightSort)
	return leftSort, rightSort, leftSort != 0 && rightSort != 0
}

// OperatorName is part of the cat.Operators interface.
func (tc *Catalog) OperatorName(id cat.OperatorID) string {
	if op, ok := tc.operators[id]; ok {
		return op.Name
	}
	return "?"
}

// TableNames returns the names of all tables, sorted.
func (tc *Catalog) TableNames() []string {
	names := make([]string, 0, len(tc.tableNames))
	for name := range tc.tableNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (tc *Catalog) mustTable(id cat.TableID) *Table {
	t, ok := tc.tables[id]
	if !ok {
		panic(errors.AssertionFailedf("unknown table id %d", id))
	}
	return t
}
