// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package ordering

import (
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
)

// FromIndex returns the canonical pathkeys of a scan of the given index of
// rel in the given direction. A backward scan sorts each key by the
// commutator of the index's operator.
//
// The result is empty if the index is unordered, or if a backward scan needs
// a commutator that does not exist. A functional index yields a single
// position over the function call.
func FromIndex(m *memo.Memo, rel *memo.RelNode, index *cat.Index, dir opt.ScanDirection) props.PathKeys {
	if !index.IsOrdered() {
		return nil
	}
	reg := m.Registry()
	ops := m.Operators()
	relid := rel.Relids.SingleRel()

	sortOp := func(i int) (cat.OperatorID, bool) {
		op := index.Ordering[i]
		if dir.IsBackward() {
			return ops.Commutator(op)
		}
		return op, true
	}

	if index.IsFunctional() {
		op, ok := sortOp(0)
		if !ok {
			return nil
		}
		fn := &scalar.FuncCall{Func: index.Func, Type: index.FuncType, Name: index.FuncName}
		fn.Args = make([]scalar.Expr, len(index.Keys))
		for i, attr := range index.Keys {
			fn.Args[i] = findIndexKeyVar(m, rel, relid, attr)
		}
		return props.PathKeys{reg.Resolve(props.MakeExprKey(fn, op))}
	}

	var res props.PathKeys
	for i, attr := range index.Keys {
		if i >= len(index.Ordering) {
			break
		}
		op, ok := sortOp(i)
		if !ok {
			return nil
		}
		key := props.MakeExprKey(findIndexKeyVar(m, rel, relid, attr), op)
		res = append(res, reg.Resolve(key))
	}
	return res
}

// findIndexKeyVar returns the variable for an index key column. The variable
// of the relation's target list is used if there is one; otherwise a new one
// is built from the catalog's column type.
func findIndexKeyVar(m *memo.Memo, rel *memo.RelNode, relid opt.RelID, attr cat.AttrNum) *scalar.Variable {
	for i := range rel.TargetList {
		if v, ok := rel.TargetList[i].Expr.(*scalar.Variable); ok && v.Rel == relid && v.Attr == attr {
			return v
		}
	}
	typ, typMod := m.Catalog().ColumnType(rel.Table, attr)
	v := &scalar.Variable{Rel: relid, Attr: attr, Type: typ, TypeMod: typMod}
	if ds := m.DataSource(relid); int(attr) >= 1 && int(attr) <= len(ds.Columns) {
		v.Name = ds.Name + "." + ds.Columns[attr-1]
	}
	return v
}
