// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

import "github.com/cockroachdb/errors"

// DataSourceKind is the kind of a range table entry.
type DataSourceKind uint8

const (
	// RelationSource is an ordinary table.
	RelationSource DataSourceKind = iota
	// SubquerySource is a subquery in FROM.
	SubquerySource
	// FunctionSource is a set-returning function in FROM.
	FunctionSource
	// JoinSource is an unflattened join alias. It never gets a relation node.
	JoinSource
)

func (k DataSourceKind) String() string {
	switch k {
	case RelationSource:
		return "relation"
	case SubquerySource:
		return "subquery"
	case FunctionSource:
		return "function"
	case JoinSource:
		return "join"
	}
	return "unknown"
}

// SafeValue implements the redact.SafeValue interface.
func (DataSourceKind) SafeValue() {}

// ParseDataSourceKind converts the textual form of a kind back.
func ParseDataSourceKind(s string) (DataSourceKind, error) {
	switch s {
	case "", "relation", "table":
		return RelationSource, nil
	case "subquery":
		return SubquerySource, nil
	case "function":
		return FunctionSource, nil
	case "join":
		return JoinSource, nil
	}
	return 0, errors.Newf("unknown data source kind %q", s)
}

// DataSource is one entry of a query's range table: an object that provides
// rows, like a table or a subquery.
type DataSource struct {
	// Kind determines how the planner treats the entry.
	Kind DataSourceKind

	// Table is the catalog table backing a RelationSource. It is zero for the
	// other kinds.
	Table TableID

	// Name is the alias used to refer to the source in the query.
	Name string

	// Columns lists the column names produced by the source, in attribute
	// order (attribute 1 first).
	Columns []string
}

// ColumnOrdinal returns the attribute number of the named column, or false if
// the source has no such column.
func (ds *DataSource) ColumnOrdinal(name string) (AttrNum, bool) {
	for i := range ds.Columns {
		if ds.Columns[i] == name {
			return AttrNum(i + 1), true
		}
	}
	return 0, false
}
