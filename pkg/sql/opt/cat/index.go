// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cat

// Index is a sorted access path over a table. Keys and Ordering are parallel:
// Ordering[i] is the sort operator of Keys[i]. An index with an empty
// Ordering is unordered (for example a hash index) and provides no pathkeys.
//
// A functional index has a non-zero Func: its single key expression is
// Func(Keys...), sorted by Ordering[0].
type Index struct {
	ID       IndexID
	Name     string
	Keys     []AttrNum
	Ordering []OperatorID

	Func     FuncID
	FuncName string
	// FuncType is the result type of the index function.
	FuncType TypeID

	Pages  float64
	Tuples float64
}

// IsFunctional returns true if the index is built over a function of its key
// columns rather than the columns themselves.
func (idx *Index) IsFunctional() bool {
	return idx.Func != 0
}

// IsOrdered returns true if a scan of the index returns rows in a defined
// order.
func (idx *Index) IsOrdered() bool {
	return len(idx.Keys) > 0 && len(idx.Ordering) > 0
}
