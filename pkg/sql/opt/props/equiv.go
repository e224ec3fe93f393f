// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/util/log"
)

// EquivClass is a set of ExprKeys that are known to be pairwise equal. Member
// order is the order in which keys were discovered and carries no meaning.
//
// A class is either owned by an EquivRegistry, or is an unregistered
// singleton created by Resolve for a key with no known peers. Sort positions
// (see PathKeys) hold pointers to classes; two canonical positions produced by
// the same registry are equal iff they are the same pointer.
type EquivClass struct {
	members []ExprKey
}

// PathKey is one position of a sort order. In canonical form it is an
// EquivClass owned by the registry, otherwise a singleton class.
type PathKey = EquivClass

// NewSingleton returns an unregistered class holding only the given key.
func NewSingleton(key ExprKey) *EquivClass {
	return &EquivClass{members: []ExprKey{key}}
}

// Members returns the keys in the class. The slice must not be modified.
func (c *EquivClass) Members() []ExprKey {
	return c.members
}

// Len returns the number of keys in the class.
func (c *EquivClass) Len() int {
	return len(c.members)
}

// First returns the first member of the class.
func (c *EquivClass) First() ExprKey {
	if len(c.members) == 0 {
		panic(errors.AssertionFailedf("empty sort position"))
	}
	return c.members[0]
}

// Contains returns true if the class has a member equal to key.
func (c *EquivClass) Contains(key ExprKey) bool {
	for i := range c.members {
		if c.members[i].Equals(key) {
			return true
		}
	}
	return false
}

// Equals returns true if the two classes have the same members, ignoring
// member order. It first checks pointer identity.
func (c *EquivClass) Equals(other *EquivClass) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil || len(c.members) != len(other.members) {
		return false
	}
	// Members are unique within a class, so equal sizes plus containment is
	// set equality.
	for i := range c.members {
		if !other.Contains(c.members[i]) {
			return false
		}
	}
	return true
}

// unionWith appends the members of other that are not already in c.
func (c *EquivClass) unionWith(other *EquivClass) {
	for _, key := range other.members {
		if !c.Contains(key) {
			c.members = append(c.members, key)
		}
	}
}

func (c *EquivClass) String() string {
	return c.Format(nil)
}

// Format renders the class as "(r.a, s.a)", using operator names if ops is
// not nil.
func (c *EquivClass) Format(ops cat.Operators) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, key := range c.members {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key.Format(ops))
	}
	b.WriteByte(')')
	return b.String()
}

// EquivRegistry tracks the equivalence classes of a single query. It is built
// from every mergejoinable equality in the query's conditions before the join
// search starts, and then closed. Classes only ever merge; once two keys are
// known equal they stay equal.
//
// The registry is a union-find over a short list of classes, searched
// linearly. Queries rarely have more than a few dozen equalities.
type EquivRegistry struct {
	ctx     context.Context
	classes []*EquivClass
	closed  bool
}

// Init prepares the registry for a new query. Any existing classes are
// discarded.
func (r *EquivRegistry) Init(ctx context.Context) {
	*r = EquivRegistry{ctx: ctx}
}

// AddEquijoinedKeys records that left and right are equal. A trivial
// self-equality (left equals right) is ignored. Otherwise every existing
// class containing either key is removed and merged into a new class, which
// is added at the front of the class list.
//
// It is an error to call AddEquijoinedKeys after Close.
func (r *EquivRegistry) AddEquijoinedKeys(left, right ExprKey) {
	if r.closed {
		panic(errors.AssertionFailedf("equivalence recorded after the registry was closed: %s = %s", left, right))
	}
	if left.Equals(right) {
		return
	}

	merged := &EquivClass{members: []ExprKey{left, right}}
	classes := make([]*EquivClass, 1, len(r.classes)+1)
	for _, class := range r.classes {
		if class.Contains(left) || class.Contains(right) {
			merged.unionWith(class)
			continue
		}
		classes = append(classes, class)
	}
	classes[0] = merged
	r.classes = classes
}

// Resolve returns the class containing key. If there is none, it returns a
// new singleton class, which is not added to the registry.
func (r *EquivRegistry) Resolve(key ExprKey) *EquivClass {
	if class := r.findClass(key); class != nil {
		return class
	}
	return NewSingleton(key)
}

// findClass returns the registered class containing key, or nil.
func (r *EquivRegistry) findClass(key ExprKey) *EquivClass {
	for _, class := range r.classes {
		if class.Contains(key) {
			return class
		}
	}
	return nil
}

// Close ends the equivalence discovery phase. Further calls to
// AddEquijoinedKeys will panic.
func (r *EquivRegistry) Close() {
	r.closed = true
}

// IsClosed returns true if Close has been called.
func (r *EquivRegistry) IsClosed() bool {
	return r.closed
}

// Classes returns the registered classes, most recently merged first. The
// slice must not be modified.
func (r *EquivRegistry) Classes() []*EquivClass {
	return r.classes
}

// Canonicalize returns a copy of pathkeys in which every position is replaced
// by the class that contains its first member. A single-member position with
// no registered class is kept as is; other unregistered positions become a
// singleton of their first member. Canonicalizing canonical pathkeys returns
// the same class pointers.
func (r *EquivRegistry) Canonicalize(pathkeys PathKeys) PathKeys {
	if !r.closed && len(pathkeys) > 0 && r.ctx != nil {
		log.VEventf(r.ctx, 3, "canonicalizing %s before equivalences are closed", pathkeys)
	}
	if len(pathkeys) == 0 {
		return nil
	}
	res := make(PathKeys, len(pathkeys))
	for i, pk := range pathkeys {
		if pk == nil || pk.Len() == 0 {
			panic(errors.AssertionFailedf("empty sort position %d", i))
		}
		switch class := r.findClass(pk.First()); {
		case class != nil:
			res[i] = class
		case pk.Len() == 1:
			res[i] = pk
		default:
			res[i] = NewSingleton(pk.First())
		}
	}
	return res
}

func (r *EquivRegistry) String() string {
	return r.Format(nil)
}

// Format renders one class per line.
func (r *EquivRegistry) Format(ops cat.Operators) string {
	var b strings.Builder
	for _, class := range r.classes {
		b.WriteString(class.Format(ops))
		b.WriteByte('\n')
	}
	return b.String()
}
