// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package testcat

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
)

// resolver turns the operand syntax of scenarios into scalar expressions:
//
//	r.a          column a of the relation aliased r
//	42, 1.5      numeric constants
//	'abc'        text constant
//	f(r.a, 1)    call of a declared function
type resolver struct {
	tc         *Catalog
	aliases    map[string]opt.RelID
	rangeTable []cat.DataSource
}

func (r *resolver) parse(s string) (scalar.Expr, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, errors.New("empty operand")

	case strings.HasPrefix(s, "'"):
		if len(s) < 2 || !strings.HasSuffix(s, "'") {
			return nil, errors.Newf("unterminated string %s", s)
		}
		return &scalar.Const{Type: TextType, Value: s}, nil

	case strings.HasSuffix(s, ")"):
		open := strings.IndexByte(s, '(')
		if open <= 0 {
			return nil, errors.Newf("malformed function call %s", s)
		}
		name := strings.TrimSpace(s[:open])
		f := r.tc.Function(name)
		if f == nil {
			return nil, errors.Newf("unknown function %q", name)
		}
		call := &scalar.FuncCall{Func: f.ID, Type: f.Returns, Name: f.Name}
		for _, arg := range splitArgs(s[open+1 : len(s)-1]) {
			e, err := r.parse(arg)
			if err != nil {
				return nil, errors.Wrapf(err, "argument of %s", name)
			}
			call.Args = append(call.Args, e)
		}
		return call, nil
	}

	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &scalar.Const{Type: Int4Type, Value: s}, nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return &scalar.Const{Type: Float8Type, Value: s}, nil
	}

	dot := strings.IndexByte(s, '.')
	if dot <= 0 {
		return nil, errors.Newf("column reference %q must be qualified", s)
	}
	alias, col := s[:dot], s[dot+1:]
	relid, ok := r.aliases[alias]
	if !ok {
		return nil, errors.Newf("unknown relation %q", alias)
	}
	ds := &r.rangeTable[relid-1]
	attr, ok := ds.ColumnOrdinal(col)
	if !ok {
		return nil, errors.Newf("relation %s has no column %q", alias, col)
	}
	v := &scalar.Variable{Rel: relid, Attr: attr, Name: s}
	if ds.Kind == cat.RelationSource {
		v.Type, v.TypeMod = r.tc.ColumnType(ds.Table, attr)
	}
	return v, nil
}

// splitArgs splits a comma separated argument list, ignoring commas inside
// nested parentheses.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}
