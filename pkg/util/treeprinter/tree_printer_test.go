// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package treeprinter

import (
	"strings"
	"testing"
)

func TestTreePrinter(t *testing.T) {
	n := New()

	r := n.Child("root")
	r.AddLine("root-line")
	n1 := r.Childf("%d", 1)
	n1.Child("1.1")
	n12 := n1.Child("1.2")
	r.Child("2")
	n12.Child("1.2.1")
	n12.AddLine("1.2-line")

	exp := `
root
 │    root-line
 ├── 1
 │    ├── 1.1
 │    └── 1.2
 │         │    1.2-line
 │         └── 1.2.1
 └── 2
`
	exp = strings.TrimLeft(exp, "\n")
	if res := n.String(); res != exp {
		t.Errorf("incorrect result:\n%s\nexpected:\n%s", res, exp)
	}
}

func TestTreePrinterMultipleRoots(t *testing.T) {
	n := New()
	n.Child("a").Child("a.1")
	n.Child("b")
	exp := "a\n └── a.1\nb\n"
	if res := n.String(); res != exp {
		t.Errorf("incorrect result:\n%q\nexpected:\n%q", res, exp)
	}
}
