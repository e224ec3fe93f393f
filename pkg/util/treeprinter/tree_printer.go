// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package treeprinter renders trees of text nodes, such as planner data
// structures, in a human readable form:
//
//	root
//	 ├── child 1
//	 │    └── grandchild
//	 └── child 2
package treeprinter

import (
	"fmt"
	"strings"
)

const (
	edgeLink = "│    "
	edgeMid  = "├── "
	edgeLast = "└── "
	edgeNone = "     "
)

// Node is a handle associated with a specific depth in a tree.
type Node struct {
	tree *tree
	idx  int
}

type node struct {
	text     string
	lines    []string
	children []int
}

type tree struct {
	nodes []node
	roots []int
}

// New creates a tree printer.
func New() Node {
	return Node{tree: &tree{}, idx: -1}
}

// Child adds a node as a child of the given node.
func (n Node) Child(text string) Node {
	t := n.tree
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{text: text})
	if n.idx < 0 {
		t.roots = append(t.roots, idx)
	} else {
		t.nodes[n.idx].children = append(t.nodes[n.idx].children, idx)
	}
	return Node{tree: t, idx: idx}
}

// Childf adds a node as a child of the given node.
func (n Node) Childf(format string, args ...interface{}) Node {
	return n.Child(fmt.Sprintf(format, args...))
}

// AddLine adds an extra line of text to the node, printed below the node's
// own text and above its children.
func (n Node) AddLine(text string) {
	if n.idx < 0 {
		panic("AddLine called on the tree root")
	}
	n.tree.nodes[n.idx].lines = append(n.tree.nodes[n.idx].lines, text)
}

// String returns the tree as a string.
func (n Node) String() string {
	var b strings.Builder
	for _, r := range n.tree.roots {
		nd := &n.tree.nodes[r]
		b.WriteString(nd.text)
		b.WriteByte('\n')
		n.tree.formatBody(&b, nd, " ")
	}
	return b.String()
}

func (t *tree) formatBody(b *strings.Builder, nd *node, prefix string) {
	for _, line := range nd.lines {
		b.WriteString(prefix)
		if len(nd.children) > 0 {
			b.WriteString(edgeLink)
		} else {
			b.WriteString(edgeNone)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for i, c := range nd.children {
		child := &t.nodes[c]
		last := i == len(nd.children)-1
		b.WriteString(prefix)
		if last {
			b.WriteString(edgeLast)
		} else {
			b.WriteString(edgeMid)
		}
		b.WriteString(child.text)
		b.WriteByte('\n')
		if last {
			t.formatBody(b, child, prefix+edgeNone)
		} else {
			t.formatBody(b, child, prefix+edgeLink)
		}
	}
}
