// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package visitor provides generic traversals over minivect IR trees.
//
// A Transform dispatches on node kinds through a handler table built once
// per visitor. Kinds without a handler fall back to a structural
// copy-and-recurse through the declared child slots, so adding a node kind
// never requires changes to visitors that only use the fallback.
package visitor

import (
	"github.com/gx-org/minivect/build/ir"
)

// Func transforms one node. Returning a nil node removes the node from
// slice-valued slots of its parent.
type Func func(ir.Node) (ir.Node, error)

// Transform rewrites a tree bottom-up from the root.
type Transform struct {
	handlers map[ir.Kind]Func
}

// New returns a transform with no handlers: it performs a pure structural
// copy of any tree it is given.
func New() *Transform {
	return &Transform{handlers: make(map[ir.Kind]Func)}
}

// Handle registers a handler for a kind. The handler fully owns nodes of
// that kind: the transform does not recurse into their children unless the
// handler asks for it (with Default or Node).
func (t *Transform) Handle(k ir.Kind, f Func) {
	t.handlers[k] = f
}

// Node transforms a node: it dispatches to the kind's handler, or to
// Default when no handler is registered.
func (t *Transform) Node(n ir.Node) (ir.Node, error) {
	if n == nil {
		return nil, nil
	}
	if f, ok := t.handlers[n.Kind()]; ok {
		return f(n)
	}
	return t.Default(n)
}

// Default copies the node, transforms each declared child, and substitutes
// the results. Children not declared by a node do not exist: a kind with no
// handler is still fully traversed.
func (t *Transform) Default(n ir.Node) (ir.Node, error) {
	children := n.Children()
	out := make([]ir.Node, len(children))
	for i, c := range children {
		if c == nil {
			continue
		}
		nc, err := t.Node(c)
		if err != nil {
			return nil, err
		}
		out[i] = nc
	}
	return n.WithChildren(out), nil
}

// Copy returns a deep structural copy of a tree.
func Copy(n ir.Node) ir.Node {
	cp, err := New().Node(n)
	if err != nil {
		// A transform without handlers cannot fail.
		panic(err)
	}
	return cp
}

// Visit walks a tree in pre-order, visiting exactly the children each node
// declares, in declared order. It never mutates the tree. f returning false
// prunes the subtree below the node.
func Visit(n ir.Node, f func(ir.Node) bool) {
	if n == nil {
		return
	}
	if !f(n) {
		return
	}
	for _, c := range n.Children() {
		Visit(c, f)
	}
}
