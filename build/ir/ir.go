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

// Package ir is the minivect intermediate representation (IR) tree.
//
// The tree models one elementwise array computation generically; the
// specialize package rewrites it into layout-specific variants. Every node
// declares its children through the generic Children/WithChildren protocol:
// visitors that only use the structural fallback never need to know a
// concrete node kind.
//
// The structure and semantic is modeled after the go/ast package.
package ir

import (
	"github.com/gx-org/minivect/build/types"
)

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()

		// Kind of the node.
		Kind() Kind

		// Pos returns the source position of the foreign node that
		// produced this node.
		Pos() Position

		// Children returns the declared child slots in declared order.
		// Optional slots that are not set are returned as nil entries;
		// slice-valued slots are expanded in place.
		Children() []Node

		// WithChildren returns a shallow copy of the node with its
		// declared children replaced. The argument must have the same
		// arity as the last call to Children on the node; nil entries
		// in slice-valued slots are dropped.
		WithChildren([]Node) Node
	}

	// Expr is a node with a type.
	Expr interface {
		Node
		Type() types.Type
	}
)

// Base carries the source position shared by all nodes.
type Base struct {
	SrcPos Position
}

func (Base) node() {}

// Pos returns the source position of the node.
func (b Base) Pos() Position { return b.SrcPos }

// At returns a Base for a position.
func At(pos Position) Base {
	return Base{SrcPos: pos}
}

func asExpr(n Node) Expr {
	if n == nil {
		return nil
	}
	return n.(Expr)
}

func nodesOf[T Node](ns []T) []Node {
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = n
	}
	return out
}

// ----------------------------------------------------------------------------
// Statements.
type (
	// StatList is an ordered sequence of statements.
	StatList struct {
		Base
		Stats []Node
	}

	// Assign stores the value of RHS into the location named by LHS.
	Assign struct {
		Base
		LHS Expr
		RHS Expr
	}

	// If evaluates Cond and executes Then when it holds, Else otherwise.
	// Else may be nil. Cond is always present and always evaluated before
	// the branch.
	If struct {
		Base
		Cond Expr
		Then Node
		Else Node
	}

	// For is one counted loop: (init, condition, step, body).
	// Nested For nodes represent a multi-dimensional iteration space, one
	// node per dimension in the current run's iteration order.
	For struct {
		Base
		Init Node
		Cond Expr
		Step Node
		Body Node

		// Index is the loop's induction variable. It also appears
		// inside Init, Cond and Step, which are the node's child slots.
		Index *Temp
	}

	// Parallel annotates a loop that a backend may execute in parallel.
	// It is emitted only when the builder capability set enables it;
	// backends without the capability never see the node.
	Parallel struct {
		Base
		Body Node
	}

	// Arg is an argument to a Function. Array arguments unpack into
	// multiple actual variables, e.g. the data and stride pointers.
	Arg struct {
		Base
		Var *Variable

		// Unpacked lists the actual variables this argument is
		// unpacked into by a backend.
		Unpacked []Expr
	}

	// Function owns the computation over one iteration space.
	//
	// NDim is the maximum rank among the array-typed arguments; the core
	// maintains this invariant on every Function it emits. ErrorValue and
	// SuccessValue are the sentinels returned on fault and on completion.
	Function struct {
		Base
		Name string
		Body Node
		Args []*Arg

		// Shape is the shape-vector argument variable.
		Shape *Variable

		ErrorValue   Expr
		SuccessValue Expr

		NDim int

		// Specialization is the name of the strategy that produced
		// this generation of the function, empty on the generic tree.
		Specialization string
	}

	// NDIterate marks the body as iterated over the whole iteration
	// space. Specializers replace it with a concrete loop nest; it never
	// appears in specialized output.
	NDIterate struct {
		Base
		Body Node
	}

	// Return exits the function with a value.
	Return struct {
		Base
		Value Expr
	}

	// Raise signals a run-time fault at this point of the computation.
	// Specializers lower it to a flag set plus a jump to the innermost
	// open error handler; it never appears in specialized output.
	Raise struct {
		Base
	}

	// ErrorHandler wraps a body whose execution may fault. The
	// specializer base materializes the surrounding slots and expands the
	// handler into plain jump/label/conditional statements; it never
	// appears in specialized output.
	ErrorHandler struct {
		Base
		Body Node

		// Flag is the synthesized boolean fault flag.
		Flag *Temp
		// ErrorLabel is the fault entry point; CleanupLabel skips it on
		// the success path.
		ErrorLabel   *Label
		CleanupLabel *Label

		FlagInit      Node
		CleanupJump   Node
		ErrorTarget   Node
		FlagSet       Node
		CleanupTarget Node
		Cascade       Node
	}

	// Jump transfers control to a label.
	Jump struct {
		Base
		Label *Label
	}

	// JumpTarget is a point a Jump can transfer control to.
	JumpTarget struct {
		Base
		Label *Label
	}

	// Label names a jump target.
	Label struct {
		Base
		Name string
	}
)

var (
	_ Node = (*StatList)(nil)
	_ Node = (*Assign)(nil)
	_ Node = (*If)(nil)
	_ Node = (*For)(nil)
	_ Node = (*Parallel)(nil)
	_ Node = (*Arg)(nil)
	_ Node = (*Function)(nil)
	_ Node = (*NDIterate)(nil)
	_ Node = (*Return)(nil)
	_ Node = (*Raise)(nil)
	_ Node = (*ErrorHandler)(nil)
	_ Node = (*Jump)(nil)
	_ Node = (*JumpTarget)(nil)
	_ Node = (*Label)(nil)
)

// Kind of the node.
func (*StatList) Kind() Kind { return KindStatList }

// Children returns the declared children of the node.
func (n *StatList) Children() []Node { return nodesOf(n.Stats) }

// WithChildren returns a copy of the node with its children replaced.
func (n *StatList) WithChildren(children []Node) Node {
	cp := *n
	cp.Stats = make([]Node, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		cp.Stats = append(cp.Stats, c)
	}
	return &cp
}

// Kind of the node.
func (*Assign) Kind() Kind { return KindAssign }

// Children returns the declared children of the node.
func (n *Assign) Children() []Node { return []Node{n.LHS, n.RHS} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Assign) WithChildren(children []Node) Node {
	cp := *n
	cp.LHS = asExpr(children[0])
	cp.RHS = asExpr(children[1])
	return &cp
}

// Kind of the node.
func (*If) Kind() Kind { return KindIf }

// Children returns the declared children of the node.
func (n *If) Children() []Node { return []Node{n.Cond, n.Then, n.Else} }

// WithChildren returns a copy of the node with its children replaced.
func (n *If) WithChildren(children []Node) Node {
	cp := *n
	cp.Cond = asExpr(children[0])
	cp.Then = children[1]
	cp.Else = children[2]
	return &cp
}

// Kind of the node.
func (*For) Kind() Kind { return KindFor }

// Children returns the declared children of the node.
func (n *For) Children() []Node { return []Node{n.Init, n.Cond, n.Step, n.Body} }

// WithChildren returns a copy of the node with its children replaced.
func (n *For) WithChildren(children []Node) Node {
	cp := *n
	cp.Init = children[0]
	cp.Cond = asExpr(children[1])
	cp.Step = children[2]
	cp.Body = children[3]
	return &cp
}

// Kind of the node.
func (*Parallel) Kind() Kind { return KindParallel }

// Children returns the declared children of the node.
func (n *Parallel) Children() []Node { return []Node{n.Body} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Parallel) WithChildren(children []Node) Node {
	cp := *n
	cp.Body = children[0]
	return &cp
}

// Kind of the node.
func (*Arg) Kind() Kind { return KindArg }

// Type of the argument, that is the type of the variable it unpacks.
func (n *Arg) Type() types.Type { return n.Var.Typ }

// Name of the argument.
func (n *Arg) Name() string { return n.Var.Name }

// IsArray returns true if the argument is array-typed.
func (n *Arg) IsArray() bool { return types.IsArray(n.Var.Typ) }

// Children returns the declared children of the node.
func (n *Arg) Children() []Node { return nodesOf(n.Unpacked) }

// WithChildren returns a copy of the node with its children replaced.
func (n *Arg) WithChildren(children []Node) Node {
	cp := *n
	cp.Unpacked = make([]Expr, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		cp.Unpacked = append(cp.Unpacked, asExpr(c))
	}
	return &cp
}

// Kind of the node.
func (*Function) Kind() Kind { return KindFunction }

// Children returns the declared children of the node.
func (n *Function) Children() []Node {
	children := make([]Node, 0, len(n.Args)+1)
	children = append(children, n.Body)
	for _, arg := range n.Args {
		children = append(children, arg)
	}
	return children
}

// WithChildren returns a copy of the node with its children replaced.
func (n *Function) WithChildren(children []Node) Node {
	cp := *n
	cp.Body = children[0]
	cp.Args = make([]*Arg, 0, len(children)-1)
	for _, c := range children[1:] {
		if c == nil {
			continue
		}
		cp.Args = append(cp.Args, c.(*Arg))
	}
	return &cp
}

// Arg returns an argument given its name, or nil.
func (n *Function) Arg(name string) *Arg {
	for _, arg := range n.Args {
		if arg.Name() == name {
			return arg
		}
	}
	return nil
}

// Kind of the node.
func (*NDIterate) Kind() Kind { return KindNDIterate }

// Children returns the declared children of the node.
func (n *NDIterate) Children() []Node { return []Node{n.Body} }

// WithChildren returns a copy of the node with its children replaced.
func (n *NDIterate) WithChildren(children []Node) Node {
	cp := *n
	cp.Body = children[0]
	return &cp
}

// Kind of the node.
func (*Return) Kind() Kind { return KindReturn }

// Children returns the declared children of the node.
func (n *Return) Children() []Node { return []Node{n.Value} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Return) WithChildren(children []Node) Node {
	cp := *n
	cp.Value = asExpr(children[0])
	return &cp
}

// Kind of the node.
func (*Raise) Kind() Kind { return KindRaise }

// Children returns the declared children of the node.
func (n *Raise) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *Raise) WithChildren([]Node) Node {
	cp := *n
	return &cp
}

// Kind of the node.
func (*ErrorHandler) Kind() Kind { return KindErrorHandler }

// Children returns the declared children of the node. Slots that have not
// been materialized yet are nil.
func (n *ErrorHandler) Children() []Node {
	return []Node{
		n.FlagInit, n.Body, n.CleanupJump,
		n.ErrorTarget, n.FlagSet, n.CleanupTarget, n.Cascade,
	}
}

// WithChildren returns a copy of the node with its children replaced.
func (n *ErrorHandler) WithChildren(children []Node) Node {
	cp := *n
	cp.FlagInit = children[0]
	cp.Body = children[1]
	cp.CleanupJump = children[2]
	cp.ErrorTarget = children[3]
	cp.FlagSet = children[4]
	cp.CleanupTarget = children[5]
	cp.Cascade = children[6]
	return &cp
}

// Kind of the node.
func (*Jump) Kind() Kind { return KindJump }

// Children returns the declared children of the node.
func (n *Jump) Children() []Node { return []Node{n.Label} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Jump) WithChildren(children []Node) Node {
	cp := *n
	cp.Label = children[0].(*Label)
	return &cp
}

// Kind of the node.
func (*JumpTarget) Kind() Kind { return KindJumpTarget }

// Children returns the declared children of the node.
func (n *JumpTarget) Children() []Node { return []Node{n.Label} }

// WithChildren returns a copy of the node with its children replaced.
func (n *JumpTarget) WithChildren(children []Node) Node {
	cp := *n
	cp.Label = children[0].(*Label)
	return &cp
}

// Kind of the node.
func (*Label) Kind() Kind { return KindLabel }

// Children returns the declared children of the node.
func (n *Label) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *Label) WithChildren([]Node) Node {
	cp := *n
	return &cp
}
