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

package ir

import (
	"github.com/gx-org/minivect/build/types"
)

// Op is a binary or unary operator.
type Op string

// Operators on expressions.
const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"

	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
	OpEq Op = "=="
	OpNe Op = "!="

	// OpMin evaluates to the smaller of its two operands. Tiling uses it
	// to clamp the bound of the last, possibly partial, tile.
	OpMin Op = "min"

	OpNeg Op = "neg"
	OpNot Op = "!"
)

// ----------------------------------------------------------------------------
// Expressions.
type (
	// Binop applies a binary operator to two operands.
	Binop struct {
		Base
		Typ types.Type
		Op  Op
		X   Expr
		Y   Expr
	}

	// Unop applies a unary operator to one operand.
	Unop struct {
		Base
		Typ types.Type
		Op  Op
		X   Expr
	}

	// Cast reinterprets an expression as another type.
	Cast struct {
		Base
		Typ types.Type
		X   Expr
	}

	// Deref loads the value a pointer expression points to.
	Deref struct {
		Base
		Typ types.Type
		X   Expr
	}

	// Index loads the element at offset Off from pointer X, in element
	// granularity of the pointer type.
	Index struct {
		Base
		Typ types.Type
		X   Expr
		Off Expr
	}

	// Call invokes a function with arguments.
	Call struct {
		Base
		Typ  types.Type
		Func Expr
		Args []Expr
	}

	// FuncName references an external function by name.
	FuncName struct {
		Base
		Typ  types.Type
		Name string
	}

	// Constant is a literal value: int64, float64 or bool.
	Constant struct {
		Base
		Typ   types.Type
		Value any
	}

	// Variable is a named storage location, bound once per function from
	// its argument list.
	Variable struct {
		Base
		Typ  types.Type
		Name string
	}

	// Temp is a storage location synthesized by the builder. Its storage
	// is materialized lazily by the consuming backend.
	Temp struct {
		Variable
	}

	// DataPointer references the start of an array argument's data. It is
	// a derived view of the owning variable, never independently
	// allocated.
	DataPointer struct {
		Base
		Typ types.Type
		Of  *Variable
	}

	// StridePointer references the per-dimension byte strides of an array
	// argument. Derived view of the owning variable.
	StridePointer struct {
		Base
		Typ types.Type
		Of  *Variable
	}

	// ShapePointer references the per-dimension extents of an array
	// argument. Derived view of the owning variable.
	ShapePointer struct {
		Base
		Typ types.Type
		Of  *Variable
	}

	// Wrapper adapts an opaque front-end node to the node protocol. The
	// core only inspects it through the front-end adapter contract.
	Wrapper struct {
		Base
		Typ    types.Type
		Opaque any
	}
)

var (
	_ Expr = (*Binop)(nil)
	_ Expr = (*Unop)(nil)
	_ Expr = (*Cast)(nil)
	_ Expr = (*Deref)(nil)
	_ Expr = (*Index)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*FuncName)(nil)
	_ Expr = (*Constant)(nil)
	_ Expr = (*Variable)(nil)
	_ Expr = (*Temp)(nil)
	_ Expr = (*DataPointer)(nil)
	_ Expr = (*StridePointer)(nil)
	_ Expr = (*ShapePointer)(nil)
	_ Expr = (*Wrapper)(nil)
)

// Kind of the node.
func (*Binop) Kind() Kind { return KindBinop }

// Type of the expression.
func (n *Binop) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Binop) Children() []Node { return []Node{n.X, n.Y} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Binop) WithChildren(children []Node) Node {
	cp := *n
	cp.X = asExpr(children[0])
	cp.Y = asExpr(children[1])
	return &cp
}

// Kind of the node.
func (*Unop) Kind() Kind { return KindUnop }

// Type of the expression.
func (n *Unop) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Unop) Children() []Node { return []Node{n.X} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Unop) WithChildren(children []Node) Node {
	cp := *n
	cp.X = asExpr(children[0])
	return &cp
}

// Kind of the node.
func (*Cast) Kind() Kind { return KindCast }

// Type of the expression.
func (n *Cast) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Cast) Children() []Node { return []Node{n.X} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Cast) WithChildren(children []Node) Node {
	cp := *n
	cp.X = asExpr(children[0])
	return &cp
}

// Kind of the node.
func (*Deref) Kind() Kind { return KindDeref }

// Type of the expression.
func (n *Deref) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Deref) Children() []Node { return []Node{n.X} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Deref) WithChildren(children []Node) Node {
	cp := *n
	cp.X = asExpr(children[0])
	return &cp
}

// Kind of the node.
func (*Index) Kind() Kind { return KindIndex }

// Type of the expression.
func (n *Index) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Index) Children() []Node { return []Node{n.X, n.Off} }

// WithChildren returns a copy of the node with its children replaced.
func (n *Index) WithChildren(children []Node) Node {
	cp := *n
	cp.X = asExpr(children[0])
	cp.Off = asExpr(children[1])
	return &cp
}

// Kind of the node.
func (*Call) Kind() Kind { return KindCall }

// Type of the expression.
func (n *Call) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Call) Children() []Node {
	children := make([]Node, 0, len(n.Args)+1)
	children = append(children, n.Func)
	for _, arg := range n.Args {
		children = append(children, arg)
	}
	return children
}

// WithChildren returns a copy of the node with its children replaced.
func (n *Call) WithChildren(children []Node) Node {
	cp := *n
	cp.Func = asExpr(children[0])
	cp.Args = make([]Expr, 0, len(children)-1)
	for _, c := range children[1:] {
		if c == nil {
			continue
		}
		cp.Args = append(cp.Args, asExpr(c))
	}
	return &cp
}

// Kind of the node.
func (*FuncName) Kind() Kind { return KindFuncName }

// Type of the expression.
func (n *FuncName) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *FuncName) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *FuncName) WithChildren([]Node) Node {
	cp := *n
	return &cp
}

// Kind of the node.
func (*Constant) Kind() Kind { return KindConstant }

// Type of the expression.
func (n *Constant) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Constant) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *Constant) WithChildren([]Node) Node {
	cp := *n
	return &cp
}

// IsZero returns true if the constant is the integer zero.
func (n *Constant) IsZero() bool {
	v, ok := n.Value.(int64)
	return ok && v == 0
}

// IsOne returns true if the constant is the integer one.
func (n *Constant) IsOne() bool {
	v, ok := n.Value.(int64)
	return ok && v == 1
}

// Kind of the node.
func (*Variable) Kind() Kind { return KindVariable }

// Type of the expression.
func (n *Variable) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Variable) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *Variable) WithChildren([]Node) Node {
	cp := *n
	return &cp
}

// Kind of the node.
func (*Temp) Kind() Kind { return KindTemp }

// WithChildren returns a copy of the node with its children replaced.
func (n *Temp) WithChildren([]Node) Node {
	cp := *n
	return &cp
}

// Kind of the node.
func (*DataPointer) Kind() Kind { return KindDataPointer }

// Type of the expression.
func (n *DataPointer) Type() types.Type { return n.Typ }

// Name of the unpacked variable holding the pointer.
func (n *DataPointer) Name() string { return n.Of.Name + "_data" }

// Children returns the declared children of the node.
func (n *DataPointer) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *DataPointer) WithChildren([]Node) Node {
	cp := *n
	return &cp
}

// Kind of the node.
func (*StridePointer) Kind() Kind { return KindStridePointer }

// Type of the expression.
func (n *StridePointer) Type() types.Type { return n.Typ }

// Name of the unpacked variable holding the pointer.
func (n *StridePointer) Name() string { return n.Of.Name + "_strides" }

// Children returns the declared children of the node.
func (n *StridePointer) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *StridePointer) WithChildren([]Node) Node {
	cp := *n
	return &cp
}

// Kind of the node.
func (*ShapePointer) Kind() Kind { return KindShapePointer }

// Type of the expression.
func (n *ShapePointer) Type() types.Type { return n.Typ }

// Name of the unpacked variable holding the pointer.
func (n *ShapePointer) Name() string { return n.Of.Name + "_shape" }

// Children returns the declared children of the node.
func (n *ShapePointer) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *ShapePointer) WithChildren([]Node) Node {
	cp := *n
	return &cp
}

// Kind of the node.
func (*Wrapper) Kind() Kind { return KindWrapper }

// Type of the expression.
func (n *Wrapper) Type() types.Type { return n.Typ }

// Children returns the declared children of the node.
func (n *Wrapper) Children() []Node { return nil }

// WithChildren returns a copy of the node with its children replaced.
func (n *Wrapper) WithChildren([]Node) Node {
	cp := *n
	return &cp
}
