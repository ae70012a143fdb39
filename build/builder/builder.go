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

// Package builder constructs minivect IR nodes.
//
// The builder owns the mutable state of one specialization run: the
// temporary counter, the name uniquifier and the current source position.
// Two runs never share a builder.
//
// Construction folds algebraic identities (x+0, 0+x, x*1, 1*x) so that the
// rest of the pipeline can rely on them being gone. Types of arithmetic
// nodes come from the front end's promotion callback: the builder never
// encodes promotion rules itself.
package builder

import (
	"fmt"

	"github.com/gx-org/minivect/base/uname"
	"github.com/gx-org/minivect/build/fmterr"
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
	"github.com/pkg/errors"
)

// Promoter combines the types of the two operands of an arithmetic node.
// The promotion rule table belongs to the front end. Identical operand
// types never reach the promoter: they promote to themselves.
type Promoter func(x, y types.Type) (types.Type, error)

// Capability of the code-generation backend consuming the specialized
// trees. Capabilities gate optional node kinds: the builder checks the set
// once at construction sites, never by ad hoc probing.
type Capability uint

// Backend capabilities.
const (
	// CapParallelLoops enables parallel-loop annotations on the
	// outermost generated loop.
	CapParallelLoops Capability = 1 << iota
)

// DefaultBlocksize is the tile edge used by the tiled specializers when the
// configuration does not override it.
const DefaultBlocksize = 128

// Config of a builder.
type Config struct {
	// Promote is the front end's type promotion callback. Required.
	Promote Promoter

	// Caps is the capability set of the consuming backend.
	Caps Capability

	// Blocksize overrides the tile edge of the tiled specializers.
	Blocksize int
}

// Builder produces IR nodes positioned at the position of the foreign node
// currently being mapped or specialized.
type Builder struct {
	cfg   Config
	pos   ir.Position
	names *uname.Unique

	tempCounter int
}

// New returns a builder for one specialization run.
func New(cfg Config) *Builder {
	if cfg.Blocksize <= 0 {
		cfg.Blocksize = DefaultBlocksize
	}
	return &Builder{cfg: cfg, names: uname.New()}
}

// Blocksize returns the tile edge used by the tiled specializers.
func (b *Builder) Blocksize() int {
	return b.cfg.Blocksize
}

// SetPos sets the position given to nodes built from now on.
func (b *Builder) SetPos(pos ir.Position) {
	b.pos = pos
}

// Pos returns the current position.
func (b *Builder) Pos() ir.Position {
	return b.pos
}

func (b *Builder) base() ir.Base {
	return ir.At(b.pos)
}

// ----------------------------------------------------------------------------
// Statements.

// StatList builds a statement list. Nested statement lists are flattened
// and nil statements dropped.
func (b *Builder) StatList(stats ...ir.Node) *ir.StatList {
	flat := make([]ir.Node, 0, len(stats))
	for _, stat := range stats {
		switch statT := stat.(type) {
		case nil:
		case *ir.StatList:
			flat = append(flat, statT.Stats...)
		default:
			flat = append(flat, stat)
		}
	}
	return &ir.StatList{Base: b.base(), Stats: flat}
}

// Assign builds a store of value into the location lhs names.
func (b *Builder) Assign(lhs, rhs ir.Expr) *ir.Assign {
	return &ir.Assign{Base: b.base(), LHS: lhs, RHS: rhs}
}

// If builds a one-armed conditional.
func (b *Builder) If(cond ir.Expr, then ir.Node) *ir.If {
	return &ir.If{Base: b.base(), Cond: cond, Then: then}
}

// IfElse builds a two-armed conditional.
func (b *Builder) IfElse(cond ir.Expr, then, els ir.Node) *ir.If {
	return &ir.If{Base: b.base(), Cond: cond, Then: then, Else: els}
}

// Return builds a function exit returning value.
func (b *Builder) Return(value ir.Expr) *ir.Return {
	return &ir.Return{Base: b.base(), Value: value}
}

// Raise builds an explicit fault site. Specializers lower it to the open
// error handler stack.
func (b *Builder) Raise() *ir.Raise {
	return &ir.Raise{Base: b.base()}
}

// Jump builds a transfer of control to label.
func (b *Builder) Jump(label *ir.Label) *ir.Jump {
	return &ir.Jump{Base: b.base(), Label: label}
}

// JumpTarget builds the point label transfers control to.
func (b *Builder) JumpTarget(label *ir.Label) *ir.JumpTarget {
	return &ir.JumpTarget{Base: b.base(), Label: label}
}

// Label builds a label, uniquifying its name within the run.
func (b *Builder) Label(name string) *ir.Label {
	return &ir.Label{Base: b.base(), Name: b.names.Name(name)}
}

// ErrorHandler wraps a body whose execution may fault. The handler's flag
// and jump slots are materialized by the specializer base, not here.
func (b *Builder) ErrorHandler(body ir.Node) *ir.ErrorHandler {
	return &ir.ErrorHandler{
		Base:         b.base(),
		Body:         body,
		ErrorLabel:   b.Label("error"),
		CleanupLabel: b.Label("cleanup"),
	}
}

// ParallelFor annotates a loop for parallel execution if the backend
// declared the capability. Without the capability the loop is returned
// unchanged.
func (b *Builder) ParallelFor(loop ir.Node) ir.Node {
	if b.cfg.Caps&CapParallelLoops == 0 {
		return loop
	}
	return &ir.Parallel{Base: b.base(), Body: loop}
}

// ----------------------------------------------------------------------------
// Expressions.

// Binop builds a binary operation of an explicit type.
func (b *Builder) Binop(typ types.Type, op ir.Op, x, y ir.Expr) *ir.Binop {
	return &ir.Binop{Base: b.base(), Typ: typ, Op: op, X: x, Y: y}
}

// Unop builds a unary operation of an explicit type.
func (b *Builder) Unop(typ types.Type, op ir.Op, x ir.Expr) *ir.Unop {
	return &ir.Unop{Base: b.base(), Typ: typ, Op: op, X: x}
}

func (b *Builder) promote(op ir.Op, x, y ir.Expr) (types.Type, error) {
	if x.Type() != nil && x.Type().Equal(y.Type()) {
		return x.Type(), nil
	}
	// Pointer plus integer is address arithmetic, not a promotion.
	if t, ok := pointerArith(x.Type(), y.Type()); ok {
		return t, nil
	}
	if b.cfg.Promote == nil {
		return nil, errors.Errorf("builder configured without a type promotion callback")
	}
	typ, err := b.cfg.Promote(x.Type(), y.Type())
	if err != nil {
		return nil, &fmterr.UnsupportedError{
			SrcPos: b.pos,
			Op:     op,
			Left:   x.Type(),
			Right:  y.Type(),
			Reason: err,
		}
	}
	return typ, nil
}

func pointerArith(x, y types.Type) (types.Type, bool) {
	if x.Kind() == types.Ptr && types.IsInteger(y.Kind()) {
		return x, true
	}
	if y.Kind() == types.Ptr && types.IsInteger(x.Kind()) {
		return y, true
	}
	return nil, false
}

func (b *Builder) arith(op ir.Op, x, y ir.Expr) (ir.Expr, error) {
	typ, err := b.promote(op, x, y)
	if err != nil {
		return nil, err
	}
	return b.Binop(typ, op, x, y), nil
}

// Add builds x + y. The additive identity is folded at construction time:
// adding a constant zero returns the other operand unchanged.
func (b *Builder) Add(x, y ir.Expr) (ir.Expr, error) {
	if c, ok := x.(*ir.Constant); ok && c.IsZero() {
		return y, nil
	}
	if c, ok := y.(*ir.Constant); ok && c.IsZero() {
		return x, nil
	}
	return b.arith(ir.OpAdd, x, y)
}

// Mul builds x * y. The multiplicative identity is folded at construction
// time: multiplying by a constant one returns the other operand unchanged.
func (b *Builder) Mul(x, y ir.Expr) (ir.Expr, error) {
	if c, ok := x.(*ir.Constant); ok && c.IsOne() {
		return y, nil
	}
	if c, ok := y.(*ir.Constant); ok && c.IsOne() {
		return x, nil
	}
	return b.arith(ir.OpMul, x, y)
}

// Min builds the smaller of x and y.
func (b *Builder) Min(x, y ir.Expr) (ir.Expr, error) {
	return b.arith(ir.OpMin, x, y)
}

// Constant builds a literal, inferring its type: integers become index
// constants, float64 becomes float64, bool becomes bool. Any other value is
// a specialization failure.
func (b *Builder) Constant(value any) (*ir.Constant, error) {
	switch v := value.(type) {
	case int:
		return b.ConstantOf(int64(v), types.IndexType()), nil
	case int64:
		return b.ConstantOf(v, types.IndexType()), nil
	case float64:
		return b.ConstantOf(v, types.Scalar(types.Float64)), nil
	case bool:
		return b.ConstantOf(v, types.BoolType()), nil
	default:
		return nil, &fmterr.InferError{SrcPos: b.pos, Value: value}
	}
}

// ConstantOf builds a literal of an explicit type.
func (b *Builder) ConstantOf(value any, typ types.Type) *ir.Constant {
	if v, ok := value.(int); ok {
		value = int64(v)
	}
	return &ir.Constant{Base: b.base(), Typ: typ, Value: value}
}

// IntConst builds an index-typed integer constant.
func (b *Builder) IntConst(value int) *ir.Constant {
	return b.ConstantOf(int64(value), types.IndexType())
}

// Variable builds a named storage location and reserves its name so that
// synthesized temporaries never collide with it.
func (b *Builder) Variable(typ types.Type, name string) *ir.Variable {
	b.names.Register(name)
	return &ir.Variable{Base: b.base(), Typ: typ, Name: name}
}

// Temp issues a fresh temporary. The counter increases monotonically within
// the run; colliding names get a numeric suffix.
func (b *Builder) Temp(typ types.Type) *ir.Temp {
	b.tempCounter++
	name := b.names.Name(fmt.Sprintf("temp%d", b.tempCounter))
	return &ir.Temp{Variable: ir.Variable{Base: b.base(), Typ: typ, Name: name}}
}

// Cast reinterprets x as typ.
func (b *Builder) Cast(x ir.Expr, typ types.Type) *ir.Cast {
	return &ir.Cast{Base: b.base(), Typ: typ, X: x}
}

// Deref loads the value ptr points to.
func (b *Builder) Deref(ptr ir.Expr) (*ir.Deref, error) {
	elem, ok := types.Elem(ptr.Type())
	if !ok {
		return nil, fmterr.Errorf(b.pos, "cannot dereference non-pointer type %s", ptr.Type())
	}
	return &ir.Deref{Base: b.base(), Typ: elem, X: ptr}, nil
}

// Index builds one offset-by-one-value address node: the element of ptr at
// offset off, in element granularity of the pointer type.
func (b *Builder) Index(ptr, off ir.Expr) (*ir.Index, error) {
	elem, ok := types.Elem(ptr.Type())
	if !ok {
		return nil, fmterr.Errorf(b.pos, "cannot index non-pointer type %s", ptr.Type())
	}
	return &ir.Index{Base: b.base(), Typ: elem, X: ptr, Off: off}, nil
}

// Offset folds a list of offsets into ptr by repeated addition, optionally
// casting the result to castTo. The returned expression is an address, not
// a load.
func (b *Builder) Offset(ptr ir.Expr, offsets []ir.Expr, castTo types.Type) (ir.Expr, error) {
	var err error
	for _, off := range offsets {
		ptr, err = b.Add(ptr, off)
		if err != nil {
			return nil, err
		}
	}
	if castTo != nil {
		ptr = b.Cast(ptr, castTo)
	}
	return ptr, nil
}

// IndexMultiple folds a list of offsets into ptr via repeated addition,
// optionally inserting a pointer cast, and dereferences the result.
func (b *Builder) IndexMultiple(ptr ir.Expr, offsets []ir.Expr, castTo types.Type) (*ir.Deref, error) {
	addr, err := b.Offset(ptr, offsets, castTo)
	if err != nil {
		return nil, err
	}
	return b.Deref(addr)
}

// Call invokes an external function.
func (b *Builder) Call(typ types.Type, fn ir.Expr, args ...ir.Expr) *ir.Call {
	return &ir.Call{Base: b.base(), Typ: typ, Func: fn, Args: args}
}

// FuncName references an external function.
func (b *Builder) FuncName(typ types.Type, name string) *ir.FuncName {
	return &ir.FuncName{Base: b.base(), Typ: typ, Name: name}
}

// Wrap adapts an opaque front-end node.
func (b *Builder) Wrap(opaque any, pos ir.Position, typ types.Type) *ir.Wrapper {
	return &ir.Wrapper{Base: ir.At(pos), Typ: typ, Opaque: opaque}
}
