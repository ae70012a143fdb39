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

// Package specialize rewrites a generic elementwise function into
// memory-layout variants.
//
// A specializer never mutates the generic tree: each run works on a fresh
// builder and produces a new function. The placeholders of the generic tree
// (NDIterate, Raise, ErrorHandler) are guaranteed to be gone from the
// output; backends only ever see loops, jumps and conditionals.
package specialize

import (
	"github.com/gx-org/minivect/base/ordered"
	"github.com/gx-org/minivect/build/builder"
	"github.com/gx-org/minivect/build/fmterr"
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
	"github.com/gx-org/minivect/build/visitor"
	"github.com/gx-org/minivect/frontend"
	"github.com/pkg/errors"
)

// layout is the strategy of one memory-layout family. The surrounding
// machinery (function rewrite, error handler expansion, fault lowering,
// variable bookkeeping) is shared; a layout only decides how the iteration
// space becomes loops and how an array variable becomes a memory access.
type layout interface {
	// install registers extra handlers a layout needs on the transform.
	install(s *state, t *visitor.Transform)

	// lowerIterate replaces the NDIterate placeholder with a loop nest.
	lowerIterate(s *state, n *ir.NDIterate) (ir.Node, error)

	// element rewrites an array variable reference inside the loop body
	// into a memory access for this layout.
	element(s *state, v *ir.Variable) (ir.Expr, error)
}

// Specializer rewrites a generic function into one memory-layout variant.
type Specializer struct {
	name   string
	order  Order
	layout layout
}

func newSpecializer(family string, order Order, l layout) *Specializer {
	return &Specializer{name: family + "_" + order.String(), order: order, layout: l}
}

// Name of the specialization the specializer produces.
func (sp *Specializer) Name() string {
	return sp.name
}

// Order the specializer iterates in.
func (sp *Specializer) Order() Order {
	return sp.order
}

// state of one specialization run.
type state struct {
	spec   string
	ctx    *frontend.Context
	b      *builder.Builder
	t      *visitor.Transform
	order  Order
	layout layout

	fn *ir.Function

	// indices are the loop induction temporaries in natural dimension
	// order: indices[d] iterates dimension d.
	indices []*ir.Temp

	// inLoop is true while the body under the NDIterate placeholder is
	// being rewritten. Array variables are rewritten into memory accesses
	// only there.
	inLoop bool

	// handlers is the stack of open error handlers, innermost last.
	handlers []*ir.ErrorHandler

	// vars maps argument names to their canonical variables, in
	// declaration order.
	vars *ordered.Map[string, *ir.Variable]

	// flat is the flattened index of the contiguous layout.
	flat *ir.Temp

	// rowPtr maps an array argument name to its row pointer temporary in
	// the inner-contiguous layout.
	rowPtr map[string]*ir.Temp
}

// Specialize returns the layout variant of a generic function. The generic
// tree is left untouched and can be specialized again.
func (sp *Specializer) Specialize(ctx *frontend.Context, fn *ir.Function) (*ir.Function, error) {
	s := &state{
		spec:   sp.name,
		ctx:    ctx,
		b:      ctx.NewBuilder(),
		order:  sp.order,
		layout: sp.layout,
		vars:   ordered.NewMap[string, *ir.Variable](),
	}
	t := visitor.New()
	s.t = t
	t.Handle(ir.KindFunction, s.function)
	t.Handle(ir.KindNDIterate, s.ndIterate)
	t.Handle(ir.KindFor, s.forLoop)
	t.Handle(ir.KindVariable, s.variable)
	t.Handle(ir.KindErrorHandler, s.errorHandler)
	t.Handle(ir.KindRaise, s.raise)
	sp.layout.install(s, t)
	out, err := t.Node(fn)
	if err != nil {
		return nil, err
	}
	if len(s.handlers) > 0 {
		return nil, fmterr.Internal(errors.Errorf("%d error handlers left open after specializing %s", len(s.handlers), fn.Name))
	}
	outFn, ok := out.(*ir.Function)
	if !ok {
		return nil, fmterr.Internal(errors.Errorf("specializing %s produced a %s node, not a function", fn.Name, out.Kind()))
	}
	if err := verify(outFn); err != nil {
		return nil, err
	}
	return outFn, nil
}

// verify checks that no generic placeholder survived specialization.
func verify(fn *ir.Function) error {
	var bad ir.Node
	visitor.Visit(fn, func(n ir.Node) bool {
		switch n.Kind() {
		case ir.KindNDIterate, ir.KindRaise, ir.KindErrorHandler:
			bad = n
		}
		return bad == nil
	})
	if bad == nil {
		return nil
	}
	return fmterr.Internal(errors.Errorf("%s node left in the specialized output of %s", bad.Kind(), fn.Name))
}

// ----------------------------------------------------------------------------
// Handlers shared by all layouts.

func (s *state) function(n ir.Node) (ir.Node, error) {
	fn := n.(*ir.Function)
	if fn.NDim <= 0 {
		return nil, fmterr.Errorf(fn.Pos(), "function %s has no iteration space", fn.Name)
	}
	s.fn = fn
	s.b.SetPos(fn.Pos())
	for _, arg := range fn.Args {
		s.vars.Store(arg.Name(), arg.Var)
	}
	body := fn.Body
	if _, explicit := body.(*ir.ErrorHandler); !explicit && s.ctx.MayFault(body) {
		// Labels and flag are materialized when the handler is expanded.
		body = &ir.ErrorHandler{Base: ir.At(fn.Pos()), Body: body}
	}
	newBody, err := s.t.Node(body)
	if err != nil {
		return nil, err
	}
	args := make([]*ir.Arg, 0, len(fn.Args))
	for _, arg := range fn.Args {
		newArg, err := s.t.Node(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, newArg.(*ir.Arg))
	}
	cp := *fn
	cp.Body = s.b.StatList(newBody, s.b.Return(fn.SuccessValue))
	cp.Args = args
	cp.Specialization = s.spec
	return &cp, nil
}

// forLoop gives a faulting loop body its own error handler, like the
// function body. Loops the layouts generate never pass through here: they
// are built from already-rewritten bodies.
func (s *state) forLoop(n ir.Node) (ir.Node, error) {
	loop := n.(*ir.For)
	body := loop.Body
	if _, explicit := body.(*ir.ErrorHandler); explicit || !s.ctx.MayFault(body) {
		return s.t.Default(n)
	}
	cp := *loop
	cp.Body = &ir.ErrorHandler{Base: ir.At(loop.Pos()), Body: body}
	return s.t.Default(&cp)
}

func (s *state) ndIterate(n ir.Node) (ir.Node, error) {
	it := n.(*ir.NDIterate)
	s.b.SetPos(it.Pos())
	return s.layout.lowerIterate(s, it)
}

// lowerBody rewrites the body of the iteration space, with array variables
// becoming memory accesses.
func (s *state) lowerBody(body ir.Node) (ir.Node, error) {
	s.inLoop = true
	defer func() { s.inLoop = false }()
	return s.t.Node(body)
}

func (s *state) variable(n ir.Node) (ir.Node, error) {
	v := n.(*ir.Variable)
	if !s.inLoop || !types.IsArray(v.Typ) {
		return n.WithChildren(nil), nil
	}
	if canon, ok := s.vars.Load(v.Name); ok {
		v = canon
	}
	s.b.SetPos(v.Pos())
	return s.layout.element(s, v)
}

// errorHandler expands a handler into plain statements:
//
//	flag := false
//	<body>
//	goto cleanup
//	error:
//	flag := true
//	cleanup:
//	if flag { goto enclosing error | return error sentinel }
//
// A fault inside the body jumps to the error label; the cascade then walks
// the handler chain outward because each error entry sets its own flag.
func (s *state) errorHandler(n ir.Node) (ir.Node, error) {
	h := n.(*ir.ErrorHandler)
	b := s.b
	b.SetPos(h.Pos())
	cp := *h
	cp.Flag = b.Temp(types.BoolType())
	cp.ErrorLabel = b.Label("error")
	cp.CleanupLabel = b.Label("cleanup")

	s.handlers = append(s.handlers, &cp)
	body, err := s.t.Node(h.Body)
	s.handlers = s.handlers[:len(s.handlers)-1]
	if err != nil {
		return nil, err
	}

	cp.Body = body
	cp.FlagInit = b.Assign(cp.Flag, b.ConstantOf(false, types.BoolType()))
	cp.CleanupJump = b.Jump(cp.CleanupLabel)
	cp.ErrorTarget = b.JumpTarget(cp.ErrorLabel)
	cp.FlagSet = b.Assign(cp.Flag, b.ConstantOf(true, types.BoolType()))
	cp.CleanupTarget = b.JumpTarget(cp.CleanupLabel)
	var onError ir.Node
	if len(s.handlers) > 0 {
		outer := s.handlers[len(s.handlers)-1]
		onError = b.Jump(outer.ErrorLabel)
	} else {
		onError = b.Return(s.fn.ErrorValue)
	}
	cp.Cascade = b.If(cp.Flag, onError)
	return b.StatList(
		cp.FlagInit, cp.Body, cp.CleanupJump,
		cp.ErrorTarget, cp.FlagSet, cp.CleanupTarget, cp.Cascade,
	), nil
}

// raise lowers a fault site: set the innermost handler's flag and jump to
// its error label. Outside any handler a fault returns the error sentinel
// directly.
func (s *state) raise(n ir.Node) (ir.Node, error) {
	b := s.b
	b.SetPos(n.Pos())
	if len(s.handlers) == 0 {
		return b.Return(s.fn.ErrorValue), nil
	}
	h := s.handlers[len(s.handlers)-1]
	return b.StatList(
		b.Assign(h.Flag, b.ConstantOf(true, types.BoolType())),
		b.Jump(h.ErrorLabel),
	), nil
}

// ----------------------------------------------------------------------------
// Loop nest helpers shared by the layouts.

// makeIndices allocates the induction temporaries, one per dimension, in
// loop generation order.
func (s *state) makeIndices() {
	s.indices = make([]*ir.Temp, s.fn.NDim)
	for _, d := range s.order.dims(s.fn.NDim) {
		s.indices[d] = s.b.Temp(types.IndexType())
	}
}

// extent returns the extent of dimension d of the iteration space.
func (s *state) extent(d int) (ir.Expr, error) {
	return s.b.ShapeIndex(s.fn, d)
}

// nest wraps body in one whole-range loop per listed dimension, first listed
// innermost.
func (s *state) nest(body ir.Node, dims []int) (ir.Node, error) {
	for _, d := range dims {
		upper, err := s.extent(d)
		if err != nil {
			return nil, err
		}
		loop, err := s.b.ForRange(s.indices[d], s.b.IntConst(0), upper, nil, body)
		if err != nil {
			return nil, err
		}
		body = loop
	}
	return body, nil
}
