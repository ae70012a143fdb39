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

// Package frontend is the contract between a host compiler and the
// specialization core.
//
// A front end embeds fragments of its own AST into a minivect tree as opaque
// Wrapper nodes. The core never inspects an opaque node directly: everything
// it needs (position, type, faultability) goes through the Adapter the front
// end registers on its Context.
package frontend

import (
	"github.com/gx-org/minivect/build/builder"
	"github.com/gx-org/minivect/build/fmterr"
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
	"github.com/gx-org/minivect/build/visitor"
)

// Adapter answers the core's questions about opaque front-end nodes.
type Adapter interface {
	// Pos returns the source position of an opaque node.
	Pos(opaque any) ir.Position

	// Type returns the minivect type of an opaque expression.
	Type(opaque any) (types.Type, error)

	// Children returns the child nodes of an opaque node, in order.
	Children(opaque any) []any

	// MayFault reports whether evaluating an opaque node itself can raise
	// a run-time fault. The core combines the judgment over Children, so
	// an implementation only answers for the node it is given.
	// Implementations should over-approximate.
	MayFault(opaque any) bool
}

// Context ties a front end to the core for the lifetime of the host
// compilation. It is immutable and shared across specialization runs; all
// per-run state lives in the builders it issues.
type Context struct {
	// Adapter of the host compiler. Required when trees embed opaque
	// nodes.
	Adapter Adapter

	// Config passed to every builder issued by the context.
	Config builder.Config

	// Decl spells a minivect type in the host's target language. Optional;
	// only backends that print declarations consult it.
	Decl func(types.Type) string
}

// NewBuilder issues a fresh builder. Each specialization run gets its own so
// that temporary numbering and name uniquing are per run.
func (c *Context) NewBuilder() *builder.Builder {
	return builder.New(c.Config)
}

// MayFault reports whether executing a tree may raise a run-time fault,
// judging opaque nodes through the adapter. Without an adapter every opaque
// node is assumed to fault.
func (c *Context) MayFault(n ir.Node) bool {
	var judge func(*ir.Wrapper) bool
	if c.Adapter != nil {
		judge = func(w *ir.Wrapper) bool {
			return c.opaqueMayFault(w.Opaque)
		}
	}
	return visitor.MayFault(n, judge)
}

// opaqueMayFault walks the foreign subtree below an opaque node: the adapter
// judges each node, the core combines.
func (c *Context) opaqueMayFault(opaque any) bool {
	if c.Adapter.MayFault(opaque) {
		return true
	}
	for _, child := range c.Adapter.Children(opaque) {
		if c.opaqueMayFault(child) {
			return true
		}
	}
	return false
}

// Mapper embeds opaque front-end nodes into a minivect tree under
// construction.
type Mapper struct {
	ctx *Context
	b   *builder.Builder
}

// NewMapper returns a mapper with a fresh builder.
func (c *Context) NewMapper() *Mapper {
	return &Mapper{ctx: c, b: c.NewBuilder()}
}

// Builder returns the builder the mapper embeds nodes with. The front end
// uses it to build the minivect parts of the tree around its opaque nodes.
func (m *Mapper) Builder() *builder.Builder {
	return m.b
}

// Wrap embeds one opaque front-end node. The builder position moves to the
// opaque node's position, so minivect nodes built next inherit it.
func (m *Mapper) Wrap(opaque any) (*ir.Wrapper, error) {
	pos := m.ctx.Adapter.Pos(opaque)
	typ, err := m.ctx.Adapter.Type(opaque)
	if err != nil {
		return nil, fmterr.Position(pos, err)
	}
	m.b.SetPos(pos)
	return m.b.Wrap(opaque, pos, typ), nil
}
