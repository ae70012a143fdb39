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

package builder

import (
	"github.com/gx-org/minivect/build/fmterr"
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
)

// ----------------------------------------------------------------------------
// Array argument views.

// DataPointer returns the view of an array variable's data pointer.
func (b *Builder) DataPointer(v *ir.Variable) (*ir.DataPointer, error) {
	arr, ok := v.Typ.(*types.ArrayType)
	if !ok {
		return nil, fmterr.Errorf(b.pos, "no data pointer: %s is not array-typed", v.Name)
	}
	return &ir.DataPointer{Base: b.base(), Typ: types.PointerTo(arr.DType), Of: v}, nil
}

// StridePointer returns the view of an array variable's stride vector. One
// entry per dimension, in bytes.
func (b *Builder) StridePointer(v *ir.Variable) (*ir.StridePointer, error) {
	if !types.IsArray(v.Typ) {
		return nil, fmterr.Errorf(b.pos, "no stride pointer: %s is not array-typed", v.Name)
	}
	return &ir.StridePointer{Base: b.base(), Typ: types.PointerTo(types.IndexType()), Of: v}, nil
}

// ShapePointer returns the view of an array variable's extent vector.
func (b *Builder) ShapePointer(v *ir.Variable) (*ir.ShapePointer, error) {
	if !types.IsArray(v.Typ) {
		return nil, fmterr.Errorf(b.pos, "no shape pointer: %s is not array-typed", v.Name)
	}
	return &ir.ShapePointer{Base: b.base(), Typ: types.PointerTo(types.IndexType()), Of: v}, nil
}

// Stride returns the byte stride of dimension dim of an array variable.
func (b *Builder) Stride(v *ir.Variable, dim int) (ir.Expr, error) {
	strides, err := b.StridePointer(v)
	if err != nil {
		return nil, err
	}
	return b.Index(strides, b.IntConst(dim))
}

// ShapeIndex returns the extent of dimension dim of the function's broadcast
// shape vector.
func (b *Builder) ShapeIndex(fn *ir.Function, dim int) (ir.Expr, error) {
	shape, err := b.ShapePointer(fn.Shape)
	if err != nil {
		return nil, err
	}
	return b.Index(shape, b.IntConst(dim))
}

// FuncArg builds a function argument. Array arguments unpack into their data
// and stride pointer views; scalar arguments unpack into themselves.
func (b *Builder) FuncArg(v *ir.Variable) (*ir.Arg, error) {
	if !types.IsArray(v.Typ) {
		return &ir.Arg{Base: b.base(), Var: v, Unpacked: []ir.Expr{v}}, nil
	}
	data, err := b.DataPointer(v)
	if err != nil {
		return nil, err
	}
	strides, err := b.StridePointer(v)
	if err != nil {
		return nil, err
	}
	return &ir.Arg{Base: b.base(), Var: v, Unpacked: []ir.Expr{data, strides}}, nil
}

// Function builds the generic function over one iteration space. The body is
// wrapped in an NDIterate placeholder for the specializers to expand. The
// broadcast shape vector becomes the implicit first argument; at least one
// argument must be array-typed.
func (b *Builder) Function(name string, body ir.Node, args []*ir.Variable) (*ir.Function, error) {
	ndim := 0
	for _, v := range args {
		if arr, ok := v.Typ.(*types.ArrayType); ok && arr.NDim > ndim {
			ndim = arr.NDim
		}
	}
	if ndim == 0 {
		return nil, fmterr.Errorf(b.pos, "function %s has no array argument to iterate over", name)
	}
	shape := b.Variable(types.ArrayOf(types.IndexType(), 1), "shape")
	shapeArg := &ir.Arg{Base: b.base(), Var: shape, Unpacked: []ir.Expr{
		&ir.ShapePointer{Base: b.base(), Typ: types.PointerTo(types.IndexType()), Of: shape},
	}}
	funcArgs := []*ir.Arg{shapeArg}
	for _, v := range args {
		arg, err := b.FuncArg(v)
		if err != nil {
			return nil, err
		}
		funcArgs = append(funcArgs, arg)
	}
	return &ir.Function{
		Base:         b.base(),
		Name:         name,
		Body:         &ir.NDIterate{Base: b.base(), Body: body},
		Args:         funcArgs,
		Shape:        shape,
		ErrorValue:   b.IntConst(-1),
		SuccessValue: b.IntConst(0),
		NDim:         ndim,
	}, nil
}

// ----------------------------------------------------------------------------
// Loops.

// ForRange builds a counted loop over [lower, upper) with an explicit
// induction temporary. A nil step means 1.
func (b *Builder) ForRange(idx *ir.Temp, lower, upper, step ir.Expr, body ir.Node) (*ir.For, error) {
	if step == nil {
		step = b.IntConst(1)
	}
	next, err := b.Add(idx, step)
	if err != nil {
		return nil, err
	}
	return &ir.For{
		Base:  b.base(),
		Init:  b.Assign(idx, lower),
		Cond:  b.Binop(types.BoolType(), ir.OpLt, idx, upper),
		Step:  b.Assign(idx, next),
		Body:  body,
		Index: idx,
	}, nil
}

// ForRangeUpwards builds a counted loop over [lower, upper) with a fresh
// index temporary, returned alongside the loop.
func (b *Builder) ForRangeUpwards(body ir.Node, lower, upper, step ir.Expr) (*ir.For, *ir.Temp, error) {
	idx := b.Temp(types.IndexType())
	loop, err := b.ForRange(idx, lower, upper, step, body)
	if err != nil {
		return nil, nil, err
	}
	return loop, idx, nil
}
