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

package specialize

import (
	"github.com/gx-org/minivect/build/fmterr"
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
	"github.com/gx-org/minivect/build/visitor"
)

// innerContigLayout assumes each operand is contiguous along the
// fastest-varying dimension of the iteration order, and strided elsewhere.
// The stride arithmetic of the outer dimensions is hoisted into one row
// pointer per operand; the innermost loop indexes the rows directly.
type innerContigLayout struct{}

// InnerContig returns the specializer for operands contiguous in their
// innermost dimension.
func InnerContig(order Order) *Specializer {
	return newSpecializer("inner_contig", order, innerContigLayout{})
}

func (innerContigLayout) install(*state, *visitor.Transform) {}

// contigDim returns the fastest-varying dimension of the run's order.
func (s *state) contigDim() int {
	return s.order.dims(s.fn.NDim)[0]
}

func (innerContigLayout) lowerIterate(s *state, n *ir.NDIterate) (ir.Node, error) {
	b := s.b
	s.makeIndices()
	dims := s.order.dims(s.fn.NDim)
	cd := dims[0]

	// One row pointer per array operand, recomputed each time an outer
	// index moves.
	s.rowPtr = make(map[string]*ir.Temp)
	var assigns []ir.Node
	for _, v := range s.vars.Values() {
		if v == s.fn.Shape {
			continue
		}
		arr, ok := v.Typ.(*types.ArrayType)
		if !ok {
			continue
		}
		addr, err := rowAddress(s, v, arr, cd)
		if err != nil {
			return nil, err
		}
		ptr := b.Temp(types.PointerTo(arr.DType))
		s.rowPtr[v.Name] = ptr
		assigns = append(assigns, b.Assign(ptr, addr))
	}

	body, err := s.lowerBody(n.Body)
	if err != nil {
		return nil, err
	}
	upper, err := s.extent(cd)
	if err != nil {
		return nil, err
	}
	inner, err := b.ForRange(s.indices[cd], b.IntConst(0), upper, nil, body)
	if err != nil {
		return nil, err
	}
	nest, err := s.nest(b.StatList(append(assigns, inner)...), dims[1:])
	if err != nil {
		return nil, err
	}
	return b.ParallelFor(nest), nil
}

// rowAddress builds the base address of the row of v the outer indices
// select: the byte-offset sum of every dimension except the contiguous one,
// cast to an element pointer.
func rowAddress(s *state, v *ir.Variable, arr *types.ArrayType, cd int) (ir.Expr, error) {
	b := s.b
	first := s.fn.NDim - arr.NDim
	if cd < first {
		return nil, fmterr.Errorf(v.Pos(),
			"inner-contiguous access needs %s of full rank %d, got rank %d",
			v.Name, s.fn.NDim, arr.NDim)
	}
	data, err := b.DataPointer(v)
	if err != nil {
		return nil, err
	}
	offsets := make([]ir.Expr, 0, arr.NDim)
	for j := 0; j < arr.NDim; j++ {
		if first+j == cd {
			continue
		}
		stride, err := b.Stride(v, j)
		if err != nil {
			return nil, err
		}
		term, err := b.Mul(s.indices[first+j], stride)
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, term)
	}
	bytePtr := b.Cast(data, types.PointerTo(types.ByteType()))
	return b.Offset(bytePtr, offsets, types.PointerTo(arr.DType))
}

func (innerContigLayout) element(s *state, v *ir.Variable) (ir.Expr, error) {
	ptr, ok := s.rowPtr[v.Name]
	if !ok {
		return nil, fmterr.Errorf(v.Pos(), "%s is not an array argument of %s", v.Name, s.fn.Name)
	}
	return s.b.Index(ptr, s.indices[s.contigDim()])
}
