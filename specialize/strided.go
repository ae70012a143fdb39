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

// stridedLayout makes no assumption about memory: every element access goes
// through byte-granular stride arithmetic.
type stridedLayout struct{}

// Strided returns the specializer for arbitrarily strided operands.
func Strided(order Order) *Specializer {
	return newSpecializer("strided", order, stridedLayout{})
}

func (stridedLayout) install(*state, *visitor.Transform) {}

func (stridedLayout) lowerIterate(s *state, n *ir.NDIterate) (ir.Node, error) {
	s.makeIndices()
	body, err := s.lowerBody(n.Body)
	if err != nil {
		return nil, err
	}
	nest, err := s.nest(body, s.order.dims(s.fn.NDim))
	if err != nil {
		return nil, err
	}
	return s.b.ParallelFor(nest), nil
}

func (stridedLayout) element(s *state, v *ir.Variable) (ir.Expr, error) {
	return stridedElement(s, v)
}

// stridedElement builds the access to the element of v selected by the
// current loop indices:
//
//	*(elem*)((byte*)v_data + i0*v_strides[0] + i1*v_strides[1] + ...)
//
// Strides are in bytes, so the data pointer is offset at byte granularity
// and cast back to the element type. An operand of lower rank than the
// iteration space aligns with its trailing dimensions.
func stridedElement(s *state, v *ir.Variable) (ir.Expr, error) {
	b := s.b
	arr, ok := v.Typ.(*types.ArrayType)
	if !ok {
		return nil, fmterr.Errorf(v.Pos(), "%s is not array-typed", v.Name)
	}
	data, err := b.DataPointer(v)
	if err != nil {
		return nil, err
	}
	first := s.fn.NDim - arr.NDim
	offsets := make([]ir.Expr, 0, arr.NDim)
	for i := 0; i < arr.NDim; i++ {
		stride, err := b.Stride(v, i)
		if err != nil {
			return nil, err
		}
		term, err := b.Mul(s.indices[first+i], stride)
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, term)
	}
	bytePtr := b.Cast(data, types.PointerTo(types.ByteType()))
	return b.IndexMultiple(bytePtr, offsets, types.PointerTo(arr.DType))
}
