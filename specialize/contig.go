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

// contigLayout assumes every operand is one contiguous block of the full
// iteration shape: the whole space collapses to a single flat loop and the
// stride vectors are dropped from the signature. Choosing it for operands
// that are not contiguous, or not of full rank, is the caller's bug.
type contigLayout struct{}

// Contig returns the specializer for fully contiguous operands. The element
// order of the single loop matches the memory order of the operands, so the
// iteration order parameter disappears.
func Contig() *Specializer {
	return &Specializer{name: "contig", order: RowMajor, layout: contigLayout{}}
}

func (contigLayout) install(s *state, t *visitor.Transform) {
	// Contiguous access never consults strides. Dropping the view here
	// removes it from the unpacked argument lists.
	t.Handle(ir.KindStridePointer, func(ir.Node) (ir.Node, error) {
		return nil, nil
	})
}

func (contigLayout) lowerIterate(s *state, n *ir.NDIterate) (ir.Node, error) {
	b := s.b
	total := b.Temp(types.IndexType())
	s.flat = b.Temp(types.IndexType())
	var size ir.Expr = b.IntConst(1)
	for d := 0; d < s.fn.NDim; d++ {
		ext, err := s.extent(d)
		if err != nil {
			return nil, err
		}
		size, err = b.Mul(size, ext)
		if err != nil {
			return nil, err
		}
	}
	body, err := s.lowerBody(n.Body)
	if err != nil {
		return nil, err
	}
	loop, err := b.ForRange(s.flat, b.IntConst(0), total, nil, body)
	if err != nil {
		return nil, err
	}
	return b.StatList(b.Assign(total, size), b.ParallelFor(loop)), nil
}

func (contigLayout) element(s *state, v *ir.Variable) (ir.Expr, error) {
	arr, ok := v.Typ.(*types.ArrayType)
	if !ok {
		return nil, fmterr.Errorf(v.Pos(), "%s is not array-typed", v.Name)
	}
	if arr.NDim != s.fn.NDim {
		return nil, fmterr.Errorf(v.Pos(),
			"contiguous access needs %s of full rank %d, got rank %d",
			v.Name, s.fn.NDim, arr.NDim)
	}
	data, err := s.b.DataPointer(v)
	if err != nil {
		return nil, err
	}
	return s.b.Index(data, s.flat)
}
