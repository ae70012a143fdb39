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
	"slices"

	"github.com/gx-org/minivect/build/fmterr"
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
	"github.com/gx-org/minivect/build/visitor"
	"golang.org/x/exp/maps"
)

// tiledLayout blocks the two fastest-varying dimensions of the iteration
// order so that both operands of a transposed access pattern stay in cache.
// Element access stays fully strided.
type tiledLayout struct{}

// Tiled returns the specializer blocking the two fastest-varying dimensions.
// The tile edge comes from the builder configuration.
func Tiled(order Order) *Specializer {
	return newSpecializer("tiled", order, tiledLayout{})
}

func (tiledLayout) install(*state, *visitor.Transform) {}

// lowerIterate builds, from outside in: whole-range loops over the untiled
// dimensions, one tile loop per tiled dimension stepping by the tile edge,
// the bound clamps of the last, possibly partial, tile, and the two tiled
// element loops innermost.
func (tiledLayout) lowerIterate(s *state, n *ir.NDIterate) (ir.Node, error) {
	ndim := s.fn.NDim
	if ndim < 2 {
		return nil, fmterr.Errorf(n.Pos(), "tiling needs at least two dimensions, got %d", ndim)
	}
	b := s.b
	edge := b.IntConst(b.Blocksize())
	s.makeIndices()
	dims := s.order.dims(ndim)

	// The tiled dimensions are the two fastest-varying ones: the first two
	// in generation order.
	start := make(map[int]*ir.Temp, 2)
	for _, d := range dims[:2] {
		start[d] = b.Temp(types.IndexType())
	}
	clamp := make(map[int]*ir.Temp, 2)
	tiledDims := maps.Keys(start)
	slices.Sort(tiledDims)
	clampStmts := make([]ir.Node, 0, len(tiledDims))
	for _, d := range tiledDims {
		ext, err := s.extent(d)
		if err != nil {
			return nil, err
		}
		end, err := b.Add(start[d], edge)
		if err != nil {
			return nil, err
		}
		bound, err := b.Min(end, ext)
		if err != nil {
			return nil, err
		}
		clamp[d] = b.Temp(types.IndexType())
		clampStmts = append(clampStmts, b.Assign(clamp[d], bound))
	}

	body, err := s.lowerBody(n.Body)
	if err != nil {
		return nil, err
	}
	for _, d := range dims[:2] {
		loop, err := b.ForRange(s.indices[d], start[d], clamp[d], nil, body)
		if err != nil {
			return nil, err
		}
		body = loop
	}

	tile := ir.Node(b.StatList(append(clampStmts, body)...))
	for _, d := range dims[:2] {
		ext, err := s.extent(d)
		if err != nil {
			return nil, err
		}
		loop, err := b.ForRange(start[d], b.IntConst(0), ext, edge, tile)
		if err != nil {
			return nil, err
		}
		tile = loop
	}
	nest, err := s.nest(tile, dims[2:])
	if err != nil {
		return nil, err
	}
	return b.ParallelFor(nest), nil
}

func (tiledLayout) element(s *state, v *ir.Variable) (ir.Expr, error) {
	return stridedElement(s, v)
}
