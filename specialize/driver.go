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
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/frontend"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Result is one specialized variant of a function.
type Result struct {
	// Name of the specialization that produced the function.
	Name string

	// Function is the specialized function.
	Function *ir.Function
}

// All returns the full standard set of specializers: strided, tiled and
// inner-contiguous in both iteration orders, plus the single fully
// contiguous one.
func All() []*Specializer {
	return []*Specializer{
		Contig(),
		Strided(RowMajor), Strided(ColMajor),
		InnerContig(RowMajor), InnerContig(ColMajor),
		Tiled(RowMajor), Tiled(ColMajor),
	}
}

// Run specializes a generic function with every given specializer. Each
// specializer runs independently on the untouched generic tree: one failing
// does not prevent the others from producing their variant. The error
// aggregates all failures.
func Run(ctx *frontend.Context, fn *ir.Function, sps []*Specializer) ([]Result, error) {
	results := make([]Result, 0, len(sps))
	var errs error
	for _, sp := range sps {
		out, err := sp.Specialize(ctx, fn)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "specializing %s as %s", fn.Name, sp.Name()))
			continue
		}
		results = append(results, Result{Name: sp.Name(), Function: out})
	}
	return results, errs
}
