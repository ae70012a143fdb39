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

package specialize_test

import (
	"testing"

	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
	"github.com/gx-org/minivect/build/visitor"
	"github.com/gx-org/minivect/frontend"
	"github.com/gx-org/minivect/specialize"
)

// buildGuardedCopy returns a copy function that faults when it reads the
// trigger value: out = in; if in == trigger { fault }. With nested set, the
// fault check runs under its own error handler inside the loop body.
func buildGuardedCopy(t *testing.T, ctx *frontend.Context, trigger int64, nested bool) *ir.Function {
	t.Helper()
	b := ctx.NewBuilder()
	out := b.Variable(types.ArrayOf(elem, 2), "out")
	in := b.Variable(types.ArrayOf(elem, 2), "in")
	hit := b.Binop(types.BoolType(), ir.OpEq, in, b.ConstantOf(trigger, elem))
	var check ir.Node = b.If(hit, b.Raise())
	if nested {
		check = &ir.ErrorHandler{Body: check}
	}
	body := b.StatList(b.Assign(out, in), check)
	fn, err := b.Function("guarded_copy", body, []*ir.Variable{out, in})
	if err != nil {
		t.Fatalf("building the generic function: %v", err)
	}
	return fn
}

func TestFaultReturnsErrorSentinel(t *testing.T) {
	ctx := testContext()
	shape := []int64{2, 4}
	tests := []struct {
		desc       string
		trigger    int64
		wantRet    int64
		wantStores int
	}{
		{
			// Input values are flat+100: 106 sits at flat position 6.
			// The element is written before the fault check, then the
			// iteration aborts.
			desc:       "fault mid-iteration",
			trigger:    106,
			wantRet:    -1,
			wantStores: 7,
		},
		{
			desc:       "no fault",
			trigger:    9999,
			wantRet:    0,
			wantStores: 8,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			fn := buildGuardedCopy(t, ctx, test.trigger, false)
			got := mustSpecialize(t, specialize.Strided(specialize.RowMajor), ctx, fn)
			m := setupCopy(got, shape)
			if ret := mustRun(t, m, got); ret != test.wantRet {
				t.Errorf("returned %d, want %d", ret, test.wantRet)
			}
			if len(m.stores) != test.wantStores {
				t.Errorf("%d stores, want %d", len(m.stores), test.wantStores)
			}
		})
	}
}

func TestFaultCascadesThroughNestedHandlers(t *testing.T) {
	ctx := testContext()
	fn := buildGuardedCopy(t, ctx, 106, true)
	got := mustSpecialize(t, specialize.Strided(specialize.RowMajor), ctx, fn)

	// Two expanded handlers: the explicit inner one and the one wrapped
	// around the whole iteration, with a jump target pair each.
	if n := countKind(got, ir.KindJumpTarget); n != 4 {
		t.Errorf("%d jump targets, want 4", n)
	}
	// The error sentinel is returned by the outermost cascade only; the
	// inner one jumps outward instead.
	errorReturns := 0
	visitor.Visit(got, func(n ir.Node) bool {
		ret, ok := n.(*ir.Return)
		if !ok {
			return true
		}
		if c, ok := ret.Value.(*ir.Constant); ok && c.Value == int64(-1) {
			errorReturns++
		}
		return true
	})
	if errorReturns != 1 {
		t.Errorf("%d returns of the error sentinel, want exactly 1", errorReturns)
	}

	shape := []int64{2, 4}
	m := setupCopy(got, shape)
	if ret := mustRun(t, m, got); ret != -1 {
		t.Errorf("returned %d, want -1", ret)
	}
	if len(m.stores) != 7 {
		t.Errorf("%d stores, want 7: the fault must abort the iteration", len(m.stores))
	}
}

func TestFaultLoopBodyGetsOwnHandler(t *testing.T) {
	ctx := testContext()
	b := ctx.NewBuilder()
	out := b.Variable(types.ArrayOf(elem, 2), "out")
	in := b.Variable(types.ArrayOf(elem, 2), "in")
	hit := b.Binop(types.BoolType(), ir.OpEq, in, b.ConstantOf(int64(106), elem))
	check := b.If(hit, b.Raise())
	// An explicit loop whose body may fault gets wrapped like the function
	// body does, without asking for a handler.
	retry, _, err := b.ForRangeUpwards(check, b.IntConst(0), b.IntConst(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	body := b.StatList(b.Assign(out, in), retry)
	fn, err := b.Function("guarded_copy", body, []*ir.Variable{out, in})
	if err != nil {
		t.Fatalf("building the generic function: %v", err)
	}

	got := mustSpecialize(t, specialize.Strided(specialize.RowMajor), ctx, fn)
	// One handler around the iteration, one around the loop body.
	if n := countKind(got, ir.KindJumpTarget); n != 4 {
		t.Errorf("%d jump targets, want 4", n)
	}
	shape := []int64{2, 4}
	m := setupCopy(got, shape)
	if ret := mustRun(t, m, got); ret != -1 {
		t.Errorf("returned %d, want -1", ret)
	}
	if len(m.stores) != 7 {
		t.Errorf("%d stores, want 7: the fault must abort the iteration", len(m.stores))
	}
}

func TestFaultInEveryLayout(t *testing.T) {
	ctx := testContext()
	fn := buildGuardedCopy(t, ctx, 103, false)
	shape := []int64{2, 4}
	// The layouts whose memory assumptions hold for packed row-major
	// operands of this shape.
	sps := []*specialize.Specializer{
		specialize.Strided(specialize.RowMajor),
		specialize.Strided(specialize.ColMajor),
		specialize.Contig(),
		specialize.InnerContig(specialize.RowMajor),
		specialize.Tiled(specialize.RowMajor),
		specialize.Tiled(specialize.ColMajor),
	}
	for _, sp := range sps {
		t.Run(sp.Name(), func(t *testing.T) {
			got := mustSpecialize(t, sp, ctx, fn)
			m := setupCopy(got, shape)
			if ret := mustRun(t, m, got); ret != -1 {
				t.Errorf("returned %d, want -1", ret)
			}
		})
	}
}
