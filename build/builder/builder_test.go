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

package builder_test

import (
	"strings"
	"testing"

	"github.com/gx-org/minivect/build/builder"
	"github.com/gx-org/minivect/build/fmterr"
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
	"github.com/pkg/errors"
)

// promoteNumeric widens to the float operand, errors on bool.
func promoteNumeric(x, y types.Type) (types.Type, error) {
	if x.Kind() == types.Bool || y.Kind() == types.Bool {
		return nil, errors.Errorf("no arithmetic on booleans")
	}
	if types.IsFloat(x.Kind()) {
		return x, nil
	}
	if types.IsFloat(y.Kind()) {
		return y, nil
	}
	return x, nil
}

func newBuilder() *builder.Builder {
	return builder.New(builder.Config{Promote: promoteNumeric})
}

func TestAddFoldsZero(t *testing.T) {
	b := newBuilder()
	x := b.Variable(types.IndexType(), "x")
	zero := b.IntConst(0)
	tests := []struct {
		desc string
		l, r ir.Expr
		want ir.Expr
	}{
		{desc: "x+0", l: x, r: zero, want: x},
		{desc: "0+x", l: zero, r: x, want: x},
	}
	for _, test := range tests {
		got, err := b.Add(test.l, test.r)
		if err != nil {
			t.Fatalf("%s: %v", test.desc, err)
		}
		if got != test.want {
			t.Errorf("%s = %s, want the operand unchanged", test.desc, ir.String(got))
		}
	}
	sum, err := b.Add(x, b.IntConst(2))
	if err != nil {
		t.Fatal(err)
	}
	if sum.(*ir.Binop).Op != ir.OpAdd {
		t.Errorf("x+2 built %s", ir.String(sum))
	}
}

func TestMulFoldsOne(t *testing.T) {
	b := newBuilder()
	x := b.Variable(types.IndexType(), "x")
	one := b.IntConst(1)
	for _, pair := range [][2]ir.Expr{{x, one}, {one, x}} {
		got, err := b.Mul(pair[0], pair[1])
		if err != nil {
			t.Fatal(err)
		}
		if got != x {
			t.Errorf("multiplying %s by one built %s", ir.String(x), ir.String(got))
		}
	}
	// Zero is not an identity of multiplication.
	prod, err := b.Mul(x, b.IntConst(0))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := prod.(*ir.Binop); !ok {
		t.Errorf("x*0 folded to %s", ir.String(prod))
	}
}

func TestArithPromotes(t *testing.T) {
	b := newBuilder()
	i := b.Variable(types.Scalar(types.Int64), "i")
	f := b.Variable(types.Scalar(types.Float64), "f")
	sum, err := b.Add(i, f)
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.Type().Kind(); got != types.Float64 {
		t.Errorf("int64+float64 typed %s, want float64", got)
	}
}

func TestArithUnsupported(t *testing.T) {
	b := newBuilder()
	x := b.Variable(types.BoolType(), "x")
	y := b.Variable(types.Scalar(types.Int64), "y")
	_, err := b.Add(x, y)
	if err == nil {
		t.Fatal("adding a boolean succeeded")
	}
	var unsup *fmterr.UnsupportedError
	if !errors.As(err, &unsup) {
		t.Fatalf("error %T, want *fmterr.UnsupportedError", err)
	}
	msg := unsup.Error()
	for _, want := range []string{"+", "bool", "int64"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not name %q", msg, want)
		}
	}
}

func TestPointerArithSkipsPromoter(t *testing.T) {
	b := builder.New(builder.Config{}) // no promoter configured
	ptr := b.Cast(b.Variable(types.IndexType(), "p"), types.PointerTo(types.ByteType()))
	off := b.IntConst(16)
	sum, err := b.Add(ptr, off)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Type().Equal(types.PointerTo(types.ByteType())) {
		t.Errorf("pointer+int typed %s, want *byte", sum.Type())
	}
}

func TestConstantInference(t *testing.T) {
	b := newBuilder()
	tests := []struct {
		value any
		want  types.Kind
	}{
		{value: 3, want: types.Index},
		{value: int64(3), want: types.Index},
		{value: 3.5, want: types.Float64},
		{value: true, want: types.Bool},
	}
	for _, test := range tests {
		c, err := b.Constant(test.value)
		if err != nil {
			t.Fatalf("Constant(%v): %v", test.value, err)
		}
		if got := c.Type().Kind(); got != test.want {
			t.Errorf("Constant(%v) typed %s, want %s", test.value, got, test.want)
		}
	}
	if _, err := b.Constant("not a constant"); err == nil {
		t.Errorf("inferred a type for a string literal")
	} else {
		var infer *fmterr.InferError
		if !errors.As(err, &infer) {
			t.Errorf("error %T, want *fmterr.InferError", err)
		}
	}
}

func TestTempNamesUnique(t *testing.T) {
	b := newBuilder()
	// A user variable squatting on a temp name must not collide with the
	// temp issued later, nor with the suffixed name that temp receives:
	// the first temp becomes temp11, and the eleventh, asking for exactly
	// temp11, must not get the same string back.
	b.Variable(types.IndexType(), "temp1")
	seen := map[string]bool{"temp1": true}
	for i := 0; i < 12; i++ {
		tmp := b.Temp(types.IndexType())
		if seen[tmp.Name] {
			t.Errorf("temp name %q issued twice", tmp.Name)
		}
		seen[tmp.Name] = true
	}
}

func TestIndexMultiple(t *testing.T) {
	b := newBuilder()
	data := b.Cast(b.Variable(types.IndexType(), "p"), types.PointerTo(types.ByteType()))
	offsets := []ir.Expr{b.IntConst(8), b.IntConst(24)}
	elemPtr := types.PointerTo(types.Scalar(types.Float64))
	deref, err := b.IndexMultiple(data, offsets, elemPtr)
	if err != nil {
		t.Fatal(err)
	}
	if got := deref.Type().Kind(); got != types.Float64 {
		t.Errorf("loaded value typed %s, want float64", got)
	}
	cast, ok := deref.X.(*ir.Cast)
	if !ok || !cast.Typ.Equal(elemPtr) {
		t.Fatalf("address %s, want a cast to %s", ir.String(deref.X), elemPtr)
	}
	if _, ok := cast.X.(*ir.Binop); !ok {
		t.Errorf("offsets not folded into an addition: %s", ir.String(cast.X))
	}
}

func TestStatListFlattens(t *testing.T) {
	b := newBuilder()
	x := b.Variable(types.IndexType(), "x")
	inner := b.StatList(b.Assign(x, b.IntConst(1)), b.Assign(x, b.IntConst(2)))
	out := b.StatList(nil, inner, nil, b.Assign(x, b.IntConst(3)))
	if len(out.Stats) != 3 {
		t.Fatalf("StatList has %d statements, want 3: %s", len(out.Stats), ir.String(out))
	}
	for _, stat := range out.Stats {
		if stat.Kind() != ir.KindAssign {
			t.Errorf("statement %s, want an assignment", ir.String(stat))
		}
	}
}

func TestFunction(t *testing.T) {
	b := newBuilder()
	elem := types.Scalar(types.Float64)
	out := b.Variable(types.ArrayOf(elem, 2), "out")
	in := b.Variable(types.ArrayOf(elem, 1), "in")
	scale := b.Variable(elem, "scale")
	fn, err := b.Function("scale_rows", b.Assign(out, in), []*ir.Variable{out, in, scale})
	if err != nil {
		t.Fatal(err)
	}
	if fn.NDim != 2 {
		t.Errorf("NDim = %d, want 2", fn.NDim)
	}
	if _, ok := fn.Body.(*ir.NDIterate); !ok {
		t.Errorf("body is %s, want an NDIterate placeholder", fn.Body.Kind())
	}
	// Shape vector first, then the declared arguments.
	wantArgs := []string{"shape", "out", "in", "scale"}
	if len(fn.Args) != len(wantArgs) {
		t.Fatalf("%d arguments, want %d", len(fn.Args), len(wantArgs))
	}
	for i, want := range wantArgs {
		if got := fn.Args[i].Name(); got != want {
			t.Errorf("argument %d named %q, want %q", i, got, want)
		}
	}
	// Array arguments unpack into data and stride views, scalars into
	// themselves.
	if got := len(fn.Arg("out").Unpacked); got != 2 {
		t.Errorf("array argument unpacks into %d variables, want 2", got)
	}
	if got := len(fn.Arg("scale").Unpacked); got != 1 {
		t.Errorf("scalar argument unpacks into %d variables, want 1", got)
	}
	if fn.ErrorValue.(*ir.Constant).Value != int64(-1) {
		t.Errorf("error sentinel %s, want -1", ir.String(fn.ErrorValue))
	}
	if fn.SuccessValue.(*ir.Constant).Value != int64(0) {
		t.Errorf("success sentinel %s, want 0", ir.String(fn.SuccessValue))
	}
}

func TestFunctionNeedsArray(t *testing.T) {
	b := newBuilder()
	x := b.Variable(types.Scalar(types.Float64), "x")
	if _, err := b.Function("f", b.Assign(x, x), []*ir.Variable{x}); err == nil {
		t.Errorf("built a function without an iteration space")
	}
}

func TestForRange(t *testing.T) {
	b := newBuilder()
	idx := b.Temp(types.IndexType())
	upper := b.Variable(types.IndexType(), "n")
	body := b.StatList()
	loop, err := b.ForRange(idx, b.IntConst(0), upper, nil, body)
	if err != nil {
		t.Fatal(err)
	}
	if loop.Index != idx {
		t.Errorf("loop index is %s, want %s", loop.Index.Name, idx.Name)
	}
	cond := loop.Cond.(*ir.Binop)
	if cond.Op != ir.OpLt {
		t.Errorf("loop condition %s, want <", cond.Op)
	}
	step := loop.Step.(*ir.Assign)
	inc, ok := step.RHS.(*ir.Binop)
	if !ok || inc.Op != ir.OpAdd || !inc.Y.(*ir.Constant).IsOne() {
		t.Errorf("default step %s, want index+1", ir.String(step))
	}
}

func TestParallelForGated(t *testing.T) {
	loop := &ir.StatList{}
	serial := builder.New(builder.Config{})
	if got := serial.ParallelFor(loop); got != ir.Node(loop) {
		t.Errorf("without the capability, ParallelFor wrapped the loop in %s", got.Kind())
	}
	parallel := builder.New(builder.Config{Caps: builder.CapParallelLoops})
	if got := parallel.ParallelFor(loop); got.Kind() != ir.KindParallel {
		t.Errorf("with the capability, ParallelFor built %s, want a parallel node", got.Kind())
	}
}
