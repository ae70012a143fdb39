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

// A small interpreter over specialized trees. Memory is a sparse map of
// byte addresses to int64 values; pointers are plain addresses. It executes
// exactly what the specializers emit (loops, jumps, conditionals, loads and
// stores) and records every store so tests can check iteration order and
// coverage.

import (
	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
	"github.com/pkg/errors"
)

type ctrl int

const (
	ctrlNext ctrl = iota
	ctrlReturn
	ctrlGoto
)

type outcome struct {
	kind  ctrl
	value int64
	label string
}

type machine struct {
	mem  map[int64]int64
	vars map[string]int64

	// stores lists the byte address of every memory store, in execution
	// order.
	stores []int64
}

func newMachine() *machine {
	return &machine{
		mem:  make(map[int64]int64),
		vars: make(map[string]int64),
	}
}

// bindArray binds the unpacked views of an array argument: the data pointer
// to base, and the stride vector (in bytes) to its own region.
func (m *machine) bindArray(name string, base, stridesBase int64, strides []int64) {
	m.vars[name+"_data"] = base
	m.vars[name+"_strides"] = stridesBase
	for i, s := range strides {
		m.mem[stridesBase+int64(i)*8] = s
	}
}

// bindShape binds the iteration shape vector of a function.
func (m *machine) bindShape(fn *ir.Function, base int64, shape []int64) {
	m.vars[fn.Shape.Name+"_shape"] = base
	for i, s := range shape {
		m.mem[base+int64(i)*8] = s
	}
}

func (m *machine) store(addr, v int64) {
	m.mem[addr] = v
	m.stores = append(m.stores, addr)
}

// run executes a specialized function and returns its return value.
func (m *machine) run(fn *ir.Function) (int64, error) {
	out, err := m.exec(fn.Body)
	if err != nil {
		return 0, err
	}
	if out.kind != ctrlReturn {
		return 0, errors.Errorf("function %s did not return (control %d)", fn.Name, out.kind)
	}
	return out.value, nil
}

func (m *machine) exec(n ir.Node) (outcome, error) {
	switch nT := n.(type) {
	case *ir.StatList:
		i := 0
		for i < len(nT.Stats) {
			out, err := m.exec(nT.Stats[i])
			if err != nil {
				return outcome{}, err
			}
			switch out.kind {
			case ctrlReturn:
				return out, nil
			case ctrlGoto:
				at := findTarget(nT.Stats, out.label)
				if at < 0 {
					return out, nil
				}
				i = at + 1
				continue
			}
			i++
		}
		return outcome{}, nil
	case *ir.Assign:
		return outcome{}, m.assign(nT)
	case *ir.If:
		cond, err := m.eval(nT.Cond)
		if err != nil {
			return outcome{}, err
		}
		if cond != 0 {
			return m.exec(nT.Then)
		}
		if nT.Else != nil {
			return m.exec(nT.Else)
		}
		return outcome{}, nil
	case *ir.For:
		if out, err := m.exec(nT.Init); err != nil || out.kind != ctrlNext {
			return out, err
		}
		for {
			cond, err := m.eval(nT.Cond)
			if err != nil {
				return outcome{}, err
			}
			if cond == 0 {
				return outcome{}, nil
			}
			if out, err := m.exec(nT.Body); err != nil || out.kind != ctrlNext {
				return out, err
			}
			if out, err := m.exec(nT.Step); err != nil || out.kind != ctrlNext {
				return out, err
			}
		}
	case *ir.Parallel:
		return m.exec(nT.Body)
	case *ir.Return:
		v, err := m.eval(nT.Value)
		if err != nil {
			return outcome{}, err
		}
		return outcome{kind: ctrlReturn, value: v}, nil
	case *ir.Jump:
		return outcome{kind: ctrlGoto, label: nT.Label.Name}, nil
	case *ir.JumpTarget:
		return outcome{}, nil
	}
	return outcome{}, errors.Errorf("exec: unsupported %s node", n.Kind())
}

func findTarget(stats []ir.Node, label string) int {
	for i, stat := range stats {
		if target, ok := stat.(*ir.JumpTarget); ok && target.Label.Name == label {
			return i
		}
	}
	return -1
}

func (m *machine) assign(n *ir.Assign) error {
	v, err := m.eval(n.RHS)
	if err != nil {
		return err
	}
	switch lhs := n.LHS.(type) {
	case *ir.Temp:
		m.vars[lhs.Name] = v
	case *ir.Variable:
		m.vars[lhs.Name] = v
	case *ir.Deref:
		addr, err := m.eval(lhs.X)
		if err != nil {
			return err
		}
		m.store(addr, v)
	case *ir.Index:
		addr, err := m.indexAddr(lhs)
		if err != nil {
			return err
		}
		m.store(addr, v)
	default:
		return errors.Errorf("assign: unsupported destination %s", ir.String(n.LHS))
	}
	return nil
}

func (m *machine) indexAddr(n *ir.Index) (int64, error) {
	base, err := m.eval(n.X)
	if err != nil {
		return 0, err
	}
	off, err := m.eval(n.Off)
	if err != nil {
		return 0, err
	}
	return base + off*int64(types.Sizeof(n.Typ)), nil
}

func (m *machine) eval(e ir.Expr) (int64, error) {
	switch eT := e.(type) {
	case *ir.Constant:
		switch v := eT.Value.(type) {
		case int64:
			return v, nil
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		}
		return 0, errors.Errorf("eval: unsupported constant %v", eT.Value)
	case *ir.Temp:
		return m.value(eT.Name)
	case *ir.Variable:
		return m.value(eT.Name)
	case *ir.DataPointer:
		return m.value(eT.Name())
	case *ir.StridePointer:
		return m.value(eT.Name())
	case *ir.ShapePointer:
		return m.value(eT.Name())
	case *ir.Cast:
		return m.eval(eT.X)
	case *ir.Deref:
		addr, err := m.eval(eT.X)
		if err != nil {
			return 0, err
		}
		return m.mem[addr], nil
	case *ir.Index:
		addr, err := m.indexAddr(eT)
		if err != nil {
			return 0, err
		}
		return m.mem[addr], nil
	case *ir.Unop:
		x, err := m.eval(eT.X)
		if err != nil {
			return 0, err
		}
		switch eT.Op {
		case ir.OpNeg:
			return -x, nil
		case ir.OpNot:
			if x == 0 {
				return 1, nil
			}
			return 0, nil
		}
		return 0, errors.Errorf("eval: unsupported unary %s", eT.Op)
	case *ir.Binop:
		return m.binop(eT)
	}
	return 0, errors.Errorf("eval: unsupported %s node", e.Kind())
}

func (m *machine) value(name string) (int64, error) {
	v, ok := m.vars[name]
	if !ok {
		return 0, errors.Errorf("eval: %s read before being set", name)
	}
	return v, nil
}

func (m *machine) binop(n *ir.Binop) (int64, error) {
	x, err := m.eval(n.X)
	if err != nil {
		return 0, err
	}
	y, err := m.eval(n.Y)
	if err != nil {
		return 0, err
	}
	b2i := func(b bool) int64 {
		if b {
			return 1
		}
		return 0
	}
	switch n.Op {
	case ir.OpAdd:
		return x + y, nil
	case ir.OpSub:
		return x - y, nil
	case ir.OpMul:
		return x * y, nil
	case ir.OpDiv:
		return x / y, nil
	case ir.OpMod:
		return x % y, nil
	case ir.OpMin:
		return min(x, y), nil
	case ir.OpLt:
		return b2i(x < y), nil
	case ir.OpLe:
		return b2i(x <= y), nil
	case ir.OpGt:
		return b2i(x > y), nil
	case ir.OpGe:
		return b2i(x >= y), nil
	case ir.OpEq:
		return b2i(x == y), nil
	case ir.OpNe:
		return b2i(x != y), nil
	}
	return 0, errors.Errorf("eval: unsupported binary %s", n.Op)
}

// forEachIndex calls f for every point of shape in row-major order, with its
// flat position.
func forEachIndex(shape []int64, f func(flat int64, idx []int64)) {
	idx := make([]int64, len(shape))
	var flat int64
	for {
		f(flat, idx)
		flat++
		d := len(shape) - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}

// rowMajorStrides returns the byte strides of a densely packed array.
func rowMajorStrides(shape []int64, elemSize int64) []int64 {
	strides := make([]int64, len(shape))
	size := elemSize
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = size
		size *= shape[d]
	}
	return strides
}

func addrOf(base int64, strides, idx []int64) int64 {
	addr := base
	for d, i := range idx {
		addr += i * strides[d]
	}
	return addr
}
