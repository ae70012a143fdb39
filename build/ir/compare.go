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

package ir

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
)

// Equal reports structural equality of two trees: same kind, same type for
// typed nodes, same discriminator fields (operator, constant value, names),
// and pairwise equal children. Positions are not compared.
func Equal(x, y Node) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if x.Kind() != y.Kind() {
		return false
	}
	xE, xIsExpr := x.(Expr)
	yE, yIsExpr := y.(Expr)
	if xIsExpr != yIsExpr {
		return false
	}
	if xIsExpr {
		xT, yT := xE.Type(), yE.Type()
		if (xT == nil) != (yT == nil) {
			return false
		}
		if xT != nil && !xT.Equal(yT) {
			return false
		}
	}
	if !discriminatorsEqual(x, y) {
		return false
	}
	xc, yc := x.Children(), y.Children()
	if len(xc) != len(yc) {
		return false
	}
	for i := range xc {
		if !Equal(xc[i], yc[i]) {
			return false
		}
	}
	return true
}

// discriminatorsEqual compares the fields of a node that are not children
// and not the type. x and y have the same kind.
func discriminatorsEqual(x, y Node) bool {
	switch xT := x.(type) {
	case *Binop:
		return xT.Op == y.(*Binop).Op
	case *Unop:
		return xT.Op == y.(*Unop).Op
	case *Constant:
		return xT.Value == y.(*Constant).Value
	case *Variable:
		return xT.Name == y.(*Variable).Name
	case *Temp:
		return xT.Name == y.(*Temp).Name
	case *FuncName:
		return xT.Name == y.(*FuncName).Name
	case *Label:
		return xT.Name == y.(*Label).Name
	case *DataPointer:
		return xT.Of.Name == y.(*DataPointer).Of.Name
	case *StridePointer:
		return xT.Of.Name == y.(*StridePointer).Of.Name
	case *ShapePointer:
		return xT.Of.Name == y.(*ShapePointer).Of.Name
	case *Function:
		yT := y.(*Function)
		return xT.Name == yT.Name && xT.NDim == yT.NDim
	case *Wrapper:
		return xT.Opaque == y.(*Wrapper).Opaque
	}
	return true
}

// Hash returns a hash of a tree consistent with Equal: equal trees hash to
// the same value.
func Hash(n Node) uint64 {
	h := fnv.New64a()
	hashNode(h, n)
	return h.Sum64()
}

func hashNode(w io.Writer, n Node) {
	if n == nil {
		w.Write([]byte{0})
		return
	}
	binary.Write(w, binary.LittleEndian, uint32(n.Kind()))
	if e, ok := n.(Expr); ok && e.Type() != nil {
		io.WriteString(w, e.Type().String())
	}
	io.WriteString(w, discriminatorString(n))
	for _, c := range n.Children() {
		hashNode(w, c)
	}
}

func discriminatorString(n Node) string {
	switch nT := n.(type) {
	case *Binop:
		return string(nT.Op)
	case *Unop:
		return string(nT.Op)
	case *Constant:
		return fmt.Sprint(nT.Value)
	case *Variable:
		return nT.Name
	case *Temp:
		return nT.Name
	case *FuncName:
		return nT.Name
	case *Label:
		return nT.Name
	case *DataPointer:
		return nT.Of.Name
	case *StridePointer:
		return nT.Of.Name
	case *ShapePointer:
		return nT.Of.Name
	case *Function:
		return fmt.Sprintf("%s/%d", nT.Name, nT.NDim)
	case *Wrapper:
		return fmt.Sprintf("%v", nT.Opaque)
	}
	return ""
}
