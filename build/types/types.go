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

// Package types defines the type model of the minivect middle-end:
// scalar element types, pointers, and multi-dimensional arrays.
//
// Type promotion is not defined here: the middle-end asks a front-end
// callback to combine operand types (see the builder package).
package types

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
)

// Kind of a type.
type Kind uint

// Kinds of data supported by the middle-end. Scalar kinds that an array can
// store are shared with the backend dtype package.
const (
	Invalid = Kind(dtype.Invalid)

	Bool     = Kind(dtype.Bool)
	Int32    = Kind(dtype.Int32)
	Int64    = Kind(dtype.Int64)
	Uint32   = Kind(dtype.Uint32)
	Uint64   = Kind(dtype.Uint64)
	Bfloat16 = Kind(dtype.Bfloat16)
	Float32  = Kind(dtype.Float32)
	Float64  = Kind(dtype.Float64)

	// Byte is the kind used for byte-granular address arithmetic.
	Byte = Kind(iota + dtype.MaxDataType)
	// Index is the kind of loop indices, strides and shape extents.
	Index
	// Void is the kind of expressions returning nothing.
	Void

	// Ptr is the kind of pointer types.
	Ptr
	// Array is the kind of array types.
	Array
)

// String returns a string representation of a kind.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Bfloat16:
		return "bfloat16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Byte:
		return "byte"
	case Index:
		return "index"
	case Void:
		return "void"
	case Ptr:
		return "pointer"
	case Array:
		return "array"
	}
	return "invalid"
}

// DType converts a kind into an array element data type.
func (k Kind) DType() dtype.DataType {
	if k >= Kind(dtype.MaxDataType) {
		return dtype.Invalid
	}
	return dtype.DataType(k)
}

// IsInteger returns true if the kind is an integer.
func IsInteger(k Kind) bool {
	switch k {
	case Int32, Int64, Uint32, Uint64, Index, Byte:
		return true
	}
	return false
}

// IsFloat returns true if the kind is a float.
func IsFloat(k Kind) bool {
	switch k {
	case Bfloat16, Float32, Float64:
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Types.
type (
	// Type of an expression or a storage location.
	Type interface {
		// Kind of the type.
		Kind() Kind

		// Equal returns true if other is the same type.
		Equal(Type) bool

		// String representation of the type.
		String() string
	}

	scalarType struct {
		knd Kind
	}

	// Pointer is the type of an address of elements of type Elem.
	Pointer struct {
		Elem Type
	}

	// ArrayType is the type of an array argument: an element type and a rank.
	ArrayType struct {
		DType Type
		NDim  int
	}
)

var _ Type = (*Pointer)(nil)
var _ Type = (*ArrayType)(nil)

// Scalar returns the scalar type of a kind.
func Scalar(k Kind) Type {
	return scalarType{knd: k}
}

// BoolType returns the type of booleans.
func BoolType() Type { return Scalar(Bool) }

// ByteType returns the type used for byte-granular address arithmetic.
func ByteType() Type { return Scalar(Byte) }

// IndexType returns the type of loop indices, strides and shape extents.
func IndexType() Type { return Scalar(Index) }

// VoidType returns the type of expressions returning nothing.
func VoidType() Type { return Scalar(Void) }

func (s scalarType) Kind() Kind { return s.knd }

func (s scalarType) Equal(other Type) bool {
	return other != nil && other.Kind() == s.knd
}

func (s scalarType) String() string { return s.knd.String() }

// PointerTo returns the type of a pointer to elements of type elem.
func PointerTo(elem Type) *Pointer {
	return &Pointer{Elem: elem}
}

// Kind of the type.
func (*Pointer) Kind() Kind { return Ptr }

// Equal returns true if other is a pointer to an equal element type.
func (p *Pointer) Equal(other Type) bool {
	o, ok := other.(*Pointer)
	return ok && p.Elem.Equal(o.Elem)
}

// String representation of the type.
func (p *Pointer) String() string {
	return "*" + p.Elem.String()
}

// ArrayOf returns the type of an array of rank ndim storing dt elements.
func ArrayOf(dt Type, ndim int) *ArrayType {
	return &ArrayType{DType: dt, NDim: ndim}
}

// Kind of the type.
func (*ArrayType) Kind() Kind { return Array }

// Equal returns true if other is an array of the same rank and element type.
func (a *ArrayType) Equal(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && a.NDim == o.NDim && a.DType.Equal(o.DType)
}

// String representation of the type.
func (a *ArrayType) String() string {
	return fmt.Sprintf("[%dd]%s", a.NDim, a.DType.String())
}

// IsArray returns true if the type is an array type.
func IsArray(t Type) bool {
	return t != nil && t.Kind() == Array
}

// Elem returns the element type of a pointer type.
func Elem(t Type) (Type, bool) {
	p, ok := t.(*Pointer)
	if !ok {
		return nil, false
	}
	return p.Elem, true
}

// Sizeof returns the size in bytes of one value of the type.
// Array types report the size of one element.
func Sizeof(t Type) int {
	switch tT := t.(type) {
	case *Pointer:
		return 8
	case *ArrayType:
		return Sizeof(tT.DType)
	}
	switch t.Kind() {
	case Byte:
		return 1
	case Index:
		return 8
	case Void, Invalid:
		return 0
	}
	return dtype.Sizeof(t.Kind().DType())
}
