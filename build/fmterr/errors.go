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

package fmterr

import (
	"fmt"

	"github.com/gx-org/minivect/build/ir"
	"github.com/gx-org/minivect/build/types"
)

// UnsupportedError reports an operator applied to a combination of operand
// types that the type promotion callback rejected. It is fatal to the
// specialization attempt in progress: the caller must discard the partially
// built tree for that attempt.
type UnsupportedError struct {
	SrcPos ir.Position
	Op     ir.Op
	Left   types.Type
	Right  types.Type
	Reason error
}

var _ ErrorWithPos = (*UnsupportedError)(nil)

// Error returns a string description of the error naming the operator and
// both operand types.
func (err *UnsupportedError) Error() string {
	msg := fmt.Sprintf("operator %s not supported for types (%s, %s)",
		err.Op, err.Left, err.Right)
	if err.Reason != nil {
		msg += ": " + err.Reason.Error()
	}
	if err.SrcPos.Filename == "" && err.SrcPos.Line == 0 {
		return msg
	}
	return err.SrcPos.String() + ": " + msg
}

// Pos returns the position of the node the operator was built for.
func (err *UnsupportedError) Pos() ir.Position { return err.SrcPos }

// Err returns the underlying promotion error.
func (err *UnsupportedError) Err() error { return err.Reason }

// Unwrap the error.
func (err *UnsupportedError) Unwrap() error { return err.Reason }

// InferError reports a literal constant whose type cannot be inferred.
// Fatal to the specialization attempt in progress.
type InferError struct {
	SrcPos ir.Position
	Value  any
}

var _ ErrorWithPos = (*InferError)(nil)

// Error returns a string description of the error.
func (err *InferError) Error() string {
	msg := fmt.Sprintf("cannot infer type of constant %v (%T)", err.Value, err.Value)
	if err.SrcPos.Filename == "" && err.SrcPos.Line == 0 {
		return msg
	}
	return err.SrcPos.String() + ": " + msg
}

// Pos returns the position of the node the constant was built for.
func (err *InferError) Pos() ir.Position { return err.SrcPos }

// Err returns the underlying error.
func (err *InferError) Err() error { return nil }
