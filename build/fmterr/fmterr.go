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

// Package fmterr formats errors raised while specializing a function,
// attaching the source position of the node that caused them.
package fmterr

import (
	"fmt"

	"github.com/gx-org/minivect/build/ir"
	"github.com/pkg/errors"
)

// ErrorWithPos is an error attached to a position in front-end source code.
type ErrorWithPos interface {
	error
	Pos() ir.Position
	Err() error
}

type errorWithPos struct {
	pos ir.Position
	err error
}

// Position attaches source position information to an error.
func Position(pos ir.Position, err error) ErrorWithPos {
	return errorWithPos{pos: pos, err: err}
}

// Errorf returns a formatted, positioned specialization error.
func Errorf(pos ir.Position, format string, a ...any) error {
	return Position(pos, errors.Errorf(format, a...))
}

// Error returns a string description of the error.
func (err errorWithPos) Error() string {
	if err.pos.Filename == "" && err.pos.Line == 0 {
		return err.err.Error()
	}
	return err.pos.String() + ": " + err.err.Error()
}

// Unwrap the error.
func (err errorWithPos) Unwrap() error {
	return err.err
}

// Pos returns the position the error is attached to.
func (err errorWithPos) Pos() ir.Position {
	return err.pos
}

// Err returns the underlying error.
func (err errorWithPos) Err() error {
	return err.err
}

// Internal marks an error as internal, adding a report request.
func Internal(err error) error {
	return fmt.Errorf("minivect internal error. This is a bug. Please report it. Error:\n%+v", err)
}
