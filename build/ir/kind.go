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

// Kind of a node. The set of kinds is closed: visitors dispatch on kinds
// and fall back to a generic structural traversal for kinds they do not
// handle specially.
type Kind uint

// Kinds of node in the tree.
const (
	KindInvalid Kind = iota

	KindStatList
	KindAssign
	KindIf
	KindFor
	KindParallel
	KindFunction
	KindArg
	KindNDIterate
	KindReturn
	KindRaise
	KindErrorHandler
	KindJump
	KindJumpTarget
	KindLabel

	KindBinop
	KindUnop
	KindCast
	KindDeref
	KindIndex
	KindCall
	KindFuncName
	KindConstant
	KindVariable
	KindTemp
	KindDataPointer
	KindStridePointer
	KindShapePointer
	KindWrapper
)

var kindNames = map[Kind]string{
	KindStatList:      "statlist",
	KindAssign:        "assign",
	KindIf:            "if",
	KindFor:           "for",
	KindParallel:      "parallel",
	KindFunction:      "function",
	KindArg:           "arg",
	KindNDIterate:     "nditerate",
	KindReturn:        "return",
	KindRaise:         "raise",
	KindErrorHandler:  "errorhandler",
	KindJump:          "jump",
	KindJumpTarget:    "jumptarget",
	KindLabel:         "label",
	KindBinop:         "binop",
	KindUnop:          "unop",
	KindCast:          "cast",
	KindDeref:         "deref",
	KindIndex:         "index",
	KindCall:          "call",
	KindFuncName:      "funcname",
	KindConstant:      "constant",
	KindVariable:      "variable",
	KindTemp:          "temp",
	KindDataPointer:   "datapointer",
	KindStridePointer: "stridepointer",
	KindShapePointer:  "shapepointer",
	KindWrapper:       "wrapper",
}

// String returns a string representation of a kind.
func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "invalid"
	}
	return name
}

// slotNames lists, for each kind, the names of its declared child slots in
// declared order. Slice-valued slots are marked with a trailing "...".
// The declarations are exhaustive: a generic visitor walking only declared
// slots visits every actual child.
var slotNames = map[Kind][]string{
	KindStatList:      {"stats..."},
	KindAssign:        {"lhs", "rhs"},
	KindIf:            {"cond", "then", "else"},
	KindFor:           {"init", "cond", "step", "body"},
	KindParallel:      {"body"},
	KindFunction:      {"body", "args..."},
	KindArg:           {"unpacked..."},
	KindNDIterate:     {"body"},
	KindReturn:        {"value"},
	KindRaise:         {},
	KindErrorHandler:  {"flaginit", "body", "cleanupjump", "errortarget", "flagset", "cleanuptarget", "cascade"},
	KindJump:          {"label"},
	KindJumpTarget:    {"label"},
	KindLabel:         {},
	KindBinop:         {"x", "y"},
	KindUnop:          {"x"},
	KindCast:          {"x"},
	KindDeref:         {"x"},
	KindIndex:         {"x", "off"},
	KindCall:          {"func", "args..."},
	KindFuncName:      {},
	KindConstant:      {},
	KindVariable:      {},
	KindTemp:          {},
	KindDataPointer:   {},
	KindStridePointer: {},
	KindShapePointer:  {},
	KindWrapper:       {},
}

// SlotNames returns the names of the declared child slots of a kind,
// in the order Children returns them.
func SlotNames(k Kind) []string {
	return slotNames[k]
}
