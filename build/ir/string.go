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
	"fmt"
	"strings"
)

// String returns a compact, single-line form of a tree for error messages
// and debugging. It is not a code formatter.
func String(n Node) string {
	if n == nil {
		return "_"
	}
	switch nT := n.(type) {
	case *Constant:
		return fmt.Sprint(nT.Value)
	case *Variable:
		return nT.Name
	case *Temp:
		return nT.Name
	case *FuncName:
		return nT.Name
	case *Label:
		return nT.Name + ":"
	case *DataPointer:
		return nT.Name()
	case *StridePointer:
		return nT.Name()
	case *ShapePointer:
		return nT.Name()
	case *Wrapper:
		return fmt.Sprintf("opaque(%v)", nT.Opaque)
	case *Binop:
		return fmt.Sprintf("(%s %s %s)", String(nT.X), nT.Op, String(nT.Y))
	case *Unop:
		return fmt.Sprintf("(%s %s)", nT.Op, String(nT.X))
	case *Assign:
		return fmt.Sprintf("%s = %s", String(nT.LHS), String(nT.RHS))
	case *Cast:
		return fmt.Sprintf("(%s)(%s)", nT.Typ, String(nT.X))
	case *Deref:
		return fmt.Sprintf("*(%s)", String(nT.X))
	case *Index:
		return fmt.Sprintf("%s[%s]", String(nT.X), String(nT.Off))
	case *Function:
		return fmt.Sprintf("func %s(...) %s", nT.Name, String(nT.Body))
	}
	children := []string{}
	for _, c := range n.Children() {
		if c == nil {
			continue
		}
		children = append(children, String(c))
	}
	return fmt.Sprintf("%s(%s)", n.Kind(), strings.Join(children, "; "))
}
