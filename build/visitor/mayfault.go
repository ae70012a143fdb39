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

package visitor

import (
	"github.com/gx-org/minivect/build/ir"
)

// MayFault reports whether executing a subtree may raise a run-time fault.
//
// The analysis is conservative and over-approximating: a true result only
// means a fault cannot be ruled out. False negatives are never returned: any
// explicit fault site (Raise), any call, and any opaque node the front end
// judges faultable makes the whole subtree faultable. judge may be nil, in
// which case every opaque node is assumed to fault.
func MayFault(n ir.Node, judge func(*ir.Wrapper) bool) bool {
	fault := false
	Visit(n, func(m ir.Node) bool {
		switch mT := m.(type) {
		case *ir.Raise:
			fault = true
		case *ir.Call:
			fault = true
		case *ir.Wrapper:
			if judge == nil || judge(mT) {
				fault = true
			}
		}
		return !fault
	})
	return fault
}
