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

package specialize

// Order is the memory order a specializer iterates in.
type Order int

const (
	// RowMajor iterates with the last dimension varying fastest (C order).
	RowMajor Order = iota

	// ColMajor iterates with the first dimension varying fastest
	// (Fortran order).
	ColMajor
)

// String representation of the order.
func (o Order) String() string {
	if o == ColMajor {
		return "f"
	}
	return "c"
}

// dims returns the dimension numbers in loop generation order: the first
// entry becomes the innermost loop.
func (o Order) dims(ndim int) []int {
	out := make([]int, ndim)
	for i := range out {
		if o == RowMajor {
			out[i] = ndim - 1 - i
		} else {
			out[i] = i
		}
	}
	return out
}
