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

// Package uname provides unique names for variables and labels
// synthesized during one specialization run.
package uname

import "fmt"

// Unique generates unique names. The zero value is not usable: call New.
type Unique struct {
	names map[string]int
}

// New name generator.
func New() *Unique {
	return &Unique{names: make(map[string]int)}
}

// Register reserves a name, for example the name of a function argument,
// so that synthesized names never collide with it.
func (n *Unique) Register(name string) {
	if _, ok := n.names[name]; !ok {
		n.names[name] = 1
	}
}

// Name returns a unique name given a desired base name.
// If the base name is available, it is returned directly.
// Else, numeric suffixes are probed until a free name is found.
// The returned name is reserved: asking for it later suffixes again.
func (n *Unique) Name(root string) string {
	nextIndex, ok := n.names[root]
	if !ok {
		n.names[root] = 1
		return root
	}
	for {
		name := fmt.Sprintf("%s%d", root, nextIndex)
		nextIndex++
		n.names[root] = nextIndex
		if _, taken := n.names[name]; !taken {
			n.names[name] = 1
			return name
		}
	}
}
