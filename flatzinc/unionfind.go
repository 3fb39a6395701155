// Copyright 2010-2024 Google LLC
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

package flatzinc

// UnionFind is a disjoint-set structure over VarID with path compression and
// union-by-size, used by the presolver to record variable equivalence
// classes discovered by rules like IntEq (spec §4.2 "Equivalence classes").
type UnionFind struct {
	parent []VarID
	size   []int
}

// NewUnionFind creates a UnionFind over n singleton elements [0,n).
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{parent: make([]VarID, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = VarID(i)
		uf.size[i] = 1
	}
	return uf
}

// Find returns the representative of x's class, compressing the path
// traversed along the way.
func (uf *UnionFind) Find(x VarID) VarID {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// Union merges the classes of a and b, keeping the larger class's root as
// the representative (ties keep a's root). Returns the resulting
// representative.
func (uf *UnionFind) Union(a, b VarID) VarID {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return ra
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
	return ra
}

// Same reports whether a and b are currently in the same class.
func (uf *UnionFind) Same(a, b VarID) bool { return uf.Find(a) == uf.Find(b) }
