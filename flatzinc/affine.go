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

// AffineMapping records that Var == Coeff*From + Offset, discovered by the
// StoreMapping rule from a constraint of the shape
// `int_lin_eq([1,-a], [y,x], b)` (spec §4.2). It keeps a back-pointer to the
// defining constraint, recovered from original_source/flatzinc2/presolve.h's
// AffineMapping struct. SimplifyElement does not retire that constraint; it
// stays live as the defining relation.
type AffineMapping struct {
	Var        VarID
	From       VarID
	Coeff      int64
	Offset     int64
	Constraint ConstraintID
}

// AffineMap is the presolver's y -> (a*x + b) table (spec §4.2 "Affine map").
type AffineMap struct {
	entries map[VarID]AffineMapping
}

// NewAffineMap creates an empty affine map.
func NewAffineMap() *AffineMap {
	return &AffineMap{entries: make(map[VarID]AffineMapping)}
}

// Store records that y == a*x + b, defined by constraint ct.
func (am *AffineMap) Store(y, x VarID, a, b int64, ct ConstraintID) {
	am.entries[y] = AffineMapping{Var: y, From: x, Coeff: a, Offset: b, Constraint: ct}
}

// Lookup returns y's affine mapping, if any.
func (am *AffineMap) Lookup(y VarID) (AffineMapping, bool) {
	m, ok := am.entries[y]
	return m, ok
}

// Resolve follows y's mapping (if present) all the way to a variable with no
// mapping of its own, composing coefficients/offsets along the way. Used by
// SimplifyElement to rewrite an element index through a chain of affine
// substitutions (spec §4.2 rule table, `SimplifyElement`).
func (am *AffineMap) Resolve(y VarID) (base VarID, coeff, offset int64) {
	coeff, offset = 1, 0
	cur := y
	seen := map[VarID]bool{}
	for {
		m, ok := am.entries[cur]
		if !ok || seen[cur] {
			return cur, coeff, offset
		}
		seen[cur] = true
		// cur == m.Coeff*m.From + m.Offset, so
		// base*coeff + offset == (m.Coeff*m.From+m.Offset)*coeff + offset.
		offset += coeff * m.Offset
		coeff *= m.Coeff
		cur = m.From
	}
}
