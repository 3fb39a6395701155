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

package satsym

// Finder is the external symmetry-finder collaborator (e.g. saucy, bliss,
// nauty): given a graph's vertex set, its edges, and the class each vertex
// belongs to, it returns a generating set of automorphisms as vertex-id
// permutations (spec §4.7 step 3). No such solver ships in the retrieved
// pack, so this port keeps the boundary as an interface — exactly how
// spec.md's data model treats it ("run an external symmetry finder"),
// mirroring how routing.CostEvaluator and routing.TransitEvaluator keep
// caller-supplied computation behind a function-shaped seam rather than
// bundling an implementation.
type Finder interface {
	FindAutomorphisms(g *LabelledGraph) ([]Permutation, error)
}

// Permutation maps a vertex id to the vertex id it is sent to by one
// automorphism.
type Permutation map[string]string

// Generator is one emitted symmetry generator, restricted to its
// literal-node support (spec §4.7 step 3 "restrict returned permutations
// to their literal-node support").
type Generator struct {
	// LitPermutation maps a literal (gophersat int-lit convention) to the
	// literal it is sent to.
	LitPermutation map[int]int
}

// IsIdentity reports whether g fixes every literal, in which case it
// carries no information and should be dropped (spec §4.7 step 3 "drop
// empty permutations").
func (gen Generator) IsIdentity() bool {
	for from, to := range gen.LitPermutation {
		if from != to {
			return false
		}
	}
	return true
}

// ExtractGenerators restricts each automorphism in perms to its
// literal-node support and drops the resulting identity permutations,
// producing the final generator set (spec §4.7 step 3).
func ExtractGenerators(g *LabelledGraph, perms []Permutation) []Generator {
	idOfVertex := make(map[string]int, len(g.LiteralIDs))
	for lit, id := range g.LiteralIDs {
		idOfVertex[id] = lit
	}

	var generators []Generator
	for _, perm := range perms {
		litPerm := make(map[int]int)
		for fromID, toID := range perm {
			fromLit, isLitFrom := idOfVertex[fromID]
			toLit, isLitTo := idOfVertex[toID]
			if !isLitFrom || !isLitTo {
				continue // not a literal node: drop, per the support restriction
			}
			litPerm[fromLit] = toLit
		}
		gen := Generator{LitPermutation: litPerm}
		if len(gen.LitPermutation) == 0 || gen.IsIdentity() {
			continue
		}
		generators = append(generators, gen)
	}
	return generators
}

// Run drives the full C7 pipeline: canonicalise, build the labelled
// graph, invoke finder, and emit the generator set (spec §4.7's three
// numbered steps as a single entry point).
func Run(p Problem, numVars int, finder Finder) ([]Generator, error) {
	g := BuildGraph(p, numVars)
	perms, err := finder.FindAutomorphisms(g)
	if err != nil {
		return nil, err
	}
	return ExtractGenerators(g, perms), nil
}
