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

import (
	"fmt"

	"github.com/katalvlaran/lvlath/graph"
)

// classKey identifies a node's equivalence class: nodes may only be
// permuted into other nodes of the same class (spec §4.7 step 2).
type classKey string

// LabelledGraph pairs an undirected lvlath graph with the class each
// vertex belongs to, so a symmetry finder can be restricted to
// class-preserving automorphisms.
type LabelledGraph struct {
	G          *graph.Graph
	ClassOf    map[string]classKey
	LiteralIDs map[int]string // literal value (gophersat int-lit convention) -> vertex id
}

func literalVertexID(lit int) string {
	if lit >= 0 {
		return fmt.Sprintf("lit+%d", lit)
	}
	return fmt.Sprintf("lit-%d", -lit)
}

func constraintVertexID(i int) string {
	return fmt.Sprintf("c%d", i)
}

func coeffGroupVertexID(constraintIdx, weight int) string {
	return fmt.Sprintf("c%d_w%d", constraintIdx, weight)
}

// BuildGraph builds the labelled multi-class graph for p (spec §4.7 step
// 2):
//   - two nodes per variable (positive and negative literal), joined by an
//     edge; both classed by the weight of the objective term naming that
//     variable, as given: the sign of the term's literal is not
//     normalised, and a later term for the same variable replaces an
//     earlier one;
//   - one node per constraint, classed by its right-hand side;
//   - one node per distinct coefficient value within a constraint, wired
//     to the constraint node and to every literal it groups.
func BuildGraph(p Problem, numVars int) *LabelledGraph {
	g := graph.NewGraph(false, false)
	classOf := make(map[string]classKey)
	litIDs := make(map[int]string)

	objCoeff := make(map[int]int)
	for _, t := range p.Objective {
		objCoeff[varOf(t.Lit)] = t.Weight
	}

	for v := 1; v <= numVars; v++ {
		posID, negID := literalVertexID(v), literalVertexID(-v)
		g.AddVertex(&graph.Vertex{ID: posID, Metadata: map[string]interface{}{"lit": v}})
		g.AddVertex(&graph.Vertex{ID: negID, Metadata: map[string]interface{}{"lit": -v}})
		g.AddEdge(posID, negID, 0)
		cls := classKey(fmt.Sprintf("var-obj-%d", objCoeff[v]))
		classOf[posID] = cls
		classOf[negID] = cls
		litIDs[v] = posID
		litIDs[-v] = negID
	}

	canon := CanonicalizeAll(p)
	for i, c := range canon {
		cID := constraintVertexID(i)
		g.AddVertex(&graph.Vertex{ID: cID, Metadata: map[string]interface{}{"rhs": c.RHS}})
		classOf[cID] = classKey(fmt.Sprintf("cons-rhs-%d", c.RHS))

		groups := map[int][]int{} // weight -> literals
		for j, lit := range c.Lits {
			groups[c.Weights[j]] = append(groups[c.Weights[j]], lit)
		}
		for weight, lits := range groups {
			gID := coeffGroupVertexID(i, weight)
			g.AddVertex(&graph.Vertex{ID: gID, Metadata: map[string]interface{}{"weight": weight}})
			classOf[gID] = classKey(fmt.Sprintf("coeff-%d", weight))
			g.AddEdge(cID, gID, 0)
			for _, lit := range lits {
				if id, ok := litIDs[lit]; ok {
					g.AddEdge(gID, id, 0)
				}
			}
		}
	}

	return &LabelledGraph{G: g, ClassOf: classOf, LiteralIDs: litIDs}
}

func varOf(lit int) int {
	if lit < 0 {
		return -lit
	}
	return lit
}
