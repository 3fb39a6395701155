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

// Package satsym implements C7: building a labelled graph from a
// canonicalised pseudo-Boolean problem, whose automorphism group encodes
// the problem's variable symmetries. Grounded on
// original_source/src/sat/boolean_problem.cc's symmetry-finder driver.
package satsym

import (
	"sort"

	"github.com/crillab/gophersat/solver"
)

// Term is one literal/coefficient pair before canonicalisation. A positive
// Lit means the variable itself; a negative Lit means its negation, using
// gophersat's int-literal convention (spec §4.7 step 1).
type Term struct {
	Lit    int
	Weight int
}

// Problem is a linear pseudo-Boolean problem: a set of constraints, each a
// weighted sum of literals compared against a right-hand side, plus an
// optional objective (also a weighted literal sum) used only to class the
// literal nodes.
type Problem struct {
	Constraints []RawConstraint
	Objective   []Term
}

// RawConstraint is one constraint before canonicalisation: sum(Terms) >= RHS.
type RawConstraint struct {
	Terms []Term
	RHS   int
}

// CanonicalConstraint is a constraint after sign normalisation: every
// coefficient positive, terms sorted by coefficient, with the derived
// shift and max_value spec §4.7 step 1 names explicitly.
type CanonicalConstraint struct {
	Lits     []int // normalised literals, one per surviving term
	Weights  []int // positive coefficients, same order as Lits
	RHS      int
	Shift    int // total weight moved from negated literals into RHS
	MaxValue int // sum of all weights, the constraint's maximum achievable value
}

// Canonicalize normalises c's literal signs so every coefficient is
// positive (flipping negative-weight literals and adjusting the
// right-hand side, exactly as gophersat's solver.GtEq already does for
// its own internal representation), then sorts by coefficient ascending
// and computes shift/max_value (spec §4.7 step 1).
func Canonicalize(c RawConstraint) CanonicalConstraint {
	lits := make([]int, len(c.Terms))
	weights := make([]int, len(c.Terms))
	for i, t := range c.Terms {
		lits[i] = t.Lit
		weights[i] = t.Weight
	}
	pb := solver.GtEq(lits, weights, c.RHS)

	shift := pb.AtLeast - c.RHS
	order := make([]int, len(pb.Lits))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		wi, wj := weightAt(pb, order[i]), weightAt(pb, order[j])
		return wi < wj
	})
	outLits := make([]int, len(order))
	outWeights := make([]int, len(order))
	maxValue := 0
	for i, idx := range order {
		outLits[i] = pb.Lits[idx]
		outWeights[i] = weightAt(pb, idx)
		maxValue += outWeights[i]
	}
	return CanonicalConstraint{
		Lits:     outLits,
		Weights:  outWeights,
		RHS:      pb.AtLeast,
		Shift:    shift,
		MaxValue: maxValue,
	}
}

func weightAt(pb solver.PBConstr, i int) int {
	if pb.Weights == nil {
		return 1
	}
	return pb.Weights[i]
}

// CanonicalizeAll canonicalises every constraint in p, in order.
func CanonicalizeAll(p Problem) []CanonicalConstraint {
	out := make([]CanonicalConstraint, len(p.Constraints))
	for i, c := range p.Constraints {
		out[i] = Canonicalize(c)
	}
	return out
}
