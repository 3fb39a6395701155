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

// Package localsearch implements C5: the pair-aware neighborhood operators
// and the filter pipeline that accelerates move acceptance. Grounded on
// original_source/src/constraint_solver/routing.cc's operator/filter
// classes, restructured per spec.md §9's "filter composition as a
// pipeline, not inheritance" design note: a common Accept driver plus a
// per-filter AcceptPath hook, instead of the source's virtual-method class
// hierarchy (BasePathFilter -> PathCumulFilter / NodePrecedenceFilter).
package localsearch

import "github.com/vrpcore/vrpcore/routing"

// Delta is the incremental change proposed by a local-search move: the set
// of next-variable assignments it would install if accepted (spec
// GLOSSARY "Delta / deltadelta").
type Delta struct {
	// NextAssignment maps an index whose next-variable would change to its
	// candidate DeltaElement.
	NextAssignment map[routing.Index]DeltaElement
	// NewObjective is the move's implied objective value, used by the
	// node-disjunction filter's bound check.
	NewObjective int64
}

// DeltaElement mirrors cpsolver.DeltaElement's explicit Fixed/Range
// signalling (spec §9 "LNS detection"), duplicated in this package so
// localsearch does not need to depend on cpsolver's variable machinery to
// describe a candidate move.
type DeltaElement struct {
	fixed bool
	value routing.Index
	lo    routing.Index
	hi    routing.Index
}

// FixedNext returns a DeltaElement pinned to a single next-index value.
func FixedNext(v routing.Index) DeltaElement { return DeltaElement{fixed: true, value: v} }

// RangeNext returns a DeltaElement spanning an inclusive index range; a
// non-singleton range signals an LNS move.
func RangeNext(lo, hi routing.Index) DeltaElement {
	if lo == hi {
		return FixedNext(lo)
	}
	return DeltaElement{fixed: false, lo: lo, hi: hi}
}

// IsLNS reports whether this element signals a large-neighborhood-search
// move (spec §4.5, §9).
func (d DeltaElement) IsLNS() bool { return !d.fixed }

// Fixed returns the element's single value, if any.
func (d DeltaElement) Fixed() (routing.Index, bool) {
	if d.fixed {
		return d.value, true
	}
	return 0, false
}

// Filter is the conjunctive acceptance predicate every enabled filter
// implements; a move is accepted only if every filter accepts it (spec §8
// "filters are conjunctive").
type Filter interface {
	Accept(delta Delta) bool
	OnSynchronize()
}

// Chain runs every filter in order, short-circuiting on the first
// rejection.
type Chain struct {
	filters []Filter
}

// NewChain builds a Chain from the given filters, in evaluation order.
func NewChain(filters ...Filter) *Chain { return &Chain{filters: filters} }

// Accept reports whether every filter in the chain accepts delta.
func (c *Chain) Accept(delta Delta) bool {
	for _, f := range c.filters {
		if !f.Accept(delta) {
			return false
		}
	}
	return true
}

// OnSynchronize notifies every filter that the base solution changed.
func (c *Chain) OnSynchronize() {
	for _, f := range c.filters {
		f.OnSynchronize()
	}
}
