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

// Package presolve implements C2: the fix-point rewriter over a flatzinc
// Model. It mirrors the rule table of spec.md §4.2, grounded on
// original_source/src/flatzinc2/presolve.h's FzPresolver.
package presolve

import (
	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/flatzinc"
)

// Presolver applies the rule table to a flatzinc.Model until no rule fires.
type Presolver struct {
	model  *flatzinc.Model
	uf     *flatzinc.UnionFind
	affine *flatzinc.AffineMap
}

// New creates a Presolver bound to m.
func New(m *flatzinc.Model) *Presolver {
	return &Presolver{
		model:  m,
		uf:     flatzinc.NewUnionFind(len(m.Vars)),
		affine: flatzinc.NewAffineMap(),
	}
}

// representative returns the union-find representative of id; markEquivalent
// keeps the model's alias chains in step with the union-find. Resolution is
// idempotent: calling it twice in a row returns the same id (spec §8
// invariant).
func (p *Presolver) representative(id flatzinc.VarID) flatzinc.VarID {
	return p.uf.Find(id)
}

// markEquivalent merges a and b's classes and records the loser as an alias
// of the winner in the model, so Model.Resolve and the union-find agree.
func (p *Presolver) markEquivalent(a, b flatzinc.VarID) {
	ra, rb := p.representative(a), p.representative(b)
	if ra == rb {
		return
	}
	winner := p.uf.Union(ra, rb)
	loser := ra
	if winner == ra {
		loser = rb
	}
	p.model.SetAlias(loser, winner)
}

// resolveArg rewrites a variable-carrying argument through the current
// union-find representative. Non-variable arguments pass through unchanged.
func (p *Presolver) resolveArg(a flatzinc.Argument) flatzinc.Argument {
	switch a.Kind {
	case flatzinc.ArgVar:
		return flatzinc.VarArg(p.representative(a.VarVal))
	case flatzinc.ArgVarArray:
		out := make([]flatzinc.VarID, len(a.VarArray))
		for i, v := range a.VarArray {
			out[i] = p.representative(v)
		}
		return flatzinc.VarArrayArg(out)
	default:
		return a
	}
}

// SubstituteEverywhere walks the whole model, replacing every variable
// reference with its current union-find representative (spec §4.2).
func (p *Presolver) SubstituteEverywhere() {
	for _, c := range p.model.Constraints {
		for i, a := range c.Args {
			c.Args[i] = p.resolveArg(a)
		}
		if c.HasTarget {
			c.Target = p.representative(c.Target)
		}
		for ai, ann := range c.Annotations {
			for j, a := range ann.Args {
				c.Annotations[ai].Args[j] = p.resolveArg(a)
			}
		}
	}
}

// Run iterates the rule table to a fix-point: one pass returns a "changed"
// flag, and the loop terminates when a full pass fires no rule (spec §4.2).
// It returns whether any rule fired across the whole run.
func (p *Presolver) Run() bool {
	anyChange := false
	for {
		changedThisPass := false
		for _, c := range p.model.LiveConstraints() {
			if p.presolveOneConstraint(c) {
				changedThisPass = true
			}
		}
		if changedThisPass {
			p.SubstituteEverywhere()
			anyChange = true
		} else {
			break
		}
	}
	return anyChange
}

// presolveOneConstraint tries every rule against c in turn, stopping at the
// first one that fires — mirroring FzPresolver::PresolveOneConstraint.
func (p *Presolver) presolveOneConstraint(c *flatzinc.Constraint) bool {
	if c.TriviallyTrue {
		return false
	}
	rules := []func(*flatzinc.Constraint) bool{
		p.presolveBool2Int,
		p.presolveIntEq,
		p.presolveIntNe,
		p.presolveInequality,
		p.presolveSetIn,
		p.presolveArrayBoolAndOr,
		p.presolveBoolEqNeReif,
		p.presolveArrayIntElement,
		p.presolveIntDivTimes,
		p.presolveIntLinStrict,
		p.presolveLinear,
		p.presolvePropagatePositiveLinear,
		p.presolveStoreMapping,
		p.presolveSimplifyElement,
		p.presolveUnreify,
	}
	for _, rule := range rules {
		if rule(c) {
			return true
		}
	}
	return false
}

func (p *Presolver) resolveVar(id flatzinc.VarID) *flatzinc.Variable {
	return p.model.Vars[p.representative(id)]
}

func (p *Presolver) markTrivial(c *flatzinc.Constraint) {
	c.TriviallyTrue = true
}

func (p *Presolver) fixDomain(v flatzinc.VarID, d cpsolver.Domain) {
	variable := p.model.Vars[p.representative(v)]
	variable.Domain = variable.Domain.IntersectWith(d)
}

// CleanUpModelForTheCpSolver is the final post-pass (spec §4.2): it strips
// target-variable status from reified comparison constraints whose target is
// a bool variable (other uses of that variable are not examined), per the
// recovered comment in
// original_source/flatzinc2/presolve.h ("it knows about the sat connection
// and will remove the link ... for boolean constraints").
func (p *Presolver) CleanUpModelForTheCpSolver() {
	for _, c := range p.model.LiveConstraints() {
		if !c.HasTarget {
			continue
		}
		target := p.model.Vars[c.Target]
		if target.Kind == flatzinc.BoolKind && isReifiedTag(c.Tag) {
			c.HasTarget = false
			log.V(1).Infof("flatzinc: stripped target annotation from reified constraint %d (%s)", c.ID, c.Tag)
		}
	}
}

func isReifiedTag(tag string) bool {
	switch tag {
	case "int_eq_reif", "int_ne_reif", "int_lt_reif", "int_le_reif",
		"int_gt_reif", "int_ge_reif", "bool_eq_reif", "bool_ne_reif":
		return true
	}
	return false
}
