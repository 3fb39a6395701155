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

package presolve

import (
	"math"

	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/flatzinc"
)

// presolveBool2Int implements the Bool2Int rule: bool2int(b, x) marks x and
// b equivalent, then deletes the constraint.
func (p *Presolver) presolveBool2Int(c *flatzinc.Constraint) bool {
	if c.Tag != "bool2int" || len(c.Args) != 2 {
		return false
	}
	b, err1 := c.Args[0].AsVar()
	x, err2 := c.Args[1].AsVar()
	if err1 != nil || err2 != nil {
		return false
	}
	p.markEquivalent(b, x)
	p.markTrivial(c)
	return true
}

// presolveIntEq implements the IntEq rule: int_eq(x,y) with both variables
// marks x≡y; int_eq(x,k) with k constant assigns x's domain to {k}.
func (p *Presolver) presolveIntEq(c *flatzinc.Constraint) bool {
	if c.Tag != "int_eq" || len(c.Args) != 2 {
		return false
	}
	a, b := c.Args[0], c.Args[1]
	switch {
	case a.Kind == flatzinc.ArgVar && b.Kind == flatzinc.ArgVar:
		x, _ := a.AsVar()
		y, _ := b.AsVar()
		p.markEquivalent(x, y)
		p.markTrivial(c)
		return true
	case a.Kind == flatzinc.ArgVar && b.Kind == flatzinc.ArgInt:
		x, _ := a.AsVar()
		k, _ := b.AsInt()
		p.fixDomain(x, cpsolver.NewSingleDomain(k))
		p.markTrivial(c)
		return true
	case a.Kind == flatzinc.ArgInt && b.Kind == flatzinc.ArgVar:
		y, _ := b.AsVar()
		k, _ := a.AsInt()
		p.fixDomain(y, cpsolver.NewSingleDomain(k))
		p.markTrivial(c)
		return true
	}
	return false
}

// presolveIntNe implements the IntNe rule: with one side constant, removes
// that value from the other side's domain.
func (p *Presolver) presolveIntNe(c *flatzinc.Constraint) bool {
	if c.Tag != "int_ne" || len(c.Args) != 2 {
		return false
	}
	a, b := c.Args[0], c.Args[1]
	if a.Kind == flatzinc.ArgVar && b.Kind == flatzinc.ArgInt {
		x, _ := a.AsVar()
		k, _ := b.AsInt()
		variable := p.resolveVar(x)
		variable.Domain = variable.Domain.RemoveValue(k)
		p.markTrivial(c)
		return true
	}
	if a.Kind == flatzinc.ArgInt && b.Kind == flatzinc.ArgVar {
		y, _ := b.AsVar()
		k, _ := a.AsInt()
		variable := p.resolveVar(y)
		variable.Domain = variable.Domain.RemoveValue(k)
		p.markTrivial(c)
		return true
	}
	return false
}

// presolveInequality implements the Inequality rule: int_lt/le/gt/ge with
// one side constant tightens the other side's bound.
func (p *Presolver) presolveInequality(c *flatzinc.Constraint) bool {
	tightenLE := func(v flatzinc.VarID, k int64) {
		variable := p.resolveVar(v)
		variable.Domain = variable.Domain.IntersectWith(cpsolver.NewDomain(minInt64(), k))
	}
	tightenGE := func(v flatzinc.VarID, k int64) {
		variable := p.resolveVar(v)
		variable.Domain = variable.Domain.IntersectWith(cpsolver.NewDomain(k, maxInt64()))
	}
	if len(c.Args) != 2 {
		return false
	}
	a, b := c.Args[0], c.Args[1]
	switch c.Tag {
	case "int_le":
		if a.Kind == flatzinc.ArgVar && b.Kind == flatzinc.ArgInt {
			x, _ := a.AsVar()
			k, _ := b.AsInt()
			tightenLE(x, k)
			p.markTrivial(c)
			return true
		}
		if a.Kind == flatzinc.ArgInt && b.Kind == flatzinc.ArgVar {
			y, _ := b.AsVar()
			k, _ := a.AsInt()
			tightenGE(y, k)
			p.markTrivial(c)
			return true
		}
	case "int_lt":
		if a.Kind == flatzinc.ArgVar && b.Kind == flatzinc.ArgInt {
			x, _ := a.AsVar()
			k, _ := b.AsInt()
			tightenLE(x, k-1)
			p.markTrivial(c)
			return true
		}
		if a.Kind == flatzinc.ArgInt && b.Kind == flatzinc.ArgVar {
			y, _ := b.AsVar()
			k, _ := a.AsInt()
			tightenGE(y, k+1)
			p.markTrivial(c)
			return true
		}
	case "int_ge":
		if a.Kind == flatzinc.ArgVar && b.Kind == flatzinc.ArgInt {
			x, _ := a.AsVar()
			k, _ := b.AsInt()
			tightenGE(x, k)
			p.markTrivial(c)
			return true
		}
		if a.Kind == flatzinc.ArgInt && b.Kind == flatzinc.ArgVar {
			y, _ := b.AsVar()
			k, _ := a.AsInt()
			tightenLE(y, k)
			p.markTrivial(c)
			return true
		}
	case "int_gt":
		if a.Kind == flatzinc.ArgVar && b.Kind == flatzinc.ArgInt {
			x, _ := a.AsVar()
			k, _ := b.AsInt()
			tightenGE(x, k+1)
			p.markTrivial(c)
			return true
		}
		if a.Kind == flatzinc.ArgInt && b.Kind == flatzinc.ArgVar {
			y, _ := b.AsVar()
			k, _ := a.AsInt()
			tightenLE(y, k-1)
			p.markTrivial(c)
			return true
		}
	}
	return false
}

// presolveSetIn implements the SetIn rule: set_in(x, S) with S a literal
// intersects x's domain with S.
func (p *Presolver) presolveSetIn(c *flatzinc.Constraint) bool {
	if c.Tag != "set_in" || len(c.Args) != 2 {
		return false
	}
	x, err := c.Args[0].AsVar()
	if err != nil {
		return false
	}
	s, err := c.Args[1].AsSet()
	if err != nil {
		return false
	}
	p.fixDomain(x, s)
	p.markTrivial(c)
	return true
}

// presolveArrayBoolAndOr implements the ArrayBoolAnd/Or rule: when every
// operand is fixed, fix the target and delete.
func (p *Presolver) presolveArrayBoolAndOr(c *flatzinc.Constraint) bool {
	if (c.Tag != "array_bool_and" && c.Tag != "array_bool_or") || len(c.Args) != 2 {
		return false
	}
	vars, err := c.Args[0].AsVarArray()
	if err != nil {
		return false
	}
	target, err := c.Args[1].AsVar()
	if err != nil {
		return false
	}
	allFixed := true
	var result int64
	if c.Tag == "array_bool_and" {
		result = 1
	}
	for _, v := range vars {
		variable := p.resolveVar(v)
		val, ok := variable.Domain.IsFixed()
		if !ok {
			allFixed = false
			break
		}
		if c.Tag == "array_bool_and" && val == 0 {
			result = 0
		}
		if c.Tag == "array_bool_or" && val != 0 {
			result = 1
		}
	}
	if !allFixed {
		return false
	}
	p.fixDomain(target, cpsolver.NewSingleDomain(result))
	p.markTrivial(c)
	return true
}

// presolveBoolEqNeReif implements the BoolEqNeReif rule: a reified boolean
// equality/inequality whose output is fixed becomes a direct relation.
func (p *Presolver) presolveBoolEqNeReif(c *flatzinc.Constraint) bool {
	if (c.Tag != "bool_eq_reif" && c.Tag != "bool_ne_reif") || len(c.Args) != 3 {
		return false
	}
	a, err1 := c.Args[0].AsVar()
	b, err2 := c.Args[1].AsVar()
	r, err3 := c.Args[2].AsVar()
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	rv := p.resolveVar(r)
	val, ok := rv.Domain.IsFixed()
	if !ok {
		return false
	}
	wantEqual := (c.Tag == "bool_eq_reif" && val != 0) || (c.Tag == "bool_ne_reif" && val == 0)
	if wantEqual {
		p.markEquivalent(a, b)
		p.markTrivial(c)
		return true
	}
	// a != b: no union-find analog for disequality, so the reification is
	// rewritten in place into a direct int_ne(a, b) rather than discarded
	// (spec §4.2 "Convert to direct equality/non-equality"). The rewritten
	// constraint stays live and reaches dispatch; it is no longer a
	// reification, so it no longer defines a target variable.
	c.Tag = "int_ne"
	c.Args = []flatzinc.Argument{flatzinc.VarArg(a), flatzinc.VarArg(b)}
	c.HasTarget = false
	c.Annotations = nil
	log.V(2).Infof("flatzinc: %d rewritten from a reified disequality to int_ne(%d, %d)", c.ID, a, b)
	return true
}

// presolveArrayIntElement implements the ArrayIntElement rule: an element
// constraint with a fixed index becomes an equality to the selected
// constant.
func (p *Presolver) presolveArrayIntElement(c *flatzinc.Constraint) bool {
	if c.Tag != "array_int_element" || len(c.Args) != 3 {
		return false
	}
	idxArg, arrArg, tgtArg := c.Args[0], c.Args[1], c.Args[2]
	idx, err := idxArg.AsVar()
	if err != nil {
		return false
	}
	arr, err := arrArg.AsIntArray()
	if err != nil {
		return false
	}
	target, err := tgtArg.AsVar()
	if err != nil {
		return false
	}
	iv := p.resolveVar(idx)
	fixedIdx, ok := iv.Domain.IsFixed()
	if !ok {
		return false
	}
	// After presolveSimplifyElement, the index is coeff*Args[0] + offset.
	coeff, offset := int64(1), int64(0)
	for _, ann := range c.Annotations {
		if ann.Name == "affine_index" && len(ann.Args) == 2 {
			k, _ := ann.Args[0].AsInt()
			off, _ := ann.Args[1].AsInt()
			offset += coeff * off
			coeff *= k
		}
	}
	fixedIdx = coeff*fixedIdx + offset
	pos := fixedIdx - 1 // FlatZinc element indices are 1-based.
	if pos < 0 || int(pos) >= len(arr) {
		log.Warningf("flatzinc: array_int_element index %d out of range in constraint %d", fixedIdx, c.ID)
		return false
	}
	c.Tag = "int_eq"
	c.Args = []flatzinc.Argument{flatzinc.VarArg(target), flatzinc.IntArg(arr[pos])}
	return true
}

// presolveIntDivTimes implements the IntDiv/IntTimes rule: an operand fixed
// to zero or one collapses the constraint. int_times(a,b,target) is
// symmetric in a and b; int_div(a,b,target) is target = a div b, so only
// the dividend-zero and divisor-one cases have a safe substitution.
func (p *Presolver) presolveIntDivTimes(c *flatzinc.Constraint) bool {
	isTimes := c.Tag == "int_times"
	isDiv := c.Tag == "int_div"
	if (!isTimes && !isDiv) || len(c.Args) != 3 {
		return false
	}
	a, err1 := c.Args[0].AsVar()
	b, err2 := c.Args[1].AsVar()
	target, err3 := c.Args[2].AsVar()
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	av, bv := p.resolveVar(a), p.resolveVar(b)
	if isTimes {
		if fixed, ok := av.Domain.IsFixed(); ok {
			switch fixed {
			case 0:
				p.fixDomain(target, cpsolver.NewSingleDomain(0))
				p.markTrivial(c)
				return true
			case 1:
				p.markEquivalent(target, b)
				p.markTrivial(c)
				return true
			}
		}
		if fixed, ok := bv.Domain.IsFixed(); ok {
			switch fixed {
			case 0:
				p.fixDomain(target, cpsolver.NewSingleDomain(0))
				p.markTrivial(c)
				return true
			case 1:
				p.markEquivalent(target, a)
				p.markTrivial(c)
				return true
			}
		}
		return false
	}
	// int_div(a, b, target): the dividend fixed to zero forces the
	// quotient to zero regardless of the divisor; the divisor fixed to
	// one makes the quotient exactly the dividend.
	if fixed, ok := av.Domain.IsFixed(); ok && fixed == 0 {
		p.fixDomain(target, cpsolver.NewSingleDomain(0))
		p.markTrivial(c)
		return true
	}
	if fixed, ok := bv.Domain.IsFixed(); ok && fixed == 1 {
		p.markEquivalent(target, a)
		p.markTrivial(c)
		return true
	}
	return false
}

// presolveIntLinStrict implements the IntLinGt/Lt->Ge/Le rule: rewrites a
// strict linear relation to its non-strict form by adjusting the constant.
func (p *Presolver) presolveIntLinStrict(c *flatzinc.Constraint) bool {
	if (c.Tag != "int_lin_gt" && c.Tag != "int_lin_lt") || len(c.Args) != 3 {
		return false
	}
	rhs, err := c.Args[2].AsInt()
	if err != nil {
		return false
	}
	if c.Tag == "int_lin_gt" {
		c.Tag = "int_lin_ge"
		c.Args[2] = flatzinc.IntArg(rhs + 1)
	} else {
		c.Tag = "int_lin_le"
		c.Args[2] = flatzinc.IntArg(rhs - 1)
	}
	return true
}

// presolveLinear implements the Linear rule: drop zero-coefficient terms and
// collapse duplicate variable references by summing their coefficients.
func (p *Presolver) presolveLinear(c *flatzinc.Constraint) bool {
	if !isLinearTag(c.Tag) || len(c.Args) != 3 {
		return false
	}
	coeffs, err1 := c.Args[0].AsIntArray()
	vars, err2 := c.Args[1].AsVarArray()
	if err1 != nil || err2 != nil || len(coeffs) != len(vars) {
		return false
	}
	merged := map[flatzinc.VarID]int64{}
	order := []flatzinc.VarID{}
	changed := false
	for i, v := range vars {
		rv := p.representative(v)
		if coeffs[i] == 0 {
			changed = true
			continue
		}
		if _, seen := merged[rv]; !seen {
			order = append(order, rv)
		} else {
			changed = true
		}
		merged[rv] += coeffs[i]
	}
	if !changed {
		return false
	}
	newCoeffs := make([]int64, 0, len(order))
	newVars := make([]flatzinc.VarID, 0, len(order))
	for _, v := range order {
		if merged[v] == 0 {
			continue
		}
		newCoeffs = append(newCoeffs, merged[v])
		newVars = append(newVars, v)
	}
	c.Args[0] = flatzinc.IntArrayArg(newCoeffs)
	c.Args[1] = flatzinc.VarArrayArg(newVars)
	return true
}

// presolvePropagatePositiveLinear implements the PropagatePositiveLinear
// rule: when all coefficients are non-negative and the relation forces the
// sum to be <= 0 (or exactly a fixed non-positive constant), every term with
// a positive coefficient must be zero.
func (p *Presolver) presolvePropagatePositiveLinear(c *flatzinc.Constraint) bool {
	if c.Tag != "int_lin_le" && c.Tag != "int_lin_eq" {
		return false
	}
	coeffs, err1 := c.Args[0].AsIntArray()
	vars, err2 := c.Args[1].AsVarArray()
	rhs, err3 := c.Args[2].AsInt()
	if err1 != nil || err2 != nil || err3 != nil || rhs > 0 {
		return false
	}
	for _, k := range coeffs {
		if k < 0 {
			return false
		}
	}
	changed := false
	for i, v := range vars {
		if coeffs[i] <= 0 {
			continue
		}
		variable := p.resolveVar(v)
		before := variable.Domain
		variable.Domain = variable.Domain.IntersectWith(cpsolver.NewDomain(0, 0))
		if variable.Domain.Size() != before.Size() {
			changed = true
		}
	}
	if changed {
		p.markTrivial(c)
	}
	return changed
}

// presolveStoreMapping implements the StoreMapping rule: recognises
// `int_lin_eq([1,-a], [y,x], b)` and records y = a*x + b in the affine map.
func (p *Presolver) presolveStoreMapping(c *flatzinc.Constraint) bool {
	if c.Tag != "int_lin_eq" || len(c.Args) != 3 {
		return false
	}
	coeffs, err1 := c.Args[0].AsIntArray()
	vars, err2 := c.Args[1].AsVarArray()
	rhs, err3 := c.Args[2].AsInt()
	if err1 != nil || err2 != nil || err3 != nil || len(coeffs) != 2 || len(vars) != 2 {
		return false
	}
	if coeffs[0] == 1 && coeffs[1] != 0 {
		y, x := vars[0], vars[1]
		if _, has := p.affine.Lookup(p.representative(y)); has {
			return false
		}
		a := -coeffs[1]
		p.affine.Store(p.representative(y), p.representative(x), a, rhs, c.ID)
		return false // recording the mapping does not eliminate the constraint
	}
	return false
}

// presolveSimplifyElement implements the SimplifyElement rule: rewrites an
// element constraint's index when it is drawn from an affine family
// discovered by StoreMapping.
func (p *Presolver) presolveSimplifyElement(c *flatzinc.Constraint) bool {
	if c.Tag != "array_int_element" || len(c.Args) != 3 {
		return false
	}
	idx, err := c.Args[0].AsVar()
	if err != nil {
		return false
	}
	base, coeff, offset := p.affine.Resolve(p.representative(idx))
	if base == p.representative(idx) || coeff == 0 {
		return false
	}
	// index == coeff*base + offset; rewrite the index argument to reference
	// base directly so downstream dispatch can build the affine index
	// expression instead of the eliminated auxiliary variable. We encode the
	// coefficient/offset as two extra int annotations for the dispatcher.
	c.Args[0] = flatzinc.VarArg(base)
	c.Annotations = append(c.Annotations, flatzinc.Annotation{
		Name: "affine_index",
		Args: []flatzinc.Argument{flatzinc.IntArg(coeff), flatzinc.IntArg(offset)},
	})
	return true
}

// presolveUnreify implements the Unreify rule: a reified constraint whose
// boolean output is fixed true/false is replaced by the direct constraint or
// its negation.
func (p *Presolver) presolveUnreify(c *flatzinc.Constraint) bool {
	base, ok := reifiedBase(c.Tag)
	if !ok || len(c.Args) == 0 {
		return false
	}
	r := c.Args[len(c.Args)-1]
	rv, err := r.AsVar()
	if err != nil {
		return false
	}
	variable := p.resolveVar(rv)
	val, fixed := variable.Domain.IsFixed()
	if !fixed {
		return false
	}
	direct := c.Args[:len(c.Args)-1]
	if val != 0 {
		c.Tag = base
		c.Args = direct
	} else {
		neg, ok := negatedTag(base)
		if !ok {
			return false
		}
		c.Tag = neg
		c.Args = direct
	}
	return true
}

func reifiedBase(tag string) (string, bool) {
	m := map[string]string{
		"int_eq_reif": "int_eq", "int_ne_reif": "int_ne",
		"int_lt_reif": "int_lt", "int_le_reif": "int_le",
		"int_gt_reif": "int_gt", "int_ge_reif": "int_ge",
	}
	base, ok := m[tag]
	return base, ok
}

func negatedTag(tag string) (string, bool) {
	m := map[string]string{
		"int_eq": "int_ne", "int_ne": "int_eq",
		"int_lt": "int_ge", "int_ge": "int_lt",
		"int_le": "int_gt", "int_gt": "int_le",
	}
	neg, ok := m[tag]
	return neg, ok
}

func isLinearTag(tag string) bool {
	switch tag {
	case "int_lin_eq", "int_lin_le", "int_lin_ge", "int_lin_ne":
		return true
	}
	return false
}

func minInt64() int64 { return math.MinInt64 }
func maxInt64() int64 { return math.MaxInt64 }
