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

package cpsolver

import "fmt"

// LinearTerm is one coefficient*variable pair of a LinearExpr, mirroring the
// teacher's varCoeff in cp_model.go.
type LinearTerm struct {
	Var   IntVarExpr
	Coeff int64
}

// LinearExpr is a sum of weighted variables plus a constant offset.
type LinearExpr struct {
	Terms  []LinearTerm
	Offset int64
}

// NewLinearExpr creates an empty LinearExpr.
func NewLinearExpr() *LinearExpr { return &LinearExpr{} }

// AddTerm appends coeff*v to the expression and returns the receiver.
func (l *LinearExpr) AddTerm(v IntVarExpr, coeff int64) *LinearExpr {
	l.Terms = append(l.Terms, LinearTerm{v, coeff})
	return l
}

// AddConstant adds a constant to the expression and returns the receiver.
func (l *LinearExpr) AddConstant(c int64) *LinearExpr {
	l.Offset += c
	return l
}

// Min returns a valid lower bound of the expression given current domains.
func (l *LinearExpr) Min() int64 {
	total := l.Offset
	for _, t := range l.Terms {
		if t.Coeff >= 0 {
			total += t.Coeff * t.Var.Min()
		} else {
			total += t.Coeff * t.Var.Max()
		}
	}
	return total
}

// Max returns a valid upper bound of the expression given current domains.
func (l *LinearExpr) Max() int64 {
	total := l.Offset
	for _, t := range l.Terms {
		if t.Coeff >= 0 {
			total += t.Coeff * t.Var.Max()
		} else {
			total += t.Coeff * t.Var.Min()
		}
	}
	return total
}

// linearConstraint enforces expr's value to lie in domain. It is the target
// of int_lin_eq/le/ge dispatch (spec §4.3): "argument 0 is the coefficient
// vector, argument 1 the variable vector, argument 2 the right-hand side
// constant; handler posts a scalar-product relation."
type linearConstraint struct {
	expr   *LinearExpr
	domain Domain
}

// NewLinearConstraint returns a Constraint enforcing expr ∈ domain.
func NewLinearConstraint(expr *LinearExpr, domain Domain) Constraint {
	return &linearConstraint{expr: expr, domain: domain}
}

func (c *linearConstraint) String() string {
	return fmt.Sprintf("linear(%d terms) in %s", len(c.expr.Terms), c.domain)
}

func (c *linearConstraint) Post(s *Solver) error {
	for _, t := range c.expr.Terms {
		if iv, ok := t.Var.(*intVar); ok {
			iv.WhenBound(func(s *Solver) error { return c.propagate(s) })
		}
	}
	return nil
}

func (c *linearConstraint) InitialPropagate(s *Solver) error { return c.propagate(s) }

// propagate performs bounds consistency: it tightens each unfixed term's
// domain using the slack left by the others, and fails outright if the
// expression's bound range can never intersect c.domain.
func (c *linearConstraint) propagate(s *Solver) error {
	lo, hi := c.expr.Min(), c.expr.Max()
	dMin, dMinOK := c.domain.Min()
	dMax, dMaxOK := c.domain.Max()
	if dMinOK && hi < dMin {
		return fmt.Errorf("%w: linear expr max %d below domain min %d", ErrInfeasible, hi, dMin)
	}
	if dMaxOK && lo > dMax {
		return fmt.Errorf("%w: linear expr min %d above domain max %d", ErrInfeasible, lo, dMax)
	}
	if c.domain.IntersectWith(NewDomain(lo, hi)).IsEmpty() {
		return fmt.Errorf("%w: linear expr range [%d,%d] misses domain %s", ErrInfeasible, lo, hi, c.domain)
	}
	for _, t := range c.expr.Terms {
		iv, ok := t.Var.(*intVar)
		if !ok || t.Coeff == 0 {
			continue
		}
		restMin, restMax := lo, hi
		if t.Coeff >= 0 {
			restMin -= t.Coeff * iv.Min()
			restMax -= t.Coeff * iv.Max()
		} else {
			restMin -= t.Coeff * iv.Max()
			restMax -= t.Coeff * iv.Min()
		}
		if dMaxOK {
			// term*coeff <= dMax - restMin
			bound := dMax - restMin
			if err := tightenTerm(iv, t.Coeff, bound, true); err != nil {
				return err
			}
		}
		if dMinOK {
			bound := dMin - restMax
			if err := tightenTerm(iv, t.Coeff, bound, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func tightenTerm(iv *intVar, coeff, bound int64, isUpper bool) error {
	// coeff*x REL bound, REL is <= if isUpper (from the max side) else >=.
	if coeff == 0 {
		return nil
	}
	upperOnX := isUpper == (coeff > 0)
	if coeff < 0 {
		bound = -bound
	}
	var q int64
	if coeff < 0 {
		coeff = -coeff
	}
	if upperOnX {
		q = floorDiv(bound, coeff)
		return iv.SetMax(q)
	}
	q = ceilDiv(bound, coeff)
	return iv.SetMin(q)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

// elementConstraint enforces values[index] == target (spec §4.3 element
// dispatch: "Index is shifted to 0-based; target is set as values[index]").
type elementConstraint struct {
	index  *intVar
	values []int64
	target *intVar
}

// NewElementConstraint returns a Constraint enforcing values[index]==target.
func NewElementConstraint(index IntVarExpr, values []int64, target IntVarExpr) Constraint {
	iv, _ := index.(*intVar)
	tv, _ := target.(*intVar)
	return &elementConstraint{index: iv, values: values, target: tv}
}

func (c *elementConstraint) String() string {
	return fmt.Sprintf("element(index in [0,%d))", len(c.values))
}

func (c *elementConstraint) Post(s *Solver) error {
	c.index.WhenBound(func(s *Solver) error { return c.propagate(s) })
	c.target.WhenBound(func(s *Solver) error { return c.propagate(s) })
	return nil
}

func (c *elementConstraint) InitialPropagate(s *Solver) error { return c.propagate(s) }

func (c *elementConstraint) propagate(s *Solver) error {
	if idx, ok := c.index.Bound(); ok {
		if idx < 0 || int(idx) >= len(c.values) {
			return fmt.Errorf("%w: element index %d out of range", ErrInfeasible, idx)
		}
		return c.target.SetValue(c.values[idx])
	}
	// Restrict index to positions whose value is still allowed by target.
	var allowed []ClosedInterval
	for i, v := range c.values {
		if c.target.Domain().Contains(v) {
			allowed = append(allowed, ClosedInterval{int64(i), int64(i)})
		}
	}
	return c.index.IntersectDomain(FromIntervals(allowed))
}

// allDifferentConstraint enforces pairwise distinctness with a simple
// singleton-elimination pass (bounds/value pruning, not full Hall-set
// filtering — see DESIGN.md for why the fuller AllDifferent propagator is
// out of scope per spec §1).
type allDifferentConstraint struct {
	vars []*intVar
}

// NewAllDifferentConstraint returns a Constraint enforcing pairwise
// distinctness among vars.
func NewAllDifferentConstraint(vars []IntVarExpr) Constraint {
	ivs := make([]*intVar, 0, len(vars))
	for _, v := range vars {
		if iv, ok := v.(*intVar); ok {
			ivs = append(ivs, iv)
		}
	}
	return &allDifferentConstraint{vars: ivs}
}

func (c *allDifferentConstraint) String() string { return fmt.Sprintf("all_different(%d)", len(c.vars)) }

func (c *allDifferentConstraint) Post(s *Solver) error {
	for _, v := range c.vars {
		v.WhenBound(func(s *Solver) error { return c.propagate(s) })
	}
	return nil
}

func (c *allDifferentConstraint) InitialPropagate(s *Solver) error { return c.propagate(s) }

func (c *allDifferentConstraint) propagate(s *Solver) error {
	for i, v := range c.vars {
		val, ok := v.Bound()
		if !ok {
			continue
		}
		for j, other := range c.vars {
			if i == j {
				continue
			}
			if _, bound := other.Bound(); bound {
				continue
			}
			if err := other.RemoveValue(val); err != nil {
				return err
			}
		}
	}
	return nil
}
