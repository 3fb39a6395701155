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

// Package dispatch implements C3: the table lookup from a normalised flat
// constraint tag to a handler that posts the corresponding cpsolver
// primitive. Grounded on original_source/src/flatzinc2/flatzinc_constraints.cc's
// long string-keyed handler cascade, expressed here as a compile-time map
// from tag to handler func, per spec.md §9's "tagged variant + table" note.
package dispatch

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/crillab/gophersat/solver"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/flatzinc"
)

// Dispatcher owns the live cpsolver.Solver and the flatzinc.Model→cpsolver
// variable mapping built up as constraints are dispatched.
type Dispatcher struct {
	model  *flatzinc.Model
	solver *cpsolver.Solver
	vars   map[flatzinc.VarID]cpsolver.IntVarExpr
}

// New creates a Dispatcher that will post m's live constraints onto s.
func New(m *flatzinc.Model, s *cpsolver.Solver) *Dispatcher {
	return &Dispatcher{model: m, solver: s, vars: make(map[flatzinc.VarID]cpsolver.IntVarExpr)}
}

type handlerFunc func(d *Dispatcher, c *flatzinc.Constraint) error

// handlers is the compile-time dispatch table, keyed by normalised
// FlatZinc tag. Adding a new constraint kind means adding one entry here.
var handlers = map[string]handlerFunc{
	"int_eq": handleCompare(cmpEq), "int_ne": handleCompare(cmpNe),
	"int_lt": handleCompare(cmpLt), "int_le": handleCompare(cmpLe),
	"int_gt": handleCompare(cmpGt), "int_ge": handleCompare(cmpGe),
	"int_lin_eq": handleLinear(cmpEq), "int_lin_ne": handleLinear(cmpNe),
	"int_lin_le": handleLinear(cmpLe), "int_lin_ge": handleLinear(cmpGe),
	"array_int_element": (*Dispatcher).handleElement,
	"all_different_int":  (*Dispatcher).handleAllDifferent,
	"bool_clause":        (*Dispatcher).handleBoolClause,
	"array_bool_and":     (*Dispatcher).handleArrayBoolAnd,
	"array_bool_or":      (*Dispatcher).handleArrayBoolOr,
}

// Var returns the cpsolver variable backing a flat variable id, if the
// dispatcher has already created one for it (via varFor while dispatching
// a constraint that references it).
func (d *Dispatcher) Var(id flatzinc.VarID) (cpsolver.IntVarExpr, bool) {
	fv := d.model.Resolve(id)
	v, ok := d.vars[fv.ID]
	return v, ok
}

// Vars returns every cpsolver variable the dispatcher has created so far,
// keyed by the flat variable id it was resolved from.
func (d *Dispatcher) Vars() map[flatzinc.VarID]cpsolver.IntVarExpr {
	out := make(map[flatzinc.VarID]cpsolver.IntVarExpr, len(d.vars))
	for k, v := range d.vars {
		out[k] = v
	}
	return out
}

// Run dispatches every live constraint in the model, in order. It returns
// the first error encountered — dispatch-time errors are fatal to model
// construction (spec §7 "Propagation policy").
func (d *Dispatcher) Run() error {
	for _, c := range d.model.LiveConstraints() {
		h, ok := handlers[c.Tag]
		if !ok {
			return &flatzinc.UnsupportedConstraintError{Tag: c.Tag}
		}
		if err := h(d, c); err != nil {
			return fmt.Errorf("dispatch %s (constraint %d): %w", c.Tag, c.ID, err)
		}
	}
	return nil
}

// varFor returns (creating if necessary) the cpsolver variable backing a
// flat variable id, resolved through the model's alias chain first.
func (d *Dispatcher) varFor(id flatzinc.VarID) (cpsolver.IntVarExpr, error) {
	fv := d.model.Resolve(id)
	if fv.Kind == flatzinc.SetKind {
		return nil, &flatzinc.UnsupportedSetVariableError{Name: fv.Name}
	}
	if v, ok := d.vars[fv.ID]; ok {
		return v, nil
	}
	var v cpsolver.IntVarExpr
	if fv.Kind == flatzinc.BoolKind {
		v = d.solver.NewBoolVar(fv.Name)
	} else {
		v = d.solver.NewIntVarFromDomain(fv.Domain, fv.Name)
	}
	d.vars[fv.ID] = v
	return v, nil
}

// arg resolves an Argument to either a bound cpsolver variable or a plain
// int64 constant, matching the "each side is independently either a
// variable expression or an integer constant" contract (spec §4.3).
func (d *Dispatcher) arg(a flatzinc.Argument) (cpsolver.IntVarExpr, int64, bool, error) {
	if a.IsConstant() {
		v, err := a.AsInt()
		return nil, v, true, err
	}
	v, err := a.AsVar()
	if err != nil {
		return nil, 0, false, err
	}
	expr, err := d.varFor(v)
	return expr, 0, false, err
}

type compareOp int

const (
	cmpEq compareOp = iota
	cmpNe
	cmpLt
	cmpLe
	cmpGt
	cmpGe
)

func (op compareOp) evalConst(a, b int64) bool {
	switch op {
	case cmpEq:
		return a == b
	case cmpNe:
		return a != b
	case cmpLt:
		return a < b
	case cmpLe:
		return a <= b
	case cmpGt:
		return a > b
	case cmpGe:
		return a >= b
	}
	return false
}

// handleCompare implements the binary-comparison dispatch contract of spec
// §4.3: each side is independently a variable or a constant, giving four
// branches. Constant-constant collapses to a feasibility check; the mixed
// and variable-variable branches post the relation as a degree-1 linear
// constraint so a single cpsolver.Constraint type covers every case.
func handleCompare(op compareOp) handlerFunc {
	return func(d *Dispatcher, c *flatzinc.Constraint) error {
		if len(c.Args) != 2 {
			return fmt.Errorf("expected 2 arguments, got %d", len(c.Args))
		}
		av, aConst, aIsConst, err := d.arg(c.Args[0])
		if err != nil {
			return err
		}
		bv, bConst, bIsConst, err := d.arg(c.Args[1])
		if err != nil {
			return err
		}
		if aIsConst && bIsConst {
			if !op.evalConst(aConst, bConst) {
				log.Warningf("dispatch: constraint %d is unsatisfiable constant comparison", c.ID)
				return cpsolver.ErrInfeasible
			}
			return nil
		}
		expr := cpsolver.NewLinearExpr()
		if !aIsConst {
			expr.AddTerm(av, 1)
		} else {
			expr.AddConstant(aConst)
		}
		if !bIsConst {
			expr.AddTerm(bv, -1)
		} else {
			expr.AddConstant(-bConst)
		}
		return d.postLinear(expr, op)
	}
}

// postLinear posts `expr R 0` for the given comparison op, choosing the
// bound-domain shape the underlying linear constraint expects.
func (d *Dispatcher) postLinear(expr *cpsolver.LinearExpr, op compareOp) error {
	var dom cpsolver.Domain
	switch op {
	case cmpEq:
		dom = cpsolver.NewSingleDomain(0)
	case cmpLe:
		dom = cpsolver.NewDomain(minInt64, 0)
	case cmpGe:
		dom = cpsolver.NewDomain(0, maxInt64)
	case cmpLt:
		dom = cpsolver.NewDomain(minInt64, -1)
	case cmpGt:
		dom = cpsolver.NewDomain(1, maxInt64)
	case cmpNe:
		// expr != 0, expressed directly as the two-interval domain excluding
		// zero rather than as a pair of watched half-space constraints.
		dom = cpsolver.FromIntervals([]cpsolver.ClosedInterval{
			{Start: minInt64, End: -1},
			{Start: 1, End: maxInt64},
		})
	}
	return d.solver.AddConstraint(cpsolver.NewLinearConstraint(expr, dom))
}

const (
	minInt64 = -1 << 62
	maxInt64 = 1<<62 - 1
)

// handleLinear implements the int_lin_R contract of spec §4.3: argument 0
// is the coefficient vector, argument 1 the variable vector, argument 2 the
// right-hand-side constant.
func handleLinear(op compareOp) handlerFunc {
	return func(d *Dispatcher, c *flatzinc.Constraint) error {
		if len(c.Args) != 3 {
			return fmt.Errorf("expected 3 arguments, got %d", len(c.Args))
		}
		coeffs, err := c.Args[0].AsIntArray()
		if err != nil {
			return err
		}
		varIDs, err := c.Args[1].AsVarArray()
		if err != nil {
			return err
		}
		rhs, err := c.Args[2].AsInt()
		if err != nil {
			return err
		}
		if len(coeffs) != len(varIDs) {
			return fmt.Errorf("coefficient/variable length mismatch: %d vs %d", len(coeffs), len(varIDs))
		}
		expr := cpsolver.NewLinearExpr()
		for i, id := range varIDs {
			v, err := d.varFor(id)
			if err != nil {
				return err
			}
			expr.AddTerm(v, coeffs[i])
		}
		expr.AddConstant(-rhs)
		return d.postLinear(expr, op)
	}
}

// handleElement implements the element-constraint contract of spec §4.3:
// index expression, constant array, target. Index is shifted to 0-based;
// target is set as values[index].
func (d *Dispatcher) handleElement(c *flatzinc.Constraint) error {
	if len(c.Args) != 3 {
		return fmt.Errorf("expected 3 arguments, got %d", len(c.Args))
	}
	idxID, err := c.Args[0].AsVar()
	if err != nil {
		return err
	}
	values, err := c.Args[1].AsIntArray()
	if err != nil {
		return err
	}
	targetID, err := c.Args[2].AsVar()
	if err != nil {
		return err
	}
	target, err := d.varFor(targetID)
	if err != nil {
		return err
	}
	// presolveSimplifyElement records index == coeff*Args[0] + offset as
	// affine_index annotations; compose them in the order they were added.
	coeff, offset := int64(1), int64(0)
	for _, ann := range c.Annotations {
		if ann.Name == "affine_index" && len(ann.Args) == 2 {
			k, _ := ann.Args[0].AsInt()
			off, _ := ann.Args[1].AsInt()
			offset += coeff * off
			coeff *= k
		}
	}
	shifted, err := d.shiftIndexZeroBased(idxID, coeff, offset)
	if err != nil {
		return err
	}
	return d.solver.AddConstraint(cpsolver.NewElementConstraint(shifted, values, target))
}

// shiftIndexZeroBased returns a variable expression equal to
// coeff*idx+offset-1, per the element dispatch contract's "index is shifted
// to 0-based" (spec §4.3); coeff is 1 and offset 0 for a plain index.
func (d *Dispatcher) shiftIndexZeroBased(idxID flatzinc.VarID, coeff, offset int64) (cpsolver.IntVarExpr, error) {
	idx, err := d.varFor(idxID)
	if err != nil {
		return nil, err
	}
	lo, hi := coeff*idx.Min()+offset-1, coeff*idx.Max()+offset-1
	if lo > hi {
		lo, hi = hi, lo
	}
	shifted := d.solver.NewIntVar(lo, hi, fmt.Sprintf("elem-idx-%d", idxID))
	expr := cpsolver.NewLinearExpr()
	expr.AddTerm(idx, coeff)
	expr.AddTerm(shifted, -1)
	expr.AddConstant(offset - 1)
	if err := d.solver.AddConstraint(cpsolver.NewLinearConstraint(expr, cpsolver.NewSingleDomain(0))); err != nil {
		return nil, err
	}
	return shifted, nil
}

// handleAllDifferent posts the weak all-different filter cpsolver ships
// (spec §1 excludes defining new primitive-constraint propagation
// algorithms; the filter still needs to exist to be dispatched to).
func (d *Dispatcher) handleAllDifferent(c *flatzinc.Constraint) error {
	if len(c.Args) != 1 {
		return fmt.Errorf("expected 1 argument, got %d", len(c.Args))
	}
	ids, err := c.Args[0].AsVarArray()
	if err != nil {
		return err
	}
	vars := make([]cpsolver.IntVarExpr, len(ids))
	for i, id := range ids {
		v, err := d.varFor(id)
		if err != nil {
			return err
		}
		vars[i] = v
	}
	return d.solver.AddConstraint(cpsolver.NewAllDifferentConstraint(vars))
}

// postCardConstr posts a gophersat solver.CardConstr — a cardinality
// constraint over signed int literals in gophersat's own convention
// (positive names the variable, negative its negation) — as a cpsolver
// linear inequality: sum of true literals must be at least cc.AtLeast.
// litVar resolves a literal's absolute value back to the cpsolver variable
// it names. This is the same sign-normalisation gophersat's PBConstr
// already performs for satsym.Canonicalize, applied here to the
// integer-cardinality side instead of the pseudo-Boolean side.
func (d *Dispatcher) postCardConstr(cc solver.CardConstr, litVar map[int]cpsolver.IntVarExpr) error {
	expr := cpsolver.NewLinearExpr()
	negated := int64(0)
	for _, lit := range cc.Lits {
		v, ok := litVar[abs(lit)]
		if !ok {
			return fmt.Errorf("dispatch: card constraint references unknown literal %d", lit)
		}
		if lit > 0 {
			expr.AddTerm(v, 1)
		} else {
			expr.AddTerm(v, -1)
			negated++
		}
	}
	expr.AddConstant(-(int64(cc.AtLeast) - negated))
	return d.postLinear(expr, cmpGe)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// handleBoolClause implements FlatZinc's `bool_clause(pos, neg)` global: at
// least one variable in pos is true, or at least one variable in neg is
// false (spec §4.3's boolean-array encodings) — literally the propositional
// clause solver.CardConstr's own doc comment describes ("a cardinality
// constraint with a minimal cardinality of 1"), posted via solver.AtLeast1.
func (d *Dispatcher) handleBoolClause(c *flatzinc.Constraint) error {
	if len(c.Args) != 2 {
		return fmt.Errorf("expected 2 arguments, got %d", len(c.Args))
	}
	posIDs, err := c.Args[0].AsVarArray()
	if err != nil {
		return err
	}
	negIDs, err := c.Args[1].AsVarArray()
	if err != nil {
		return err
	}
	litVar := make(map[int]cpsolver.IntVarExpr, len(posIDs)+len(negIDs))
	lits := make([]int, 0, len(posIDs)+len(negIDs))
	next := 1
	for _, id := range posIDs {
		v, err := d.varFor(id)
		if err != nil {
			return err
		}
		litVar[next] = v
		lits = append(lits, next)
		next++
	}
	for _, id := range negIDs {
		v, err := d.varFor(id)
		if err != nil {
			return err
		}
		litVar[next] = v
		lits = append(lits, -next)
		next++
	}
	return d.postCardConstr(solver.AtLeast1(lits...), litVar)
}

// boolArrayReif resolves a `array_bool_and`/`array_bool_or`-shaped
// (as, r) argument pair to cpsolver variables, assigning each a small
// local literal id (r is always literal 1) for use with solver.CardConstr.
func (d *Dispatcher) boolArrayReif(c *flatzinc.Constraint) (xs []cpsolver.IntVarExpr, r cpsolver.IntVarExpr, litVar map[int]cpsolver.IntVarExpr, err error) {
	if len(c.Args) != 2 {
		return nil, nil, nil, fmt.Errorf("expected 2 arguments, got %d", len(c.Args))
	}
	asIDs, err := c.Args[0].AsVarArray()
	if err != nil {
		return nil, nil, nil, err
	}
	rID, err := c.Args[1].AsVar()
	if err != nil {
		return nil, nil, nil, err
	}
	r, err = d.varFor(rID)
	if err != nil {
		return nil, nil, nil, err
	}
	litVar = map[int]cpsolver.IntVarExpr{1: r}
	xs = make([]cpsolver.IntVarExpr, len(asIDs))
	for i, id := range asIDs {
		v, err := d.varFor(id)
		if err != nil {
			return nil, nil, nil, err
		}
		xs[i] = v
		litVar[i+2] = v
	}
	return xs, r, litVar, nil
}

// handleArrayBoolAnd implements FlatZinc's `array_bool_and(as, r)` global:
// r <-> AND(as), Tseitin-encoded into the clauses (¬r ∨ x_i) for every i
// and (r ∨ ¬x_1 ∨ ... ∨ ¬x_n), each posted as a solver.CardConstr via
// solver.AtLeast1 exactly as handleBoolClause does for a plain clause
// (spec §4.3, SUPPLEMENTED FEATURES).
func (d *Dispatcher) handleArrayBoolAnd(c *flatzinc.Constraint) error {
	xs, _, litVar, err := d.boolArrayReif(c)
	if err != nil {
		return err
	}
	for i := range xs {
		if err := d.postCardConstr(solver.AtLeast1(-1, i+2), litVar); err != nil {
			return err
		}
	}
	clause := make([]int, 0, len(xs)+1)
	clause = append(clause, 1)
	for i := range xs {
		clause = append(clause, -(i + 2))
	}
	return d.postCardConstr(solver.AtLeast1(clause...), litVar)
}

// handleArrayBoolOr implements FlatZinc's `array_bool_or(as, r)` global:
// r <-> OR(as), Tseitin-encoded as the dual of handleArrayBoolAnd's
// clauses: (¬x_i ∨ r) for every i, and (¬r ∨ x_1 ∨ ... ∨ x_n).
func (d *Dispatcher) handleArrayBoolOr(c *flatzinc.Constraint) error {
	xs, _, litVar, err := d.boolArrayReif(c)
	if err != nil {
		return err
	}
	for i := range xs {
		if err := d.postCardConstr(solver.AtLeast1(-(i+2), 1), litVar); err != nil {
			return err
		}
	}
	clause := make([]int, 0, len(xs)+1)
	clause = append(clause, -1)
	for i := range xs {
		clause = append(clause, i+2)
	}
	return d.postCardConstr(solver.AtLeast1(clause...), litVar)
}
