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

// Package flatzinc implements the flat constraint-problem AST (C1) that an
// external parser populates, the presolve equivalence machinery that C2/C3
// build on (union-find, affine map), and the model-level invariants of
// spec.md §3-4.1: alias chains, "trivially true" constraints, and
// single-definition target variables.
package flatzinc

import (
	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
)

// VarKind distinguishes the three flat variable domains named in spec §4.1;
// SetVar exists only for parser completeness (see ErrUnsupportedSetVariable).
type VarKind int

const (
	// IntKind is a general finite-domain integer variable.
	IntKind VarKind = iota
	// BoolKind is a {0,1}-domain variable.
	BoolKind
	// SetKind is unsupported past presolve; see spec §4.1.
	SetKind
)

// VarID indexes a Variable within a Model's Vars slice.
type VarID int32

// Variable is a flat integer or Boolean variable (spec §3 "Flat integer
// variable"). Boolean variables share this shape with an implicit {0,1}
// domain.
type Variable struct {
	ID          VarID
	Name        string
	Kind        VarKind
	Domain      cpsolver.Domain
	Introduced  bool // true for compiler-introduced variables
	alias       VarID
	hasAlias    bool
}

// IsAlias reports whether the variable has been collapsed onto another.
func (v *Variable) IsAlias() bool { return v.hasAlias }

// ConstraintID indexes a Constraint within a Model's Constraints slice.
type ConstraintID int32

// Constraint is a tagged, ordered argument list with optional target
// variable and annotations (spec §3 "Flat constraint").
type Constraint struct {
	ID       ConstraintID
	Tag      string
	Args     []Argument
	Target   VarID
	HasTarget bool
	// TriviallyTrue is set by presolve to mark the constraint eliminated; a
	// trivially-true constraint must never be dispatched (spec §4.1
	// invariant).
	TriviallyTrue bool
	Annotations   []Annotation
}

// Annotation is a named annotation call with flat arguments, e.g.
// `defines_var(x)`.
type Annotation struct {
	Name string
	Args []Argument
}

// Model is the append-only-during-parse flat constraint problem (C1). After
// parsing, presolve may add aliases to variables and mark/rewrite
// constraints, but never frees them: "presolve mutates but does not free;
// dispatch reads them; they are freed when the flat model is freed" (spec
// §3). This Go port relies on the garbage collector for that last step.
type Model struct {
	Vars        []*Variable
	Constraints []*Constraint
	// SolveGoal is either "satisfy", "minimize", or "maximize".
	SolveGoal string
	// Objective is only meaningful when SolveGoal != "satisfy".
	Objective VarID
	closed    bool
}

// NewModel creates an empty flat model.
func NewModel() *Model {
	return &Model{SolveGoal: "satisfy"}
}

// NewIntVar appends a new integer variable with the given domain.
func (m *Model) NewIntVar(name string, d cpsolver.Domain, introduced bool) (*Variable, error) {
	if m.closed {
		return nil, ErrModelClosed
	}
	v := &Variable{ID: VarID(len(m.Vars)), Name: name, Kind: IntKind, Domain: d, Introduced: introduced}
	m.Vars = append(m.Vars, v)
	return v, nil
}

// NewBoolVar appends a new Boolean variable.
func (m *Model) NewBoolVar(name string, introduced bool) (*Variable, error) {
	if m.closed {
		return nil, ErrModelClosed
	}
	v := &Variable{ID: VarID(len(m.Vars)), Name: name, Kind: BoolKind, Domain: cpsolver.NewDomain(0, 1), Introduced: introduced}
	m.Vars = append(m.Vars, v)
	return v, nil
}

// NewSetVar appends a new set-valued variable. It exists only for parser
// completeness — per spec §4.1 it fails with ErrUnsupportedSetVariable as
// soon as dispatch (or printing) reaches it.
func (m *Model) NewSetVar(name string, introduced bool) (*Variable, error) {
	if m.closed {
		return nil, ErrModelClosed
	}
	v := &Variable{ID: VarID(len(m.Vars)), Name: name, Kind: SetKind, Introduced: introduced}
	m.Vars = append(m.Vars, v)
	return v, nil
}

// AddConstraint appends a new constraint with the given tag and arguments.
func (m *Model) AddConstraint(tag string, args []Argument) (*Constraint, error) {
	if m.closed {
		return nil, ErrModelClosed
	}
	c := &Constraint{ID: ConstraintID(len(m.Constraints)), Tag: tag, Args: args}
	m.Constraints = append(m.Constraints, c)
	return c, nil
}

// SetTarget marks a constraint as the sole definition of a variable. Posting
// a second defining constraint for the same variable is a model-building
// bug and is logged, per spec §4.1's "a target variable is defined by at
// most one constraint" invariant.
func (m *Model) SetTarget(c *Constraint, v VarID) {
	for _, other := range m.Constraints {
		if other != c && other.HasTarget && other.Target == v && !other.TriviallyTrue {
			log.Errorf("flatzinc: variable %d already defined by constraint %d, redefining from %d", v, other.ID, c.ID)
		}
	}
	c.Target = v
	c.HasTarget = true
}

// Close marks the model closed to further structural mutation: NewIntVar,
// NewBoolVar, NewSetVar and AddConstraint return ErrModelClosed afterwards.
// Presolve and dispatch do not check the flag.
func (m *Model) Close() { m.closed = true }

// Resolve follows alias chains and returns the representative Variable for id.
// Resolution is idempotent: calling Resolve on an already-resolved id
// returns it unchanged (spec §8 invariant).
func (m *Model) Resolve(id VarID) *Variable {
	v := m.Vars[id]
	seen := map[VarID]bool{id: true}
	for v.hasAlias {
		next := v.alias
		if seen[next] {
			log.Errorf("flatzinc: alias cycle detected at variable %d", next)
			break
		}
		seen[next] = true
		v = m.Vars[next]
	}
	return v
}

// SetAlias collapses `from` onto `to`. Callers must resolve `to` first (or
// rely on Resolve elsewhere) so alias chains stay shallow and terminating.
func (m *Model) SetAlias(from, to VarID) {
	if from == to {
		return
	}
	m.Vars[from].alias = to
	m.Vars[from].hasAlias = true
}

// LiveConstraints returns the non-trivially-true constraints, in original
// order — the view the dispatcher (C3) iterates.
func (m *Model) LiveConstraints() []*Constraint {
	var live []*Constraint
	for _, c := range m.Constraints {
		if !c.TriviallyTrue {
			live = append(live, c)
		}
	}
	return live
}
