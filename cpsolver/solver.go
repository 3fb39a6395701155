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

import (
	"errors"
	"fmt"

	log "github.com/golang/glog"
)

// ErrInfeasible is returned by propagation when a domain is driven empty.
var ErrInfeasible = errors.New("cpsolver: infeasible")

// VarID identifies a variable owned by a Solver.
type VarID int32

// IntVarExpr is the read side of an integer variable owned by a Solver.
// Routing and flatzinc/dispatch code depend only on this interface, never on
// the concrete engine, per the "external collaborator" boundary in spec §1.
type IntVarExpr interface {
	ID() VarID
	Min() int64
	Max() int64
	Bound() (int64, bool)
	Domain() Domain
}

// BoolVarExpr is the Boolean specialisation of IntVarExpr.
type BoolVarExpr interface {
	IntVarExpr
	IsTrue() (bool, bool)
}

// Constraint is a posted relation between variables. Constraints are opaque
// to callers; only the Solver can propagate or remove them.
type Constraint interface {
	// Post installs the constraint's demons on the solver. Called once, at
	// the time the constraint is added.
	Post(s *Solver) error
	// InitialPropagate runs the constraint once, immediately after Post.
	InitialPropagate(s *Solver) error
	String() string
}

// Demon is a piece of propagation woken up by a variable event. Demons never
// escape a failure to the caller: a failed demon marks the current
// propagation pass failed and the solver backtracks.
type Demon func(s *Solver) error

// Solver is the generic CP engine collaborator. It owns variables and
// constraints, runs propagation to a local fix-point, and offers a
// restorable choice-point trail for search. The one implementation in this
// package is single-threaded and cooperative, matching spec §5.
type Solver struct {
	vars        []*intVar
	constraints []Constraint
	trail       []trailEntry
	markers     []int
	failed      bool
	queue       []VarID
	inQueue     map[VarID]bool
}

type trailEntry struct {
	v        *intVar
	oldMin   int64
	oldMax   int64
	oldDom   Domain
	oldFixed bool
}

// NewSolver creates an empty Solver.
func NewSolver() *Solver {
	return &Solver{inQueue: make(map[VarID]bool)}
}

// NewIntVar creates a new integer variable with domain [lb,ub].
func (s *Solver) NewIntVar(lb, ub int64, name string) IntVarExpr {
	return s.newVar(NewDomain(lb, ub), name)
}

// NewIntVarFromDomain creates a new integer variable with the given domain.
func (s *Solver) NewIntVarFromDomain(d Domain, name string) IntVarExpr {
	return s.newVar(d, name)
}

// NewBoolVar creates a new Boolean variable ({0,1} domain).
func (s *Solver) NewBoolVar(name string) BoolVarExpr {
	return s.newVar(NewDomain(0, 1), name)
}

func (s *Solver) newVar(d Domain, name string) *intVar {
	v := &intVar{s: s, id: VarID(len(s.vars)), dom: d, name: name}
	s.vars = append(s.vars, v)
	return v
}

// Var returns the variable with the given id.
func (s *Solver) Var(id VarID) *intVar { return s.vars[id] }

// AddConstraint posts a constraint and runs its initial propagation.
func (s *Solver) AddConstraint(c Constraint) error {
	s.constraints = append(s.constraints, c)
	if err := c.Post(s); err != nil {
		return err
	}
	if err := c.InitialPropagate(s); err != nil {
		s.failed = true
		return err
	}
	return s.Propagate()
}

// Push creates a choice point: state changes after Push can be undone with a
// matching Pop. Push/Pop bracket local-search delta evaluation and search
// backtracking alike (spec §5's "scoped acquisition").
func (s *Solver) Push() {
	s.markers = append(s.markers, len(s.trail))
}

// Pop restores the state to the last Push.
func (s *Solver) Pop() {
	if len(s.markers) == 0 {
		log.Errorf("cpsolver: Pop called without a matching Push")
		return
	}
	mark := s.markers[len(s.markers)-1]
	s.markers = s.markers[:len(s.markers)-1]
	for i := len(s.trail) - 1; i >= mark; i-- {
		e := s.trail[i]
		e.v.dom = e.oldDom
	}
	s.trail = s.trail[:mark]
	s.failed = false
}

// Failed reports whether the last propagation drove some domain empty.
func (s *Solver) Failed() bool { return s.failed }

func (s *Solver) record(v *intVar) {
	s.trail = append(s.trail, trailEntry{v: v, oldDom: v.dom})
}

func (s *Solver) enqueue(id VarID) {
	if !s.inQueue[id] {
		s.inQueue[id] = true
		s.queue = append(s.queue, id)
	}
}

// Propagate drains the demon queue to a fix-point. It stops (and reports
// failure) the moment any variable's domain becomes empty.
func (s *Solver) Propagate() error {
	for len(s.queue) > 0 {
		id := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.inQueue, id)
		v := s.vars[id]
		for _, d := range v.demons {
			if err := d(s); err != nil {
				s.failed = true
				return err
			}
		}
		if s.vars[id].dom.IsEmpty() {
			s.failed = true
			return fmt.Errorf("variable %s: %w", s.vars[id].name, ErrInfeasible)
		}
	}
	return nil
}

// intVar is the sole IntVarExpr/BoolVarExpr implementation, trail-restorable
// through its owning Solver.
type intVar struct {
	s      *Solver
	id     VarID
	dom    Domain
	name   string
	demons []Demon
}

func (v *intVar) ID() VarID     { return v.id }
func (v *intVar) Domain() Domain { return v.dom }

func (v *intVar) Min() int64 {
	m, ok := v.dom.Min()
	if !ok {
		return 0
	}
	return m
}

func (v *intVar) Max() int64 {
	m, ok := v.dom.Max()
	if !ok {
		return 0
	}
	return m
}

func (v *intVar) Bound() (int64, bool) { return v.dom.IsFixed() }

func (v *intVar) IsTrue() (bool, bool) {
	val, ok := v.dom.IsFixed()
	if !ok {
		return false, false
	}
	return val != 0, true
}

// Name returns the variable's display name.
func (v *intVar) Name() string { return v.name }

// WhenBound registers a demon on v. Constraint implementations call this
// from Post. Despite the name, the demon runs after every change to v's
// domain (restrict enqueues v on any narrowing), not only when v becomes
// fixed.
func (v *intVar) WhenBound(d Demon) {
	v.demons = append(v.demons, d)
}

// SetMin tightens v's domain to exclude values below m.
func (v *intVar) SetMin(m int64) error {
	return v.restrict(v.dom.IntersectWith(NewDomain(m, v.dom.intervalsMax())))
}

// SetMax tightens v's domain to exclude values above m.
func (v *intVar) SetMax(m int64) error {
	return v.restrict(v.dom.IntersectWith(NewDomain(v.dom.intervalsMin(), m)))
}

// SetValue fixes v to a single value.
func (v *intVar) SetValue(val int64) error {
	return v.restrict(v.dom.IntersectWith(NewSingleDomain(val)))
}

// RemoveValue removes a single value from v's domain.
func (v *intVar) RemoveValue(val int64) error {
	return v.restrict(v.dom.RemoveValue(val))
}

// IntersectDomain intersects v's domain with d.
func (v *intVar) IntersectDomain(d Domain) error {
	return v.restrict(v.dom.IntersectWith(d))
}

func (v *intVar) restrict(newDom Domain) error {
	if newDom.Size() == v.dom.Size() {
		// No-op fast path: avoids polluting the trail and demon queue for
		// restrictions that changed nothing (common for constant folding).
		var same bool
		if len(newDom.intervals) == len(v.dom.intervals) {
			same = true
			for i := range newDom.intervals {
				if newDom.intervals[i] != v.dom.intervals[i] {
					same = false
					break
				}
			}
		}
		if same {
			return nil
		}
	}
	v.s.record(v)
	v.dom = newDom
	v.s.enqueue(v.id)
	if newDom.IsEmpty() {
		return fmt.Errorf("variable %s: %w", v.name, ErrInfeasible)
	}
	return nil
}

func (d Domain) intervalsMin() int64 {
	if m, ok := d.Min(); ok {
		return m
	}
	return -1 << 62
}

func (d Domain) intervalsMax() int64 {
	if m, ok := d.Max(); ok {
		return m
	}
	return 1 << 62
}
