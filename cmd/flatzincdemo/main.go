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

// The flatzincdemo command builds a small flat constraint model by hand
// (in place of an external .fzn parser, which is out of this module's
// scope), presolves it, dispatches it onto a cpsolver.Solver, and runs a
// minimal depth-first labeling search to print the first solution found.
package main

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/flatzinc"
	"github.com/vrpcore/vrpcore/flatzinc/dispatch"
	"github.com/vrpcore/vrpcore/flatzinc/presolve"
)

// buildModel constructs three variables x, y, z in [1,3] with x != y,
// y != z, and x + y + z == 6 — small enough for the demo's labeling search
// to solve directly. None of the presolve rules fires on these three
// constraints, so every one of them reaches dispatch.
func buildModel() (*flatzinc.Model, flatzinc.VarID, flatzinc.VarID, flatzinc.VarID, error) {
	m := flatzinc.NewModel()
	x, err := m.NewIntVar("x", cpsolver.NewDomain(1, 3), false)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	y, err := m.NewIntVar("y", cpsolver.NewDomain(1, 3), false)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	z, err := m.NewIntVar("z", cpsolver.NewDomain(1, 3), false)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	if _, err := m.AddConstraint("int_ne", []flatzinc.Argument{flatzinc.VarArg(x.ID), flatzinc.VarArg(y.ID)}); err != nil {
		return nil, 0, 0, 0, err
	}
	if _, err := m.AddConstraint("int_ne", []flatzinc.Argument{flatzinc.VarArg(y.ID), flatzinc.VarArg(z.ID)}); err != nil {
		return nil, 0, 0, 0, err
	}
	if _, err := m.AddConstraint("int_lin_eq", []flatzinc.Argument{
		flatzinc.IntArrayArg([]int64{1, 1, 1}),
		flatzinc.VarArrayArg([]flatzinc.VarID{x.ID, y.ID, z.ID}),
		flatzinc.IntArg(6),
	}); err != nil {
		return nil, 0, 0, 0, err
	}
	m.Close()
	return m, x.ID, y.ID, z.ID, nil
}

// label runs a simple depth-first search: pick the first unbound variable,
// try each value in its domain under a solver choice point, and recurse.
// cpsolver's Solver deliberately exposes only propagation (Push/Pop/
// Propagate), not a search driver, so this loop lives in the demo rather
// than in the library, matching the "external collaborator" boundary
// spec.md draws around C1-C3's data model.
func label(s *cpsolver.Solver, vars []cpsolver.IntVarExpr) (map[cpsolver.VarID]int64, bool) {
	var unbound cpsolver.IntVarExpr
	for _, v := range vars {
		if _, ok := v.Bound(); !ok {
			unbound = v
			break
		}
	}
	if unbound == nil {
		result := make(map[cpsolver.VarID]int64, len(vars))
		for _, v := range vars {
			val, _ := v.Bound()
			result[v.ID()] = val
		}
		return result, true
	}
	iv, ok := unbound.(interface{ SetValue(int64) error })
	if !ok {
		return nil, false
	}
	dom := unbound.Domain()
	lo, _ := dom.Min()
	hi, _ := dom.Max()
	for val := lo; val <= hi; val++ {
		if !dom.Contains(val) {
			continue
		}
		s.Push()
		if err := iv.SetValue(val); err == nil {
			if err := s.Propagate(); err == nil && !s.Failed() {
				if result, ok := label(s, vars); ok {
					s.Pop()
					return result, true
				}
			}
		}
		s.Pop()
	}
	return nil, false
}

func flatzincDemo() error {
	m, xID, yID, zID, err := buildModel()
	if err != nil {
		return fmt.Errorf("failed to build flat model: %w", err)
	}

	p := presolve.New(m)
	p.Run()
	p.CleanUpModelForTheCpSolver()

	s := cpsolver.NewSolver()
	d := dispatch.New(m, s)
	if err := d.Run(); err != nil {
		return fmt.Errorf("failed to dispatch model: %w", err)
	}

	vars := d.Vars()
	varList := make([]cpsolver.IntVarExpr, 0, len(vars))
	for _, v := range vars {
		varList = append(varList, v)
	}

	result, ok := label(s, varList)
	if !ok {
		fmt.Println("Status: Fail")
		return nil
	}
	fmt.Println("Status: Success")
	if v, ok := d.Var(xID); ok {
		fmt.Printf("x = %d\n", result[v.ID()])
	}
	if v, ok := d.Var(yID); ok {
		fmt.Printf("y = %d\n", result[v.ID()])
	}
	if v, ok := d.Var(zID); ok {
		fmt.Printf("z = %d\n", result[v.ID()])
	}
	return nil
}

func main() {
	if err := flatzincDemo(); err != nil {
		log.Exitf("flatzincDemo returned with error: %v", err)
	}
}
