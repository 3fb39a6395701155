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

package routing

import (
	"fmt"

	"github.com/vrpcore/vrpcore/cpsolver"
)

// Dimension is a named cumulative quantity accumulated along a vehicle
// route (spec GLOSSARY): time, load, distance. Feasibility of a dimension
// along a candidate route is checked by the PathCumul filter (C5), not by
// posted CP propagation — spec §4.4's close_model does not list dimension
// consistency among its structural constraints, matching
// original_source/src/constraint_solver/routing.cc's split between the
// dimension's CP cumul variables (used for bound queries) and its
// path-local filter (used for move acceptance).
type Dimension struct {
	name                string
	model               *Model
	evaluator           TransitEvaluator
	slackMax            int64
	capacities          []int64 // per vehicle
	fixStartCumulToZero bool

	cumulVars []cpsolver.IntVarExpr
	slackVars []cpsolver.IntVarExpr
}

func newDimension(m *Model, evaluator TransitEvaluator, slackMax int64, capacities []int64, fixStartCumulToZero bool, name string) *Dimension {
	n := m.NumIndices()
	d := &Dimension{
		name:                name,
		model:               m,
		evaluator:           evaluator,
		slackMax:            slackMax,
		capacities:          capacities,
		fixStartCumulToZero: fixStartCumulToZero,
		cumulVars:           make([]cpsolver.IntVarExpr, n),
		slackVars:           make([]cpsolver.IntVarExpr, n),
	}
	maxCap := int64(0)
	for _, c := range capacities {
		if c > maxCap {
			maxCap = c
		}
	}
	for i := 0; i < n; i++ {
		d.cumulVars[i] = m.solver.NewIntVar(0, maxCap, fmt.Sprintf("%s.cumul[%d]", name, i))
		d.slackVars[i] = m.solver.NewIntVar(0, slackMax, fmt.Sprintf("%s.slack[%d]", name, i))
	}
	if fixStartCumulToZero {
		for v := 0; v < m.numVehicles; v++ {
			start := m.starts[v]
			if sv, ok := d.cumulVars[start].(interface{ SetValue(int64) error }); ok {
				_ = sv.SetValue(0)
			}
		}
	}
	return d
}

// Name returns the dimension's name.
func (d *Dimension) Name() string { return d.name }

// SlackMax returns the maximum slack allowed at any index.
func (d *Dimension) SlackMax() int64 { return d.slackMax }

// CapacityOf returns the vehicle-specific capacity, i.e. the dimension's
// cumul upper bound along that vehicle's route.
func (d *Dimension) CapacityOf(vehicle int) int64 { return d.capacities[vehicle] }

// Transit returns the dimension's transit quantity for arc (from,to).
func (d *Dimension) Transit(from, to Index) int64 { return d.evaluator(from, to) }

// CumulVar returns index i's cumul variable.
func (d *Dimension) CumulVar(i Index) cpsolver.IntVarExpr { return d.cumulVars[i] }

// SlackVar returns index i's slack variable.
func (d *Dimension) SlackVar(i Index) cpsolver.IntVarExpr { return d.slackVars[i] }

// CumulMin returns the current lower bound of index i's cumul variable.
func (d *Dimension) CumulMin(i Index) int64 { return d.cumulVars[i].Min() }

// CumulMax returns the current upper bound of index i's cumul variable.
func (d *Dimension) CumulMax(i Index) int64 { return d.cumulVars[i].Max() }

// FeasibleForward reports whether propagating cumul values forward along
// next from cumul(from) admits to's cumul bounds, per the PathCumul
// filter's per-node check: cumul = max(cumul_min[next], cumul +
// transit(node,next)); reject when cumul > cumul_max[next] (spec §4.5).
func (d *Dimension) FeasibleForward(cumulAtFrom int64, from, to Index) (nextCumul int64, ok bool) {
	nextCumul = cumulAtFrom + d.Transit(from, to)
	if nextCumul < d.CumulMin(to) {
		nextCumul = d.CumulMin(to)
	}
	if nextCumul > d.CumulMax(to) {
		return nextCumul, false
	}
	return nextCumul, true
}
