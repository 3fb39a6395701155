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

package localsearch

import "github.com/vrpcore/vrpcore/routing"

// MoveObjective computes a move's implied absolute objective value: the
// model's current cost, plus the marginal arc-cost change of every fixed
// next-link the delta would install, plus the change in disjunction-penalty
// total the delta implies (spec §4.5, §4.6 "objective comparison"). This is
// the same delta-summing pattern insertionCost uses in
// routing/search/firstsolution.go, generalised to also account for
// activation changes. LNS elements (non-singleton ranges) contribute no
// concrete arc, matching DisjunctionFilter's own LNS pass-through.
func MoveObjective(m *routing.Model, delta Delta) int64 {
	total := m.CurrentCost()
	for from, el := range delta.NextAssignment {
		to, ok := el.Fixed()
		if !ok {
			continue
		}
		vehicle := 0
		if vv, ok := m.VehicleVar(from).Bound(); ok && vv >= 0 {
			vehicle = int(vv)
		}
		if oldTo, ok := m.NextVar(from).Bound(); ok {
			total -= m.ArcCost(from, routing.Index(oldTo), vehicle)
		}
		total += m.ArcCost(from, to, vehicle)
	}
	total += disjunctionPenaltyDelta(m, delta)
	return total
}

// disjunctionPenaltyDelta returns the change in "sum of inactive optional
// disjunctions' penalties" that delta would cause: negative when the move
// activates a disjunction that currently has no active member (its penalty
// is no longer charged), positive when it deactivates a disjunction's last
// active member. Computed independently of DisjunctionFilter's cached
// counts since MoveObjective works off live model state.
func disjunctionPenaltyDelta(m *routing.Model, delta Delta) int64 {
	changed := make(map[routing.Index]bool)
	for idx, el := range delta.NextAssignment {
		to, ok := el.Fixed()
		if !ok {
			continue
		}
		oldTo, ok := m.NextVar(idx).Bound()
		if !ok {
			continue
		}
		wasActive := routing.Index(oldTo) != idx
		nowActive := to != idx
		if wasActive != nowActive {
			changed[idx] = nowActive
		}
	}
	if len(changed) == 0 {
		return 0
	}
	var total int64
	for _, d := range m.Disjunctions() {
		if d.Penalty < 0 {
			continue
		}
		touched := false
		for _, idx := range d.Indices {
			if _, ok := changed[idx]; ok {
				touched = true
				break
			}
		}
		if !touched {
			continue
		}
		before, after := 0, 0
		for _, idx := range d.Indices {
			wasActive := false
			if v, ok := m.ActiveVar(idx).Bound(); ok {
				wasActive = v == 1
			}
			nowActive := wasActive
			if na, ok := changed[idx]; ok {
				nowActive = na
			}
			if wasActive {
				before++
			}
			if nowActive {
				after++
			}
		}
		if before == 0 && after > 0 {
			total -= d.Penalty
		} else if before > 0 && after == 0 {
			total += d.Penalty
		}
	}
	return total
}
