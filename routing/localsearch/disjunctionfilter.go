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

// DisjunctionFilter maintains active_per_disjunction[d] and a global
// penalty_value, the sum of penalties of currently-inactive disjunctions
// (spec §4.5 "Node-disjunction filter").
type DisjunctionFilter struct {
	model         *routing.Model
	activeCount   map[routing.DisjunctionID]int
	penaltySum    int64
	costMin       int64
	costMax       int64
}

// NewDisjunctionFilter builds the filter over m, whose CostVar bounds the
// implied objective range.
func NewDisjunctionFilter(m *routing.Model) *DisjunctionFilter {
	f := &DisjunctionFilter{model: m, activeCount: make(map[routing.DisjunctionID]int)}
	f.OnSynchronize()
	return f
}

// OnSynchronize recomputes active_per_disjunction and penalty_value from
// the model's currently bound active variables.
func (f *DisjunctionFilter) OnSynchronize() {
	f.activeCount = make(map[routing.DisjunctionID]int)
	f.penaltySum = 0
	disjunctions := f.model.Disjunctions()
	for id, d := range disjunctions {
		count := 0
		for _, idx := range d.Indices {
			if v, ok := f.model.ActiveVar(idx).Bound(); ok && v == 1 {
				count++
			}
		}
		f.activeCount[routing.DisjunctionID(id)] = count
		if count == 0 && d.Penalty >= 0 {
			f.penaltySum += d.Penalty
		}
	}
	if cv := f.model.CostVar(); cv != nil {
		f.costMin, f.costMax = cv.Min(), cv.Max()
	}
}

// Accept walks the delta's changed next-variables, classifying each as
// was_inactive->now_active or vice versa, and rejects if a disjunction
// would exceed one active member or the implied objective falls outside
// the cost variable's bounds (spec §4.5). LNS moves — a delta element with
// a non-singleton domain — are accepted unconditionally, letting deeper
// search decide (spec §4.5, §9).
func (f *DisjunctionFilter) Accept(delta Delta) bool {
	countDelta := make(map[routing.DisjunctionID]int)
	for idx, el := range delta.NextAssignment {
		if el.IsLNS() {
			return true
		}
		wasActive := false
		if v, ok := f.model.ActiveVar(idx).Bound(); ok {
			wasActive = v == 1
		}
		nowActive := f.impliesActive(idx, el)
		if wasActive == nowActive {
			continue
		}
		for _, id := range f.model.DisjunctionsOf(idx) {
			if nowActive {
				countDelta[id]++
			} else {
				countDelta[id]--
			}
		}
	}
	disjunctions := f.model.Disjunctions()
	for id, dc := range countDelta {
		total := f.activeCount[id] + dc
		if total > 1 {
			return false
		}
		if int(id) < len(disjunctions) && disjunctions[id].Penalty < 0 && total < 1 {
			return false // mandatory disjunction cannot go fully inactive
		}
	}
	if f.model.CostVar() != nil {
		if delta.NewObjective < f.costMin || delta.NewObjective > f.costMax {
			return false
		}
	}
	return true
}

// impliesActive reports whether assigning idx's next-variable per el
// implies idx itself becomes active — a self-loop (idx -> idx) means
// inactive, anything else means active, mirroring the routing model's
// active/next coupling.
func (f *DisjunctionFilter) impliesActive(idx routing.Index, el DeltaElement) bool {
	v, ok := el.Fixed()
	if !ok {
		return true // non-singleton already handled by the LNS pass-through above
	}
	return v != idx
}
