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
	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
)

// Status is the outcome of a Solve call (spec §6 "Outputs").
type Status int

const (
	// NotSolved means Solve has not yet run.
	NotSolved Status = iota
	// Success means a feasible assignment was collected.
	Success
	// Fail means search finished without a feasible solution.
	Fail
	// FailTimeout means a wall-time or solution limit fired first.
	FailTimeout
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case Fail:
		return "Fail"
	case FailTimeout:
		return "FailTimeout"
	default:
		return "NotSolved"
	}
}

// Strategy builds a candidate assignment from scratch (a first-solution
// heuristic) or refines an initial one. Concrete strategies (PathCheapestArc,
// Savings, Sweep, ...) live in routing/search and are plain functions of
// this shape, avoiding an import cycle back into routing.
type Strategy func(m *Model, initial *cpsolver.Assignment) (*cpsolver.Assignment, error)

// Solve runs search and returns the best assignment collected, or a
// failure status with a distinguishable timeout case (spec §4.4
// "solve(initial?)"). A nil strategy falls back to a simple cheapest-arc
// per-vehicle construction, matching the *Default* first-solution
// strategy's fallback role (spec §4.6).
func (m *Model) Solve(strategy Strategy, initial *cpsolver.Assignment) (*cpsolver.Assignment, Status, error) {
	if m.state == Open {
		if err := m.CloseModel(); err != nil {
			return nil, Fail, err
		}
	}
	if strategy == nil {
		strategy = defaultCheapestArcStrategy
	}
	result, err := strategy(m, initial)
	if err != nil {
		if err == ErrTimeout {
			return nil, FailTimeout, nil
		}
		log.Warningf("routing: solve failed: %v", err)
		return nil, Fail, nil
	}
	m.state = Solved
	return result, Success, nil
}

// defaultCheapestArcStrategy builds one path per vehicle, always
// extending to the cheapest still-reachable index, skipping an index once
// any disjunction it belongs to already has a routed member. It is
// deliberately simple:
// the richer PathCheapestArc/Savings/Sweep strategies in routing/search
// supersede it whenever those packages are wired in by a caller.
func defaultCheapestArcStrategy(m *Model, _ *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	assigned := make(map[Index]bool)
	routes := make(RouteCollection, m.numVehicles)
	disjunctionUsed := make(map[DisjunctionID]bool)

	nodeBlocked := func(idx Index) bool {
		for _, id := range m.DisjunctionsOf(idx) {
			if disjunctionUsed[id] {
				return true
			}
		}
		return false
	}

	for v := 0; v < m.numVehicles; v++ {
		cur := m.starts[v]
		for {
			best := Index(-1)
			bestCost := int64(1) << 62
			for i := 0; i < m.numNodes; i++ {
				idx := Index(i)
				if assigned[idx] || idx == cur || nodeBlocked(idx) {
					continue
				}
				if !m.vehicleVars[idx].Domain().Contains(int64(v)) {
					continue
				}
				cost := m.ArcCost(cur, idx, v)
				if cost < bestCost {
					bestCost, best = cost, idx
				}
			}
			if best == -1 {
				break
			}
			assigned[best] = true
			for _, id := range m.DisjunctionsOf(best) {
				disjunctionUsed[id] = true
			}
			routes[v] = append(routes[v], m.IndexToNode(best))
			cur = best
		}
	}
	return m.RoutesToAssignment(routes, true, true)
}
