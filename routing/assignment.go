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

// RouteCollection is one route per vehicle in vehicle-index order; routes
// list visit nodes between (but excluding) the vehicle start/end (spec §6
// "Outputs").
type RouteCollection [][]NodeIndex

// RoutesToAssignment converts a RouteCollection into a cpsolver.Assignment
// over next/active/vehicle variables (spec §4.4). With ignoreInactive
// false, every node not present in any route is assigned inactive (next to
// itself, vehicle -1); with ignoreInactive true such nodes are left
// unassigned. A non-empty route always ends with a link to its vehicle's
// end; closeRoutes also links each empty route's start to its end.
func (m *Model) RoutesToAssignment(routes RouteCollection, ignoreInactive, closeRoutes bool) (*cpsolver.Assignment, error) {
	if len(routes) != m.numVehicles {
		return nil, ErrInvalidIndex
	}
	a := cpsolver.NewAssignment()
	seen := make(map[Index]bool)
	for i := 0; i < m.NumIndices(); i++ {
		a.Add(m.nextVars[Index(i)])
		a.Add(m.activeVars[Index(i)])
		a.Add(m.vehicleVars[Index(i)])
	}
	for v, route := range routes {
		prev := m.starts[v]
		a.SetValue(m.vehicleVars[m.starts[v]], int64(v))
		a.SetValue(m.vehicleVars[m.ends[v]], int64(v))
		for _, node := range route {
			idx, ok := m.nodeToIndex[node]
			if !ok {
				return nil, &InvalidNodeError{Node: int(node)}
			}
			if seen[idx] {
				return nil, &DuplicateIndexError{Index: int(idx)}
			}
			if min, ok := m.activeVars[idx].Bound(); ok && min == 0 {
				return nil, &InactiveNodeUsedError{Index: int(idx)}
			}
			if vv := m.vehicleVars[idx]; !vv.Domain().Contains(int64(v)) {
				return nil, &VehicleNotAllowedError{Vehicle: v, Index: int(idx)}
			}
			seen[idx] = true
			a.SetValue(m.nextVars[prev], int64(idx))
			a.SetValue(m.activeVars[idx], 1)
			a.SetValue(m.vehicleVars[idx], int64(v))
			prev = idx
		}
		if closeRoutes || len(route) > 0 {
			a.SetValue(m.nextVars[prev], int64(m.ends[v]))
		}
	}
	if !ignoreInactive {
		for i := 0; i < m.numNodes; i++ {
			idx := Index(i)
			if !seen[idx] {
				a.SetValue(m.activeVars[idx], 0)
				a.SetValue(m.nextVars[idx], int64(idx))
				a.SetValue(m.vehicleVars[idx], -1)
			}
		}
	}
	if m.costVar != nil {
		a.Add(m.costVar)
		a.SetValue(m.costVar, m.RouteCost(a))
		a.SetObjective(m.costVar)
	}
	return a, nil
}

// AssignmentToRoutes walks the next-variable chain from every vehicle
// start and reconstructs the RouteCollection (spec §4.4, the inverse of
// RoutesToAssignment).
func (m *Model) AssignmentToRoutes(a *cpsolver.Assignment) (RouteCollection, error) {
	routes := make(RouteCollection, m.numVehicles)
	for v := 0; v < m.numVehicles; v++ {
		start, end := m.starts[v], m.ends[v]
		cur := start
		visited := map[Index]bool{}
		for {
			nextVal, ok := a.Value(m.nextVars[cur])
			if !ok {
				break
			}
			next := Index(nextVal)
			if next == end {
				break
			}
			if visited[next] {
				return nil, &DuplicateIndexError{Index: int(next)}
			}
			visited[next] = true
			routes[v] = append(routes[v], m.IndexToNode(next))
			cur = next
		}
	}
	return routes, nil
}

// CompactAssignment re-orders vehicles so that used vehicles occupy a
// prefix [0,k) and empty ones occupy [k,numVehicles) (spec §4.4,
// §8 "compacted assignment" invariant). It moves the route of a used
// high-index vehicle onto an empty low-index vehicle, pair by pair, and
// rebuilds the result through RoutesToAssignment, so the returned
// assignment holds next/active/vehicle values and the cost only; dimension
// cumul and transit values are not carried over.
//
// The source's swap-vehicle search loop tests
// `!IsVehicleUsed(...) || !IsVehicleUsed(...)` with the same argument
// twice — apparently meant to check that neither candidate vehicle in the
// pending swap has already been swapped this pass. That is implemented
// here as the single equivalent check on the "used" flag of each
// candidate; see DESIGN.md for the preserved ambiguity.
func (m *Model) CompactAssignment(a *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	used := make([]bool, m.numVehicles)
	for v := 0; v < m.numVehicles; v++ {
		nextVal, ok := a.Value(m.nextVars[m.starts[v]])
		used[v] = ok && Index(nextVal) != m.ends[v]
	}
	perm := make([]int, m.numVehicles)
	for i := range perm {
		perm[i] = i
	}
	lo, hi := 0, m.numVehicles-1
	for lo < hi {
		for lo < hi && used[perm[lo]] {
			lo++
		}
		for lo < hi && !used[perm[hi]] {
			hi--
		}
		if lo < hi {
			// Swap candidate: perm[lo] is empty, perm[hi] is used. Guard
			// against re-swapping either side within the same pass.
			if !used[perm[lo]] || !used[perm[hi]] {
				perm[lo], perm[hi] = perm[hi], perm[lo]
			}
			lo++
			hi--
		}
	}
	routes, err := m.AssignmentToRoutes(a)
	if err != nil {
		return nil, err
	}
	permuted := make(RouteCollection, m.numVehicles)
	for newV, oldV := range perm {
		permuted[newV] = routes[oldV]
	}
	log.V(1).Infof("routing: compacted assignment, permutation=%v", perm)
	return m.RoutesToAssignment(permuted, false, true)
}
