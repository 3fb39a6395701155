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

package search

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/routing"
	"github.com/vrpcore/vrpcore/routing/localsearch"
)

// BuildStrategy resolves a FirstSolutionStrategy name to a routing.Strategy
// (spec §4.6).
func BuildStrategy(cfg Config) routing.Strategy {
	switch cfg.FirstSolution {
	case GlobalCheapestArc:
		return globalCheapestArcStrategy
	case LocalCheapestArc:
		return localCheapestArcStrategy
	case PathCheapestArc:
		return pathCheapestArcStrategy
	case EvaluatorStrategy:
		return evaluatorStrategy
	case AllUnperformed:
		return allUnperformedStrategy
	case Savings:
		return savingsStrategy(cfg)
	case Sweep:
		return sweepStrategy(cfg)
	case BestInsertion:
		return bestInsertionStrategy(cfg)
	default:
		return defaultStrategy
	}
}

// defaultStrategy delegates to the CP solver's generic phase over next
// variables (spec §4.6 "Default"); this port's generic phase is the same
// cheapest-arc-per-vehicle sweep PathCheapestArc uses, since there is no
// separate CP "phase" abstraction to delegate to here.
func defaultStrategy(m *routing.Model, initial *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	return pathCheapestArcStrategy(m, initial)
}

// pathCheapestArcStrategy builds path-by-path, choosing the cheapest
// extension. For single-vehicle models it tries the fast single-path
// builder first and falls back to the plain per-path construction on
// failure (spec §4.6 "PathCheapestArc").
func pathCheapestArcStrategy(m *routing.Model, initial *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	if m.NumVehicles() == 1 {
		if result, err := tryFastThenNormal(m, fastOnePath, pathByPathCheapestArc); err == nil {
			return result, nil
		}
	}
	return pathByPathCheapestArc(m, initial)
}

// tryFastThenNormal is the Try(fast, normal) combinator (spec §4.6 "the
// caller wraps it in Try(fast, normal) so failure is recoverable").
func tryFastThenNormal(m *routing.Model, fast, normal func(*routing.Model, *cpsolver.Assignment) (*cpsolver.Assignment, error)) (*cpsolver.Assignment, error) {
	if result, err := fast(m, nil); err == nil {
		return result, nil
	}
	return normal(m, nil)
}

// fastOnePath extends one path from any unbound index by repeatedly
// choosing the cheapest feasible next value, assigns other members of the
// same disjunction to themselves (inactive), and self-loops every
// remaining unassigned next (spec §4.6 "Fast-one-path builder").
func fastOnePath(m *routing.Model, _ *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	if m.NumVehicles() != 1 {
		return nil, fmt.Errorf("search: fast-one-path only supports single-vehicle models")
	}
	assigned := make(map[routing.Index]bool)
	blocked := make(map[routing.Index]bool)
	var route []routing.NodeIndex
	cur := m.Start(0)
	for {
		best := routing.Index(-1)
		bestCost := int64(1) << 62
		for i := 0; i < m.NumNodes(); i++ {
			idx := routing.Index(i)
			if assigned[idx] || blocked[idx] || idx == cur {
				continue
			}
			cost := m.ArcCost(cur, idx, 0)
			if cost < bestCost {
				bestCost, best = cost, idx
			}
		}
		if best == -1 {
			break
		}
		assigned[best] = true
		for _, id := range m.DisjunctionsOf(best) {
			for _, sibling := range m.Disjunctions()[id].Indices {
				if sibling != best {
					blocked[sibling] = true
				}
			}
		}
		route = append(route, m.IndexToNode(best))
		cur = best
	}
	routes := routing.RouteCollection{route}
	return m.RoutesToAssignment(routes, false, true)
}

// pathByPathCheapestArc builds every vehicle's path independently, always
// choosing the cheapest still-reachable, still-eligible index.
func pathByPathCheapestArc(m *routing.Model, _ *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	assigned := make(map[routing.Index]bool)
	routes := make(routing.RouteCollection, m.NumVehicles())
	disjunctionUsed := make(map[routing.DisjunctionID]bool)
	for v := 0; v < m.NumVehicles(); v++ {
		cur := m.Start(v)
		for {
			best := routing.Index(-1)
			bestCost := int64(1) << 62
			for i := 0; i < m.NumNodes(); i++ {
				idx := routing.Index(i)
				if assigned[idx] || idx == cur || disjunctionBlocked(m, idx, disjunctionUsed) {
					continue
				}
				if !m.VehicleVar(idx).Domain().Contains(int64(v)) {
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

func disjunctionBlocked(m *routing.Model, idx routing.Index, used map[routing.DisjunctionID]bool) bool {
	for _, id := range m.DisjunctionsOf(idx) {
		if used[id] {
			return true
		}
	}
	return false
}

// IndexEvaluator assigns a caller-defined priority to a routing index;
// EvaluatorStrategy always extends a path with the still-eligible index of
// lowest score (spec §4.6: "a user-supplied index evaluator orders
// decisions").
type IndexEvaluator func(idx routing.Index) int64

// evaluatorRegistry associates a Model with a caller-registered
// IndexEvaluator, the same registration pattern sweepStrategy uses for its
// PolarLocator, since routing.Model itself stays free of search-only
// concerns.
var evaluatorRegistry = make(map[*routing.Model]IndexEvaluator)

// RegisterIndexEvaluator attaches eval to m for EvaluatorStrategy's use.
// Call this before invoking Solve with search.EvaluatorStrategy.
func RegisterIndexEvaluator(m *routing.Model, eval IndexEvaluator) {
	evaluatorRegistry[m] = eval
}

// evaluatorStrategy builds each vehicle's path by always extending with the
// still-eligible index of lowest registered evaluator score, in contrast to
// PathCheapestArc's lowest arc cost (spec §4.6 "EvaluatorStrategy"). It
// degrades to pathByPathCheapestArc when no evaluator is registered on m,
// mirroring sweepStrategy's degrade-when-unregistered behavior.
func evaluatorStrategy(m *routing.Model, initial *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	eval, ok := evaluatorRegistry[m]
	if !ok {
		return pathByPathCheapestArc(m, initial)
	}
	assigned := make(map[routing.Index]bool)
	routes := make(routing.RouteCollection, m.NumVehicles())
	disjunctionUsed := make(map[routing.DisjunctionID]bool)
	for v := 0; v < m.NumVehicles(); v++ {
		cur := m.Start(v)
		for {
			best := routing.Index(-1)
			bestScore := int64(1) << 62
			for i := 0; i < m.NumNodes(); i++ {
				idx := routing.Index(i)
				if assigned[idx] || idx == cur || disjunctionBlocked(m, idx, disjunctionUsed) {
					continue
				}
				if !m.VehicleVar(idx).Domain().Contains(int64(v)) {
					continue
				}
				if score := eval(idx); score < bestScore {
					bestScore, best = score, idx
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

// globalCheapestArcStrategy is the static global best over all arcs by
// cost (spec §4.6 "GlobalCheapestArc"): repeatedly pick the cheapest
// feasible (tail-of-a-route, head-of-a-route) arc across every vehicle,
// merging routes as Savings does, until no candidate remains.
func globalCheapestArcStrategy(m *routing.Model, _ *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	rc := newRouteConstructor(m)
	var arcs []arc
	for i := 0; i < m.NumNodes(); i++ {
		for j := 0; j < m.NumNodes(); j++ {
			if i == j {
				continue
			}
			arcs = append(arcs, arc{routing.Index(i), routing.Index(j), m.ArcCost(routing.Index(i), routing.Index(j), 0)})
		}
	}
	sortArcsByCost(arcs)
	for _, a := range arcs {
		rc.tryMerge(a.from, a.to, -1)
	}
	return rc.finalize()
}

type arc struct {
	from, to routing.Index
	cost     int64
}

func sortArcsByCost(arcs []arc) {
	for i := 1; i < len(arcs); i++ {
		for j := i; j > 0 && arcs[j].cost < arcs[j-1].cost; j-- {
			arcs[j], arcs[j-1] = arcs[j-1], arcs[j]
		}
	}
}

// localCheapestArcStrategy chooses, per path, the locally cheapest next
// extension (spec §4.6 "LocalCheapestArc") — identical mechanics to
// pathByPathCheapestArc here, since both this port's variants build one
// path at a time without a global arc ranking.
func localCheapestArcStrategy(m *routing.Model, initial *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	return pathByPathCheapestArc(m, initial)
}

// allUnperformedStrategy deactivates every non-start index (spec §4.6
// "AllUnperformed").
func allUnperformedStrategy(m *routing.Model, _ *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	routes := make(routing.RouteCollection, m.NumVehicles())
	return m.RoutesToAssignment(routes, false, true)
}

// bestInsertionStrategy starts from AllUnperformed and repeatedly applies
// the cheapest available insertion move — MakePairActiveOperator for
// pickup-delivery pairs, MakeActiveOperator for plain nodes — until no
// filter-accepted candidate remains or an inner limit fires, then
// finalises. The insertion operators are the same ones RunLocalSearch
// drives during ordinary local search (spec §4.6 "BestInsertion": "run
// local-search insertion moves until an inner limit, then finalise. The
// insertion operator is shared with ordinary local search").
func bestInsertionStrategy(cfg Config) routing.Strategy {
	return func(m *routing.Model, _ *cpsolver.Assignment) (*cpsolver.Assignment, error) {
		base, err := allUnperformedStrategy(m, nil)
		if err != nil {
			return nil, err
		}
		if err := base.Restore(allIndexVars(m)); err != nil {
			return nil, err
		}
		ops := []neighborhood{
			localsearch.NewMakePairActiveOperator(m),
			localsearch.NewMakeActiveOperator(m),
		}
		chain := buildFilterChain(m, cfg)
		chain.OnSynchronize()

		innerLimit := m.NumIndices() + 1
		for iter := 0; iter < innerLimit; iter++ {
			var bestMove *localsearch.Move
			bestCost := int64(1) << 62
			for _, op := range ops {
				for _, candidate := range op.Candidates() {
					if !chain.Accept(candidate.Delta) {
						continue
					}
					if cost := insertionCost(m, candidate); cost < bestCost {
						mv := candidate
						bestCost, bestMove = cost, &mv
					}
				}
			}
			if bestMove == nil {
				break
			}
			applyMove(m, *bestMove)
			chain.OnSynchronize()
		}
		if a, err := m.RoutesToAssignment(mustRoutes(m), false, true); err == nil {
			return a, nil
		}
		log.Warningf("search: best-insertion could not resolve a final assignment")
		return cpsolver.NewAssignment(), nil
	}
}

// insertionCost sums the arc cost (under vehicle 0's cost class) of every
// next-link an insertion move installs, letting bestInsertionStrategy rank
// candidates cheapest-first.
func insertionCost(m *routing.Model, move localsearch.Move) int64 {
	var total int64
	for from, el := range move.Delta.NextAssignment {
		if to, ok := el.Fixed(); ok {
			total += m.ArcCost(from, routing.Index(to), 0)
		}
	}
	return total
}
