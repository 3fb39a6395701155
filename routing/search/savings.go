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
	"sort"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/routing"
)

// routeConstructor incrementally merges single-node routes into longer
// chains, tracking each node's chain and each chain's head/tail; a merge
// relabels every node of the merged chain (spec §4.6 "Savings" /
// "RouteConstructor", grounded on
// original_source/src/constraint_solver/routing.cc's RouteConstructor,
// lines ~1616-2196). Every merge is checked against vehicle-class
// compatibility and every dimension's forward-propagated cumul bounds
// before it is applied — RouteConstructor's steps 2-3 (spec §4.6).
type routeConstructor struct {
	model *routing.Model

	// chainOf maps a node to the id of the chain it currently belongs to.
	chainOf map[routing.Index]int
	// head/tail record the two free ends of each chain, keyed by chain id.
	head map[int]routing.Index
	tail map[int]routing.Index
	next map[routing.Index]routing.Index
	prev map[routing.Index]routing.Index

	// vehiclesOf is the intersection of every member node's VehicleVar
	// domain, i.e. the set of vehicles still able to serve the whole
	// chain (spec §4.6 step 2, "vehicle-class compatibility").
	vehiclesOf map[int]cpsolver.Domain

	usedNode  map[routing.Index]bool
	nextChain int
}

func newRouteConstructor(m *routing.Model) *routeConstructor {
	rc := &routeConstructor{
		model:      m,
		chainOf:    make(map[routing.Index]int),
		head:       make(map[int]routing.Index),
		tail:       make(map[int]routing.Index),
		next:       make(map[routing.Index]routing.Index),
		prev:       make(map[routing.Index]routing.Index),
		vehiclesOf: make(map[int]cpsolver.Domain),
		usedNode:   make(map[routing.Index]bool),
	}
	for i := 0; i < m.NumNodes(); i++ {
		idx := routing.Index(i)
		id := rc.nextChain
		rc.nextChain++
		rc.chainOf[idx] = id
		rc.head[id] = idx
		rc.tail[id] = idx
		rc.vehiclesOf[id] = m.VehicleVar(idx).Domain()
	}
	return rc
}

// chainNodes walks chain id from head to tail.
func (rc *routeConstructor) chainNodes(id int) []routing.Index {
	var nodes []routing.Index
	for n := rc.head[id]; ; {
		nodes = append(nodes, n)
		nxt, ok := rc.next[n]
		if !ok {
			break
		}
		n = nxt
	}
	return nodes
}

// compatibleVehicles intersects fromChain's and toChain's vehicle domains,
// further restricted to vehicle when the caller names one (vehicle < 0
// means "any"), reporting the merged domain and whether it is non-empty.
func (rc *routeConstructor) compatibleVehicles(fromChain, toChain, vehicle int) (cpsolver.Domain, bool) {
	compat := rc.vehiclesOf[fromChain].IntersectWith(rc.vehiclesOf[toChain])
	if vehicle >= 0 {
		compat = compat.IntersectWith(cpsolver.NewSingleDomain(int64(vehicle)))
	}
	return compat, !compat.IsEmpty()
}

// dimensionsFeasible walks the candidate merged chain (fromChain's nodes,
// then the from->to bridge arc, then toChain's nodes) through every
// dimension's forward cumul propagation, and requires that at least one
// vehicle in compat can still reach the chain's end within its capacity —
// the "depot threshold" of spec §4.6 step 3.
func (rc *routeConstructor) dimensionsFeasible(fromChain, toChain int, compat cpsolver.Domain) bool {
	nodes := append(rc.chainNodes(fromChain), rc.chainNodes(toChain)...)
	for _, name := range rc.model.DimensionNames() {
		d, ok := rc.model.Dimension(name)
		if !ok {
			continue
		}
		cumul := int64(0)
		for i := 0; i+1 < len(nodes); i++ {
			next, feasible := d.FeasibleForward(cumul, nodes[i], nodes[i+1])
			if !feasible {
				return false
			}
			cumul = next
		}
		reachable := false
		for v := 0; v < rc.model.NumVehicles(); v++ {
			if compat.Contains(int64(v)) && d.CapacityOf(v) >= cumul {
				reachable = true
				break
			}
		}
		if !reachable {
			return false
		}
	}
	return true
}

// tryMerge merges the chain ending at from with the chain starting at to,
// provided they are distinct chains, to is currently a chain head (the
// Clarke-Wright legality condition), the merged chain still has a
// compatible vehicle, and every dimension propagates feasibly along it.
// vehicle restricts the merge to that vehicle when non-negative, letting
// per-vehicle-cost callers pin a merge to the vehicle they costed it under.
func (rc *routeConstructor) tryMerge(from, to routing.Index, vehicle int) bool {
	fromChain, ok1 := rc.chainOf[from]
	toChain, ok2 := rc.chainOf[to]
	if !ok1 || !ok2 || fromChain == toChain {
		return false
	}
	if rc.tail[fromChain] != from || rc.head[toChain] != to {
		return false
	}
	compat, ok := rc.compatibleVehicles(fromChain, toChain, vehicle)
	if !ok {
		return false
	}
	if !rc.dimensionsFeasible(fromChain, toChain, compat) {
		return false
	}
	rc.next[from] = to
	rc.prev[to] = from
	newHead := rc.head[fromChain]
	newTail := rc.tail[toChain]
	merged := fromChain
	delete(rc.head, toChain)
	delete(rc.tail, toChain)
	delete(rc.vehiclesOf, toChain)
	rc.head[merged] = newHead
	rc.tail[merged] = newTail
	rc.vehiclesOf[merged] = compat
	for n := newHead; ; {
		rc.chainOf[n] = merged
		nxt, ok := rc.next[n]
		if !ok || nxt == n {
			break
		}
		n = nxt
	}
	return true
}

// finalize assigns every surviving chain to a compatible vehicle, largest
// chain first, and converts the result to a cpsolver.Assignment.
// Surviving chain ids are visited in sorted order — chainOf/head are Go
// maps whose iteration order is randomized, and ranging over them directly
// would make which chain lands on which vehicle (and which chains get
// dropped once chains outnumber vehicles) non-deterministic across runs of
// the same model (spec §5 "Ordering guarantees"). Chains that cannot be
// seated on any remaining vehicle become unperformed nodes rather than
// being silently dropped, by leaving them out of every route and passing
// ignoreInactive=false so RoutesToAssignment deactivates them explicitly.
func (rc *routeConstructor) finalize() (*cpsolver.Assignment, error) {
	ids := make([]int, 0, len(rc.head))
	for id := range rc.head {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	type chain struct {
		id    int
		nodes []routing.Index
	}
	chains := make([]chain, 0, len(ids))
	for _, id := range ids {
		chains = append(chains, chain{id: id, nodes: rc.chainNodes(id)})
	}
	sort.SliceStable(chains, func(i, j int) bool { return len(chains[i].nodes) > len(chains[j].nodes) })

	routes := make(routing.RouteCollection, rc.model.NumVehicles())
	usedVehicle := make([]bool, rc.model.NumVehicles())
	for _, c := range chains {
		compat := rc.vehiclesOf[c.id]
		assigned := -1
		for v := 0; v < rc.model.NumVehicles(); v++ {
			if !usedVehicle[v] && compat.Contains(int64(v)) {
				assigned = v
				break
			}
		}
		if assigned == -1 {
			continue // no vehicle left that can serve this chain: stays unperformed
		}
		usedVehicle[assigned] = true
		for _, idx := range c.nodes {
			routes[assigned] = append(routes[assigned], rc.model.IndexToNode(idx))
		}
	}
	return rc.model.RoutesToAssignment(routes, false, true)
}

// savingsStrategy implements Clarke-Wright: compute saving(i,j) =
// cost(depot,i) + cost(depot,j) - λ*cost(i,j) for every pair of plain
// nodes with a shared depot-anchored evaluator, sort descending, and merge
// greedily while both endpoints remain chain-legal (spec §4.6 "Savings").
// Candidate partners j for a given i are restricted by cfg's
// SavingsFilterNeighbors/SavingsFilterRadius knobs (spec §6) before the
// saving is even computed, mirroring the source's neighbor-list pruning.
func savingsStrategy(cfg Config) routing.Strategy {
	return func(m *routing.Model, _ *cpsolver.Assignment) (*cpsolver.Assignment, error) {
		if m.NumVehicles() == 0 || m.NumNodes() == 0 {
			return m.RoutesToAssignment(make(routing.RouteCollection, m.NumVehicles()), false, true)
		}
		depot := m.Start(0)
		lambda := cfg.SavingsRouteShapeParameter
		if lambda == 0 {
			lambda = 1.0
		}
		type saving struct {
			i, j  routing.Index
			value float64
		}
		var savings []saving
		for i := 0; i < m.NumNodes(); i++ {
			ii := routing.Index(i)
			for _, jj := range savingsNeighbors(cfg, m, ii) {
				value := float64(m.ArcCost(depot, ii, 0)) + float64(m.ArcCost(depot, jj, 0)) - lambda*float64(m.ArcCost(ii, jj, 0))
				savings = append(savings, saving{ii, jj, value})
			}
		}
		for i := 1; i < len(savings); i++ {
			for j := i; j > 0 && savings[j].value > savings[j-1].value; j-- {
				savings[j], savings[j-1] = savings[j-1], savings[j]
			}
		}
		rc := newRouteConstructor(m)
		for _, s := range savings {
			rc.tryMerge(s.i, s.j, -1)
		}
		return rc.finalize()
	}
}

// savingsNeighbors returns j's candidate partners for i's savings pairs, in
// ascending arc-cost order, restricted to cfg.SavingsFilterNeighbors
// nearest neighbors within cfg.SavingsFilterRadius. A zero
// SavingsFilterNeighbors or a negative SavingsFilterRadius (DefaultConfig's
// values) leaves the corresponding restriction off.
func savingsNeighbors(cfg Config, m *routing.Model, i routing.Index) []routing.Index {
	type cand struct {
		j    routing.Index
		cost int64
	}
	var cands []cand
	for j := 0; j < m.NumNodes(); j++ {
		jj := routing.Index(j)
		if jj == i {
			continue
		}
		cost := m.ArcCost(i, jj, 0)
		if cfg.SavingsFilterRadius >= 0 && cost > cfg.SavingsFilterRadius {
			continue
		}
		cands = append(cands, cand{jj, cost})
	}
	for a := 1; a < len(cands); a++ {
		for b := a; b > 0 && cands[b].cost < cands[b-1].cost; b-- {
			cands[b], cands[b-1] = cands[b-1], cands[b]
		}
	}
	if cfg.SavingsFilterNeighbors > 0 && len(cands) > cfg.SavingsFilterNeighbors {
		cands = cands[:cfg.SavingsFilterNeighbors]
	}
	out := make([]routing.Index, len(cands))
	for k, c := range cands {
		out[k] = c.j
	}
	return out
}
