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

// Package routing implements C4, the vehicle routing model: an arena-style
// dense-vector index space over visit nodes and per-vehicle start/end
// slots, with dimensions, disjunctions, pickup-delivery pairs, a cost
// cache keyed by cost class, and the Open/Closed/Solved state machine.
// Grounded on original_source/src/constraint_solver/routing.h's public
// surface and on the teacher's arena-of-parallel-vectors idiom seen in
// ortools/sat/go/cpmodel/cp_model.go's variable/constraint bookkeeping.
package routing

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
)

// NodeIndex is an externally-visible node identity, e.g. a customer id in
// the caller's coordinate system.
type NodeIndex int32

// Index is an internal arena slot: one per plain visit node, plus two per
// vehicle (its start and end), per spec §9's "arena indexing for routing".
type Index int32

// State is the routing model's lifecycle stage (spec §4.4).
type State int

const (
	// Open: variables can be added, dimensions declared, disjunctions
	// registered. The state at construction.
	Open State = iota
	// Closed: structural constraints fixed, search buildable.
	Closed
	// Solved: solve has produced a collected assignment.
	Solved
)

// CostEvaluator computes the arc cost between two internal indices.
type CostEvaluator func(from, to Index) int64

// TransitEvaluator computes a dimension's transit quantity between two
// internal indices.
type TransitEvaluator func(from, to Index) int64

// DisjunctionID indexes a registered disjunction.
type DisjunctionID int

type disjunction struct {
	indices []Index
	penalty int64 // negative means mandatory (spec §4.4 "add_disjunction")
}

// Mandatory reports whether the disjunction has no penalty escape hatch.
func (d disjunction) Mandatory() bool { return d.penalty < 0 }

// pickupDelivery is one pickup/delivery pair (spec GLOSSARY).
type pickupDelivery struct {
	pickup   Index
	delivery Index
}

// Model is the routing model (C4). It owns non-owning references into a
// cpsolver.Solver: the solver itself owns all variables (spec §5 "Shared-
// resource policy").
type Model struct {
	solver *cpsolver.Solver

	numNodes    int
	numVehicles int
	starts      []Index
	ends        []Index
	nodeToIndex map[NodeIndex]Index
	indexToNode map[Index]NodeIndex

	nextVars    []cpsolver.IntVarExpr
	activeVars  []cpsolver.IntVarExpr
	vehicleVars []cpsolver.IntVarExpr

	dimensions map[string]*Dimension

	disjunctions      []disjunction
	disjunctionOfNode map[Index][]DisjunctionID

	pairs []pickupDelivery

	homogeneous   bool
	costEvaluator CostEvaluator
	vehicleCost   map[int]CostEvaluator
	costClassOf   []int // per vehicle
	costClassEval []CostEvaluator
	costCache     []map[costCacheKey]int64
	fixedCost     []int64 // per vehicle, charged once if the vehicle is used

	costVar cpsolver.IntVarExpr

	state State
}

type costCacheKey struct {
	to    Index
	class int
}

// New fixes the index space: numNodes plain visit nodes plus one start/end
// index pair per vehicle (spec §4.4 "new(num_nodes, num_vehicles,
// start_end_pairs)").
func New(s *cpsolver.Solver, numNodes, numVehicles int, starts, ends []NodeIndex) (*Model, error) {
	if len(starts) != numVehicles || len(ends) != numVehicles {
		return nil, fmt.Errorf("routing: starts/ends must have length numVehicles=%d", numVehicles)
	}
	m := &Model{
		solver:            s,
		numNodes:          numNodes,
		numVehicles:       numVehicles,
		nodeToIndex:       make(map[NodeIndex]Index),
		indexToNode:       make(map[Index]NodeIndex),
		dimensions:        make(map[string]*Dimension),
		disjunctionOfNode: make(map[Index][]DisjunctionID),
		vehicleCost:       make(map[int]CostEvaluator),
		homogeneous:       true,
		fixedCost:         make([]int64, numVehicles),
	}
	nextIndex := Index(0)
	for n := 0; n < numNodes; n++ {
		idx := nextIndex
		nextIndex++
		m.nodeToIndex[NodeIndex(n)] = idx
		m.indexToNode[idx] = NodeIndex(n)
	}
	m.starts = make([]Index, numVehicles)
	m.ends = make([]Index, numVehicles)
	for v := 0; v < numVehicles; v++ {
		startIdx := nextIndex
		nextIndex++
		endIdx := nextIndex
		nextIndex++
		m.starts[v] = startIdx
		m.ends[v] = endIdx
		m.indexToNode[startIdx] = starts[v]
		m.indexToNode[endIdx] = ends[v]
	}
	numIndices := int(nextIndex)
	m.nextVars = make([]cpsolver.IntVarExpr, numIndices)
	m.activeVars = make([]cpsolver.IntVarExpr, numIndices)
	m.vehicleVars = make([]cpsolver.IntVarExpr, numIndices)
	for i := 0; i < numIndices; i++ {
		m.nextVars[i] = s.NewIntVar(0, int64(numIndices-1), fmt.Sprintf("next[%d]", i))
		m.activeVars[i] = s.NewBoolVar(fmt.Sprintf("active[%d]", i))
		m.vehicleVars[i] = s.NewIntVar(-1, int64(numVehicles-1), fmt.Sprintf("vehicle[%d]", i))
	}
	// A vehicle's own start/end share its vehicle id; their active
	// variables are not fixed here.
	for v := 0; v < numVehicles; v++ {
		startVar, endVar := m.vehicleVars[m.starts[v]], m.vehicleVars[m.ends[v]]
		if iv, ok := startVar.(interface{ SetValue(int64) error }); ok {
			_ = iv.SetValue(int64(v))
		}
		if iv, ok := endVar.(interface{ SetValue(int64) error }); ok {
			_ = iv.SetValue(int64(v))
		}
	}
	return m, nil
}

// NumNodes returns the number of plain visit nodes.
func (m *Model) NumNodes() int { return m.numNodes }

// NumVehicles returns the number of vehicles.
func (m *Model) NumVehicles() int { return m.numVehicles }

// NumIndices returns the total arena size.
func (m *Model) NumIndices() int { return len(m.nextVars) }

// Start returns vehicle v's start index.
func (m *Model) Start(v int) Index { return m.starts[v] }

// End returns vehicle v's end index.
func (m *Model) End(v int) Index { return m.ends[v] }

// NodeToIndex maps an external node id to its internal index.
func (m *Model) NodeToIndex(n NodeIndex) (Index, bool) {
	idx, ok := m.nodeToIndex[n]
	return idx, ok
}

// IndexToNode maps an internal index back to its external node id.
func (m *Model) IndexToNode(i Index) NodeIndex { return m.indexToNode[i] }

// NextVar returns index i's next-index variable.
func (m *Model) NextVar(i Index) cpsolver.IntVarExpr { return m.nextVars[i] }

// ActiveVar returns index i's active {0,1} variable.
func (m *Model) ActiveVar(i Index) cpsolver.IntVarExpr { return m.activeVars[i] }

// VehicleVar returns index i's vehicle-id variable ({-1}∪[0,numVehicles)).
func (m *Model) VehicleVar(i Index) cpsolver.IntVarExpr { return m.vehicleVars[i] }

// CostVar returns the total-cost variable, valid once the model is closed.
func (m *Model) CostVar() cpsolver.IntVarExpr { return m.costVar }

// Solver returns the underlying cpsolver.Solver.
func (m *Model) Solver() *cpsolver.Solver { return m.solver }

// State returns the model's current lifecycle stage.
func (m *Model) State() State { return m.state }

func (m *Model) requireOpen() error {
	if m.state != Open {
		return ErrModelClosed
	}
	return nil
}

// AddDimension installs one dimension shared by every vehicle (spec §4.4).
func (m *Model) AddDimension(evaluator TransitEvaluator, slackMax, capacity int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	if err := m.requireOpen(); err != nil {
		return nil, err
	}
	caps := make([]int64, m.numVehicles)
	for i := range caps {
		caps[i] = capacity
	}
	return m.addDimension(evaluator, slackMax, caps, fixStartCumulToZero, name)
}

// AddDimensionWithVehicleCapacity installs a dimension with a per-vehicle
// capacity vector (spec §4.4 "per-vehicle capacity variant").
func (m *Model) AddDimensionWithVehicleCapacity(evaluator TransitEvaluator, slackMax int64, capacities []int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	if err := m.requireOpen(); err != nil {
		return nil, err
	}
	if len(capacities) != m.numVehicles {
		return nil, fmt.Errorf("routing: capacities must have length numVehicles=%d", m.numVehicles)
	}
	return m.addDimension(evaluator, slackMax, capacities, fixStartCumulToZero, name)
}

func (m *Model) addDimension(evaluator TransitEvaluator, slackMax int64, capacities []int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	if _, exists := m.dimensions[name]; exists {
		return nil, fmt.Errorf("routing: dimension %q already exists", name)
	}
	d := newDimension(m, evaluator, slackMax, capacities, fixStartCumulToZero, name)
	m.dimensions[name] = d
	return d, nil
}

// Dimension looks up a previously installed dimension by name.
func (m *Model) Dimension(name string) (*Dimension, bool) {
	d, ok := m.dimensions[name]
	return d, ok
}

// DimensionNames returns the names of every installed dimension.
func (m *Model) DimensionNames() []string {
	names := make([]string, 0, len(m.dimensions))
	for name := range m.dimensions {
		names = append(names, name)
	}
	return names
}

// AddDisjunction registers an exclusive-or set of indices with an optional
// penalty; absent penalty (negative) means mandatory (spec §4.4).
func (m *Model) AddDisjunction(indices []Index, penalty int64) (DisjunctionID, error) {
	if err := m.requireOpen(); err != nil {
		return 0, err
	}
	id := DisjunctionID(len(m.disjunctions))
	m.disjunctions = append(m.disjunctions, disjunction{indices: indices, penalty: penalty})
	for _, idx := range indices {
		m.disjunctionOfNode[idx] = append(m.disjunctionOfNode[idx], id)
	}
	return id, nil
}

// Disjunctions returns every registered disjunction's index set and
// penalty (negative for mandatory), in registration order.
func (m *Model) Disjunctions() []struct {
	Indices []Index
	Penalty int64
} {
	out := make([]struct {
		Indices []Index
		Penalty int64
	}, len(m.disjunctions))
	for i, d := range m.disjunctions {
		out[i].Indices = d.indices
		out[i].Penalty = d.penalty
	}
	return out
}

// DisjunctionsOf returns the disjunctions containing index i.
func (m *Model) DisjunctionsOf(i Index) []DisjunctionID { return m.disjunctionOfNode[i] }

// AddPickupAndDelivery registers a pickup-delivery pair (spec GLOSSARY):
// both indices must share a vehicle and respect pickup-before-delivery
// order once active.
func (m *Model) AddPickupAndDelivery(pickup, delivery Index) error {
	if err := m.requireOpen(); err != nil {
		return err
	}
	m.pairs = append(m.pairs, pickupDelivery{pickup: pickup, delivery: delivery})
	return nil
}

// Pairs returns the registered pickup-delivery pairs.
func (m *Model) Pairs() []struct{ Pickup, Delivery Index } {
	out := make([]struct{ Pickup, Delivery Index }, len(m.pairs))
	for i, p := range m.pairs {
		out[i] = struct{ Pickup, Delivery Index }{p.pickup, p.delivery}
	}
	return out
}

// SetCost installs a homogeneous arc-cost evaluator shared by every
// vehicle (spec §4.4).
func (m *Model) SetCost(evaluator CostEvaluator) error {
	if err := m.requireOpen(); err != nil {
		return err
	}
	m.homogeneous = true
	m.costEvaluator = evaluator
	return nil
}

// SetVehicleCost installs a per-vehicle arc-cost evaluator, switching the
// model to non-homogeneous mode (spec §4.4): cost lookups become indexed
// by cost class rather than by a single shared evaluator.
func (m *Model) SetVehicleCost(vehicle int, evaluator CostEvaluator) error {
	if err := m.requireOpen(); err != nil {
		return err
	}
	m.homogeneous = false
	m.vehicleCost[vehicle] = evaluator
	return nil
}

// SetFixedCost sets the cost charged once when vehicle v is used (its
// route is non-empty).
func (m *Model) SetFixedCost(vehicle int, cost int64) { m.fixedCost[vehicle] = cost }

// buildCostClasses assigns cost classes (spec §4.4 "Cost classes"). In
// homogeneous mode every vehicle shares class 0. Otherwise each vehicle
// with a SetVehicleCost evaluator gets a class of its own, in vehicle
// order, even when two vehicles were given the same func; vehicles without
// one get class -1 and use the SetCost evaluator.
func (m *Model) buildCostClasses() {
	m.costClassOf = make([]int, m.numVehicles)
	m.costClassEval = nil
	if m.homogeneous {
		m.costClassEval = []CostEvaluator{m.costEvaluator}
		for v := range m.costClassOf {
			m.costClassOf[v] = 0
		}
	} else {
		// Go funcs are not comparable, so overrides are never grouped:
		// each vehicle with an override gets the next class in vehicle
		// order, and each vehicle without one falls back to the
		// homogeneous evaluator.
		classByOrder := map[int]int{}
		next := 0
		for v := 0; v < m.numVehicles; v++ {
			if _, has := m.vehicleCost[v]; !has {
				continue
			}
			classByOrder[v] = next
			m.costClassEval = append(m.costClassEval, m.vehicleCost[v])
			next++
		}
		for v := 0; v < m.numVehicles; v++ {
			if c, ok := classByOrder[v]; ok {
				m.costClassOf[v] = c
			} else {
				m.costClassOf[v] = -1 // falls back to costEvaluator, class -1
			}
		}
	}
	m.costCache = make([]map[costCacheKey]int64, len(m.nextVars))
}

// CostClass returns vehicle v's cost class index.
func (m *Model) CostClass(v int) int { return m.costClassOf[v] }

// VehicleClass returns the tuple (start, end, cost-class) partitioning
// vehicles for heuristics (spec §4.4 "Vehicle classes").
func (m *Model) VehicleClass(v int) [3]int {
	return [3]int{int(m.starts[v]), int(m.ends[v]), m.costClassOf[v]}
}

// ArcCost returns the cached cost of arc (from,to) under vehicle v's cost
// class, computing and storing it on a cache miss (spec §4.4 "Arc cost
// with cache"). When from is vehicle v's start and to is not v's end (the
// vehicle is actually used), v's fixed cost is charged on this first hop,
// mirroring the source's SetFixedCostOfVehicle folding the fixed cost into
// the cost of the arc leaving the vehicle's start.
func (m *Model) ArcCost(from, to Index, vehicle int) int64 {
	class := m.costClassOf[vehicle]
	if m.costCache[from] == nil {
		m.costCache[from] = make(map[costCacheKey]int64)
	}
	key := costCacheKey{to: to, class: class}
	if v, ok := m.costCache[from][key]; ok {
		return v
	}
	var eval CostEvaluator
	if class >= 0 && class < len(m.costClassEval) {
		eval = m.costClassEval[class]
	} else {
		eval = m.costEvaluator
	}
	cost := eval(from, to)
	if vehicle >= 0 && vehicle < len(m.fixedCost) && from == m.starts[vehicle] && to != m.ends[vehicle] {
		cost += m.fixedCost[vehicle]
	}
	m.costCache[from][key] = cost
	return cost
}

// routeCost sums arc costs along every bound next-link plus the penalty of
// every currently-inactive optional disjunction, reading next/active/
// vehicle state through the supplied accessors so the same logic serves
// both a live model (CurrentCost) and a materialised Assignment (RouteCost).
func (m *Model) routeCost(next, active, vehicleOf func(Index) (int64, bool)) int64 {
	var total int64
	for i := 0; i < len(m.nextVars); i++ {
		idx := Index(i)
		n, ok := next(idx)
		if !ok || Index(n) == idx {
			continue // unbound, or a self-loop: inactive, no arc leaves idx
		}
		vehicle := 0
		if vv, ok := vehicleOf(idx); ok && vv >= 0 {
			vehicle = int(vv)
		}
		total += m.ArcCost(idx, Index(n), vehicle)
	}
	for _, d := range m.disjunctions {
		if d.penalty < 0 {
			continue // mandatory: no penalty escape hatch
		}
		anyActive := false
		for _, idx := range d.indices {
			if v, ok := active(idx); ok && v == 1 {
				anyActive = true
				break
			}
		}
		if !anyActive {
			total += d.penalty
		}
	}
	return total
}

// CurrentCost computes the model's total cost from live bound
// next/active/vehicle-variable state (spec §4.6's objective, read directly
// off the solver rather than a materialised Assignment).
func (m *Model) CurrentCost() int64 {
	return m.routeCost(
		func(idx Index) (int64, bool) { return m.nextVars[idx].Bound() },
		func(idx Index) (int64, bool) { return m.activeVars[idx].Bound() },
		func(idx Index) (int64, bool) { return m.vehicleVars[idx].Bound() },
	)
}

// RouteCost computes the total cost implied by a materialised Assignment,
// the same way CurrentCost does for live solver state.
func (m *Model) RouteCost(a *cpsolver.Assignment) int64 {
	return m.routeCost(
		func(idx Index) (int64, bool) { return a.Value(m.nextVars[idx]) },
		func(idx Index) (int64, bool) { return a.Value(m.activeVars[idx]) },
		func(idx Index) (int64, bool) { return a.Value(m.vehicleVars[idx]) },
	)
}

// CloseModel installs structural constraints and moves Open → Closed.
// Entering Closed is idempotent (spec §4.4).
func (m *Model) CloseModel() error {
	if m.state == Closed || m.state == Solved {
		return nil
	}
	m.buildCostClasses()

	// Remove self-loops from starts/ends: a vehicle's start may only
	// self-loop (route empty) by pointing directly at its own end.
	for v := 0; v < m.numVehicles; v++ {
		start, end := m.starts[v], m.ends[v]
		// next[end] == end always (route sentinel).
		if sv, ok := m.nextVars[end].(interface{ SetValue(int64) error }); ok {
			if err := sv.SetValue(int64(end)); err != nil {
				log.Warningf("routing: end index %d has empty domain after fixing self-loop: %v", end, err)
			}
		}
		// next[start] != start.
		if sv, ok := m.nextVars[start].(interface{ RemoveValue(int64) error }); ok {
			if err := sv.RemoveValue(int64(start)); err != nil {
				log.Warningf("routing: start index %d has empty domain after removing self-loop: %v", start, err)
			}
		}
	}

	// No two non-end indices may share a successor: every node has at most
	// one predecessor, the structural "no-cycle" constraint the source posts
	// as solver_->MakeAllDifferent(nexts_) (spec §4.4). End indices are left
	// out: each end's next is fixed to the end itself, which would otherwise
	// forbid every other index from pointing at that end.
	isEnd := make(map[Index]bool, m.numVehicles)
	for _, end := range m.ends {
		isEnd[end] = true
	}
	nexts := make([]cpsolver.IntVarExpr, 0, len(m.nextVars))
	for i, nv := range m.nextVars {
		if !isEnd[Index(i)] {
			nexts = append(nexts, nv)
		}
	}
	if err := m.solver.AddConstraint(cpsolver.NewAllDifferentConstraint(nexts)); err != nil {
		return fmt.Errorf("routing: posting no-cycle constraint: %w", err)
	}

	m.costVar = m.solver.NewIntVar(0, 1<<48, "routing_cost")
	m.state = Closed
	return nil
}

// String renders a brief summary, matching the terse Stringer texture used
// throughout cpsolver's Constraint implementations.
func (m *Model) String() string {
	return fmt.Sprintf("routing.Model{nodes=%d vehicles=%d indices=%d state=%d}",
		m.numNodes, m.numVehicles, len(m.nextVars), m.state)
}
