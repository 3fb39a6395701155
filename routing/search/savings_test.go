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
	"testing"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/routing"
)

const savingsDepot = routing.NodeIndex(99)

// savingsScenarioDistance mirrors the concrete Savings scenario: a depot
// plus three customers 0, 1, 2 with d(depot,*)=10 and d(0,1)=d(1,2)=1,
// d(0,2)=3. The optimal single-vehicle tour depot->0->1->2->depot costs
// 10+1+1+10 = 22.
func savingsScenarioDistance(a, b routing.NodeIndex) int64 {
	if a == b {
		return 0
	}
	if a == savingsDepot || b == savingsDepot {
		return 10
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case lo == 0 && hi == 1:
		return 1
	case lo == 1 && hi == 2:
		return 1
	case lo == 0 && hi == 2:
		return 3
	}
	return 1000
}

func buildSavingsScenarioModel(t *testing.T) *routing.Model {
	t.Helper()
	solver := cpsolver.NewSolver()
	m, err := routing.New(solver, 3, 1, []routing.NodeIndex{savingsDepot}, []routing.NodeIndex{savingsDepot})
	if err != nil {
		t.Fatalf("routing.New: %v", err)
	}
	if err := m.SetCost(func(from, to routing.Index) int64 {
		return savingsScenarioDistance(m.IndexToNode(from), m.IndexToNode(to))
	}); err != nil {
		t.Fatalf("SetCost: %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel: %v", err)
	}
	return m
}

// TestSavingsStrategySingleVehicleCost22 exercises the spec's concrete
// Savings scenario: the Clarke-Wright merge order should chain all three
// customers into a single route of total cost 22.
func TestSavingsStrategySingleVehicleCost22(t *testing.T) {
	m := buildSavingsScenarioModel(t)
	cfg := DefaultConfig()
	cfg.FirstSolution = Savings

	strategy := BuildStrategy(cfg)
	assignment, err := strategy(m, nil)
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	if assignment == nil {
		t.Fatal("strategy returned a nil assignment")
	}

	routes, err := m.AssignmentToRoutes(assignment)
	if err != nil {
		t.Fatalf("AssignmentToRoutes: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("expected 1 vehicle route, got %d", len(routes))
	}
	route := routes[0]
	if len(route) != 3 {
		t.Fatalf("expected all 3 customers on the single route, got %v", route)
	}

	cost := savingsScenarioDistance(savingsDepot, route[0])
	for i := 1; i < len(route); i++ {
		cost += savingsScenarioDistance(route[i-1], route[i])
	}
	cost += savingsScenarioDistance(route[len(route)-1], savingsDepot)

	if cost != 22 {
		t.Fatalf("expected total route cost 22, got %d (route %v)", cost, route)
	}
}
