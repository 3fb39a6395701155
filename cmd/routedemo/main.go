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

// The routedemo command builds a small single-vehicle routing model over a
// handful of nodes, solves it with the Savings first-solution strategy
// followed by local search, and prints the resulting route.
package main

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/routing"
	"github.com/vrpcore/vrpcore/routing/search"
)

// distances is a small symmetric distance matrix indexed by NodeIndex,
// node 0 being the depot.
var distances = [][]int64{
	{0, 9, 8, 4},
	{9, 0, 3, 7},
	{8, 3, 0, 6},
	{4, 7, 6, 0},
}

func routeDemo() error {
	solver := cpsolver.NewSolver()
	numNodes := 4
	starts := []routing.NodeIndex{0}
	ends := []routing.NodeIndex{0}

	model, err := routing.New(solver, numNodes, 1, starts, ends)
	if err != nil {
		return fmt.Errorf("failed to build routing model: %w", err)
	}

	if err := model.SetCost(func(from, to routing.Index) int64 {
		return distances[model.IndexToNode(from)][model.IndexToNode(to)]
	}); err != nil {
		return fmt.Errorf("failed to set cost evaluator: %w", err)
	}

	if err := model.CloseModel(); err != nil {
		return fmt.Errorf("failed to close routing model: %w", err)
	}

	cfg := search.DefaultConfig()
	cfg.FirstSolution = search.Savings

	assignment, status, err := search.Solve(model, cfg)
	if err != nil {
		return fmt.Errorf("failed to solve routing model: %w", err)
	}
	fmt.Printf("Status: %v\n", status)

	routes, err := model.AssignmentToRoutes(assignment)
	if err != nil {
		return fmt.Errorf("failed to reconstruct routes: %w", err)
	}
	for v, route := range routes {
		fmt.Printf("Vehicle %d: depot -> %v -> depot\n", v, route)
	}
	return nil
}

func main() {
	if err := routeDemo(); err != nil {
		log.Exitf("routeDemo returned with error: %v", err)
	}
}
