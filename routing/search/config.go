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

// Package search implements C6: search orchestration over a routing.Model
// — first-solution heuristics, local-search neighborhoods, meta-heuristics
// and the three independent search limits. Every configuration knob is a
// field of Config, threaded explicitly through constructors, per spec.md
// §9's "Global mutable state" note: the source's process-wide flags become
// values here, never package-level mutable state.
package search

// FirstSolutionStrategy names one of the recognised first-solution
// heuristics (spec §4.6).
type FirstSolutionStrategy string

const (
	Default            FirstSolutionStrategy = "default"
	GlobalCheapestArc  FirstSolutionStrategy = "global_cheapest_arc"
	LocalCheapestArc   FirstSolutionStrategy = "local_cheapest_arc"
	PathCheapestArc    FirstSolutionStrategy = "path_cheapest_arc"
	EvaluatorStrategy  FirstSolutionStrategy = "evaluator_strategy"
	AllUnperformed     FirstSolutionStrategy = "all_unperformed"
	BestInsertion      FirstSolutionStrategy = "best_insertion"
	Savings            FirstSolutionStrategy = "savings"
	Sweep              FirstSolutionStrategy = "sweep"
)

// Config collects every C6-recognised option (spec §6 "Configuration").
type Config struct {
	// Per-neighborhood toggles.
	NoLNS, NoRelocate, NoExchange, NoCross, No2Opt, NoOrOpt bool
	NoMakeActive, NoLKH, NoTSP, NoTSPLNS                    bool
	UseExtendedSwapActive                                   bool

	// Search bounds.
	SolutionLimit  int
	TimeLimitMs    int64
	LNSTimeLimitMs int64

	// Meta-heuristic switches; precedence tabu > SA > GLS > default (spec
	// §4.6, §6).
	GuidedLocalSearch       bool
	GuidedLocalSearchLambda float64
	SimulatedAnnealing      bool
	TabuSearch              bool

	// DFS replaces local search with a pure depth-first first-solution
	// run.
	DFS bool

	FirstSolution         FirstSolutionStrategy
	UseFirstSolutionDive  bool
	OptimizationStep      int64

	UseObjectiveFilter          bool
	UsePathCumulFilter          bool
	UsePickupAndDeliveryFilter  bool
	UseDisjunctionFilter        bool

	SavingsRouteShapeParameter float64 // λ
	SavingsFilterNeighbors     int
	SavingsFilterRadius        int64
	SweepSectors               int

	UseLightPropagation bool

	CacheCallbacks bool
	MaxCacheSize   int

	UseHomogeneousCosts bool
}

// DefaultConfig returns the configuration used when the caller supplies
// none: PathCheapestArc first solution, every neighborhood enabled, no
// meta-heuristic, a generous default λ for Savings and GLS.
func DefaultConfig() Config {
	return Config{
		FirstSolution:              PathCheapestArc,
		SolutionLimit:              0,
		TimeLimitMs:                0,
		LNSTimeLimitMs:             0,
		GuidedLocalSearchLambda:    0.1,
		SavingsRouteShapeParameter: 1.0,
		SavingsFilterNeighbors:     0,
		SavingsFilterRadius:        -1,
		SweepSectors:               1,
		UseObjectiveFilter:         true,
		UsePathCumulFilter:         true,
		UsePickupAndDeliveryFilter: true,
		UseDisjunctionFilter:       true,
	}
}

// activeMetaHeuristic resolves the tabu > SA > GLS > default precedence
// (spec §4.6, §6).
func (c Config) activeMetaHeuristic() string {
	switch {
	case c.TabuSearch:
		return "tabu"
	case c.SimulatedAnnealing:
		return "simulated_annealing"
	case c.GuidedLocalSearch:
		return "guided_local_search"
	default:
		return "greedy_descent"
	}
}
