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

	"github.com/vrpcore/vrpcore/routing"
)

// TestSolveDFSReturnsSuccessWithoutLocalSearch covers cfg.DFS's early
// return: the first solution is the final result, and that is Success, not
// a timeout, even though local search never ran.
func TestSolveDFSReturnsSuccessWithoutLocalSearch(t *testing.T) {
	m := buildSavingsScenarioModel(t)
	cfg := DefaultConfig()
	cfg.FirstSolution = Savings
	cfg.DFS = true

	_, status, err := Solve(m, cfg)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if status != routing.Success {
		t.Fatalf("expected Success, got %v", status)
	}
}

// TestSolveReturnsFailTimeoutWhenLimitCrossedBeforeLocalSearch covers spec
// §4.4's "solve(initial?) returns a distinguishable ROUTING_FAIL_TIMEOUT":
// a solution limit of 1 is crossed the instant the first solution is
// recorded, before local search gets a single cycle, so the top-level
// Solve entry point must surface FailTimeout rather than silently
// collapsing to Success as if local search had simply been skipped.
func TestSolveReturnsFailTimeoutWhenLimitCrossedBeforeLocalSearch(t *testing.T) {
	m := buildSavingsScenarioModel(t)
	cfg := DefaultConfig()
	cfg.FirstSolution = Savings
	cfg.SolutionLimit = 1

	_, status, err := Solve(m, cfg)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if status != routing.FailTimeout {
		t.Fatalf("expected FailTimeout, got %v", status)
	}
}
