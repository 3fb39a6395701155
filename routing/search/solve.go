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
)

// Solve runs the full C6 pipeline over m: builds the first-solution
// strategy named by cfg.FirstSolution, then — unless cfg.DFS opts out of
// local search entirely — improves it with RunLocalSearch under the
// configured meta-heuristic and filter chain, bounded by three
// independent limits (spec §4.6).
func Solve(m *routing.Model, cfg Config) (*cpsolver.Assignment, routing.Status, error) {
	limits := NewLimits(cfg)
	strategy := BuildStrategy(cfg)

	initial, err := strategy(m, nil)
	if err != nil {
		log.Warningf("search: first-solution strategy %q failed: %v", cfg.FirstSolution, err)
		return nil, routing.Fail, err
	}
	limits.Global.RecordSolution()

	if cfg.DFS {
		return initial, routing.Success, nil
	}
	if limits.AnyCrossed() {
		// The global/solution limit already fired before local search got a
		// single cycle: the configured search never ran, distinguishable
		// from the ordinary "local search improved what it could before its
		// own limit fired" case below (spec §4.4 "ROUTING_FAIL_TIMEOUT").
		log.Warningf("search: limit crossed before local search started")
		return initial, routing.FailTimeout, nil
	}

	improved, err := RunLocalSearch(m, cfg, limits, initial)
	if err != nil {
		if err == routing.ErrTimeout {
			log.Warningf("search: local search timed out: %v", err)
			return initial, routing.FailTimeout, nil
		}
		log.Warningf("search: local search failed, returning first solution: %v", err)
		return initial, routing.Fail, err
	}
	return improved, routing.Success, nil
}
