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

import "time"

// Limit is a wall-time/solution/branch bound a search phase polls at its
// suspension points (spec §5 "Suspension points", §4.6 "Limits").
type Limit struct {
	deadline       time.Time
	hasDeadline    bool
	solutionCount  int
	solutionLimit  int
	branchCount    int64
}

// NewLimit builds a Limit from a millisecond time budget (0 means
// unbounded) and a solution-count budget (0 means unbounded).
func NewLimit(timeLimitMs int64, solutionLimit int) *Limit {
	l := &Limit{solutionLimit: solutionLimit}
	if timeLimitMs > 0 {
		l.deadline = time.Now().Add(time.Duration(timeLimitMs) * time.Millisecond)
		l.hasDeadline = true
	}
	return l
}

// Crossed reports whether the limit has fired: past its deadline, or past
// its solution count.
func (l *Limit) Crossed() bool {
	if l.hasDeadline && time.Now().After(l.deadline) {
		return true
	}
	if l.solutionLimit > 0 && l.solutionCount >= l.solutionLimit {
		return true
	}
	return false
}

// RecordSolution increments the limit's solution counter.
func (l *Limit) RecordSolution() { l.solutionCount++ }

// RecordBranch increments the limit's branch counter, used only for
// diagnostics (search-tree size reporting).
func (l *Limit) RecordBranch() { l.branchCount++ }

// UpdateTimeLimit rebuilds the deadline in place so a running search
// observes the new bound immediately (spec §4.6 "update_time_limit
// rebuilds them in place").
func (l *Limit) UpdateTimeLimit(timeLimitMs int64) {
	if timeLimitMs <= 0 {
		l.hasDeadline = false
		return
	}
	l.deadline = time.Now().Add(time.Duration(timeLimitMs) * time.Millisecond)
	l.hasDeadline = true
}

// Limits bundles the three independent bounds named in spec §4.6: global,
// local-search, and LNS.
type Limits struct {
	Global      *Limit
	LocalSearch *Limit
	LNS         *Limit
}

// NewLimits builds the three limits from a Config.
func NewLimits(cfg Config) *Limits {
	return &Limits{
		Global:      NewLimit(cfg.TimeLimitMs, cfg.SolutionLimit),
		LocalSearch: NewLimit(cfg.TimeLimitMs, 0),
		LNS:         NewLimit(cfg.LNSTimeLimitMs, 0),
	}
}

// UpdateTimeLimit rebuilds all three limits' deadlines in place.
func (l *Limits) UpdateTimeLimit(globalMs, lnsMs int64) {
	l.Global.UpdateTimeLimit(globalMs)
	l.LocalSearch.UpdateTimeLimit(globalMs)
	l.LNS.UpdateTimeLimit(lnsMs)
}

// AnyCrossed reports whether any of the three limits has fired.
func (l *Limits) AnyCrossed() bool {
	return l.Global.Crossed() || l.LocalSearch.Crossed() || l.LNS.Crossed()
}
