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

package localsearch

import "github.com/vrpcore/vrpcore/routing"

// PathCumulFilter walks each touched path forward, maintaining
// cumul = max(cumul_min[next], cumul + transit(node,next)), rejecting when
// cumul exceeds cumul_max[next] (spec §4.5 "PathCumul filter").
type PathCumulFilter struct {
	*BasePathFilter
	model     *routing.Model
	dimension *routing.Dimension
}

// NewPathCumulFilter builds a PathCumulFilter over the named dimension.
func NewPathCumulFilter(m *routing.Model, dimensionName string) (*PathCumulFilter, bool) {
	dim, ok := m.Dimension(dimensionName)
	if !ok {
		return nil, false
	}
	f := &PathCumulFilter{model: m, dimension: dim}
	f.BasePathFilter = NewBasePathFilter(m, f)
	return f, true
}

// OnSynchronizePath is a no-op: PathCumulFilter has no per-path state
// beyond what BasePathFilter already tracks.
func (f *PathCumulFilter) OnSynchronizePath() {}

// AcceptPath walks from start along the post-delta next chain, rejecting
// as soon as a node's forward-propagated cumul would exceed its cumul_max
// (spec §4.5). Reaching an unbound (LNS) next passes through, deferring to
// deeper search.
func (f *PathCumulFilter) AcceptPath(delta Delta, start routing.Index, getNext func(routing.Index) (routing.Index, bool)) bool {
	cumul := f.dimension.CumulMin(start)
	node := start
	for {
		next, ok := getNext(node)
		if !ok {
			return true // LNS pass-through
		}
		if next == node {
			return true // self-loop: end of path
		}
		nextCumul, feasible := f.dimension.FeasibleForward(cumul, node, next)
		if !feasible {
			return false
		}
		cumul = nextCumul
		node = next
	}
}
