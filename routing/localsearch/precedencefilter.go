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

// NodePrecedenceFilter maintains pair_first[node] and pair_second[node];
// for each touched path it walks with a visited set, rejecting when it
// sees a second whose first has not been visited, or a first whose second
// has already been visited on this path (spec §4.5 "Node-precedence
// filter").
type NodePrecedenceFilter struct {
	*BasePathFilter
	model       *routing.Model
	pairFirst   map[routing.Index]routing.Index // second -> first
	pairSecond  map[routing.Index]routing.Index // first -> second
}

// NewNodePrecedenceFilter builds the filter from the model's registered
// pickup-delivery pairs.
func NewNodePrecedenceFilter(m *routing.Model) *NodePrecedenceFilter {
	f := &NodePrecedenceFilter{
		model:      m,
		pairFirst:  make(map[routing.Index]routing.Index),
		pairSecond: make(map[routing.Index]routing.Index),
	}
	for _, p := range m.Pairs() {
		f.pairSecond[p.Pickup] = p.Delivery
		f.pairFirst[p.Delivery] = p.Pickup
	}
	f.BasePathFilter = NewBasePathFilter(m, f)
	return f
}

// OnSynchronizePath is a no-op: the pair maps are fixed at construction.
func (f *NodePrecedenceFilter) OnSynchronizePath() {}

// AcceptPath walks start's post-delta chain with a per-call visited set,
// enforcing pickup-before-delivery ordering (spec §4.5, §8 "∀ pair (p,d)
// with both active on the same vehicle: index_of(p) < index_of(d)").
func (f *NodePrecedenceFilter) AcceptPath(delta Delta, start routing.Index, getNext func(routing.Index) (routing.Index, bool)) bool {
	visited := make(map[routing.Index]bool)
	node := start
	visited[node] = true
	for {
		next, ok := getNext(node)
		if !ok {
			return true // LNS pass-through
		}
		if next == node {
			return true
		}
		if first, isSecond := f.pairFirst[next]; isSecond && !visited[first] {
			return false
		}
		if second, isFirst := f.pairSecond[next]; isFirst && visited[second] {
			return false
		}
		visited[next] = true
		node = next
	}
}
