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

// PathAcceptor is the filter-specific hook a BasePathFilter drives once
// per touched path (spec §4.5 "Base path filter").
type PathAcceptor interface {
	// AcceptPath is called once per path touched by delta, with a way to
	// read the post-delta successor of any node via GetNext.
	AcceptPath(delta Delta, start routing.Index, getNext func(routing.Index) (routing.Index, bool)) bool
	// OnSynchronizePath resets any filter-specific per-path state.
	OnSynchronizePath()
}

// BasePathFilter is the shared skeleton the source expresses as a class
// hierarchy with virtual AcceptPath; here it is a struct any filter
// composes, per spec §9's "trait / interface with a per-filter associated
// state" note. Its Accept/OnSynchronize methods satisfy Filter and hand the
// per-path check to its PathAcceptor; PathCumulFilter and
// NodePrecedenceFilter embed it and supply that PathAcceptor.
type BasePathFilter struct {
	model      *routing.Model
	pathStart  map[routing.Index]routing.Index // index -> the start of the path it belongs to at OnSynchronize time
	acceptor   PathAcceptor
}

// NewBasePathFilter builds the skeleton over m, driving acceptor's
// per-path hook.
func NewBasePathFilter(m *routing.Model, acceptor PathAcceptor) *BasePathFilter {
	return &BasePathFilter{model: m, pathStart: make(map[routing.Index]routing.Index), acceptor: acceptor}
}

// OnSynchronize records which path-start every index belongs to, by
// traversing next pointers from every vehicle start (spec §4.5).
func (f *BasePathFilter) OnSynchronize() {
	f.pathStart = make(map[routing.Index]routing.Index)
	for v := 0; v < f.model.NumVehicles(); v++ {
		start := f.model.Start(v)
		cur := start
		f.pathStart[cur] = start
		for {
			nextVal, ok := f.model.NextVar(cur).Bound()
			if !ok {
				break
			}
			next := routing.Index(nextVal)
			if next == cur || next == f.model.End(v) {
				break
			}
			f.pathStart[next] = start
			cur = next
		}
	}
	f.acceptor.OnSynchronizePath()
}

// touchedPaths computes the distinct set of path starts touched by delta
// (spec §4.5 "Accept computes the distinct set of touched paths").
func (f *BasePathFilter) touchedPaths(delta Delta) map[routing.Index]bool {
	touched := make(map[routing.Index]bool)
	for idx := range delta.NextAssignment {
		if start, ok := f.pathStart[idx]; ok {
			touched[start] = true
		}
	}
	return touched
}

// getNext returns the post-delta successor of node, or (0,false) when the
// delta contains an unbound (LNS) variable at that node — signalling the
// caller to pass through (spec §4.5 "GetNext ... returns ∅ ... signalling
// LNS").
func (f *BasePathFilter) getNext(delta Delta, node routing.Index) (routing.Index, bool) {
	if el, ok := delta.NextAssignment[node]; ok {
		if el.IsLNS() {
			return 0, false
		}
		v, _ := el.Fixed()
		return v, true
	}
	nextVal, ok := f.model.NextVar(node).Bound()
	if !ok {
		return 0, false
	}
	return routing.Index(nextVal), true
}

// Accept drives AcceptPath once per touched path.
func (f *BasePathFilter) Accept(delta Delta) bool {
	for start := range f.touchedPaths(delta) {
		if !f.acceptor.AcceptPath(delta, start, func(n routing.Index) (routing.Index, bool) { return f.getNext(delta, n) }) {
			return false
		}
	}
	return true
}
