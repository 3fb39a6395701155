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

import (
	"testing"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/routing"
)

func setActive(t *testing.T, m *routing.Model, idx routing.Index, active int64) {
	t.Helper()
	iv, ok := m.ActiveVar(idx).(interface{ SetValue(int64) error })
	if !ok {
		t.Fatal("ActiveVar does not support SetValue")
	}
	if err := iv.SetValue(active); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
}

// TestDisjunctionFilterRejectsMandatoryAllInactive covers spec §8's boundary
// behavior: a mandatory (negative-penalty) disjunction going fully inactive
// is rejected by the filter.
func TestDisjunctionFilterRejectsMandatoryAllInactive(t *testing.T) {
	solver := cpsolver.NewSolver()
	m, err := routing.New(solver, 2, 1, []routing.NodeIndex{100}, []routing.NodeIndex{100})
	if err != nil {
		t.Fatalf("routing.New: %v", err)
	}
	mandatory, _ := m.NodeToIndex(0)
	optional, _ := m.NodeToIndex(1)
	if _, err := m.AddDisjunction([]routing.Index{mandatory}, -1); err != nil {
		t.Fatalf("AddDisjunction(mandatory): %v", err)
	}
	if _, err := m.AddDisjunction([]routing.Index{optional}, 5); err != nil {
		t.Fatalf("AddDisjunction(optional): %v", err)
	}
	if err := m.SetCost(func(from, to routing.Index) int64 { return 0 }); err != nil {
		t.Fatalf("SetCost: %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel: %v", err)
	}
	setActive(t, m, mandatory, 1)
	setActive(t, m, optional, 1)

	filter := NewDisjunctionFilter(m)

	rejected := filter.Accept(Delta{NextAssignment: map[routing.Index]DeltaElement{
		mandatory: FixedNext(mandatory), // self-loop: deactivates the mandatory node
	}})
	if rejected {
		t.Error("expected the filter to reject a mandatory disjunction going fully inactive")
	}

	accepted := filter.Accept(Delta{NextAssignment: map[routing.Index]DeltaElement{
		optional: FixedNext(optional), // self-loop: deactivates the optional node
	}})
	if !accepted {
		t.Error("expected the filter to accept an optional disjunction going fully inactive")
	}
}

// TestDisjunctionFilterRejectsTwoActiveMembers covers the "at most one
// active member per disjunction" invariant (spec §4.5), independent of
// mandatory/optional status.
func TestDisjunctionFilterRejectsTwoActiveMembers(t *testing.T) {
	solver := cpsolver.NewSolver()
	m, err := routing.New(solver, 2, 1, []routing.NodeIndex{100}, []routing.NodeIndex{100})
	if err != nil {
		t.Fatalf("routing.New: %v", err)
	}
	a, _ := m.NodeToIndex(0)
	b, _ := m.NodeToIndex(1)
	if _, err := m.AddDisjunction([]routing.Index{a, b}, 5); err != nil {
		t.Fatalf("AddDisjunction: %v", err)
	}
	if err := m.SetCost(func(from, to routing.Index) int64 { return 0 }); err != nil {
		t.Fatalf("SetCost: %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel: %v", err)
	}
	setActive(t, m, a, 1)
	setActive(t, m, b, 0)

	filter := NewDisjunctionFilter(m)
	accepted := filter.Accept(Delta{NextAssignment: map[routing.Index]DeltaElement{
		b: FixedNext(a), // b's next now points off itself: becomes active
	}})
	if accepted {
		t.Error("expected the filter to reject a second active member of the same disjunction")
	}
}
