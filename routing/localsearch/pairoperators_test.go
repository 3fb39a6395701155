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

// TestPairRelocateOnSamePathAsPreviousBaseAsymmetry covers the intentional
// asymmetry preserved from the source: only base index 2 is required to
// share a path with the previous base node. The asymmetry is deliberate
// (spec §9) but worth pinning down with a direct test.
func TestPairRelocateOnSamePathAsPreviousBaseAsymmetry(t *testing.T) {
	op := NewPairRelocateOperator(nil)
	if !op.OnSamePathAsPreviousBase(2) {
		t.Error("expected OnSamePathAsPreviousBase(2) to be true")
	}
	if op.OnSamePathAsPreviousBase(1) {
		t.Error("expected OnSamePathAsPreviousBase(1) to be false")
	}
	if op.OnSamePathAsPreviousBase(0) {
		t.Error("expected OnSamePathAsPreviousBase(0) to be false")
	}
}

func buildPairModel(t *testing.T) (*routing.Model, routing.Index, routing.Index) {
	t.Helper()
	solver := cpsolver.NewSolver()
	m, err := routing.New(solver, 2, 1, []routing.NodeIndex{100}, []routing.NodeIndex{100})
	if err != nil {
		t.Fatalf("routing.New: %v", err)
	}
	pickupIdx, _ := m.NodeToIndex(0)
	deliveryIdx, _ := m.NodeToIndex(1)
	if err := m.AddPickupAndDelivery(pickupIdx, deliveryIdx); err != nil {
		t.Fatalf("AddPickupAndDelivery: %v", err)
	}
	if err := m.SetCost(func(from, to routing.Index) int64 { return 0 }); err != nil {
		t.Fatalf("SetCost: %v", err)
	}
	if err := m.CloseModel(); err != nil {
		t.Fatalf("CloseModel: %v", err)
	}
	start := m.Start(0)
	end := m.End(0)
	if iv, ok := m.NextVar(start).(interface{ SetValue(int64) error }); ok {
		if err := iv.SetValue(int64(end)); err != nil {
			t.Fatalf("SetValue: %v", err)
		}
	} else {
		t.Fatal("NextVar(start) does not support SetValue")
	}
	return m, pickupIdx, deliveryIdx
}

// TestMakePairActiveOperatorInsertsDeliveryFirst covers the intentional
// second-node-first insertion order (spec §9): the operator inserts the
// delivery after the base first and then the pickup between the base and
// the delivery, so the pickup precedes the delivery on the finished route.
func TestMakePairActiveOperatorInsertsDeliveryFirst(t *testing.T) {
	m, pickupIdx, deliveryIdx := buildPairModel(t)
	op := NewMakePairActiveOperator(m)

	moves := op.Candidates()
	if len(moves) != 1 {
		t.Fatalf("expected exactly 1 candidate move from the vehicle start, got %d", len(moves))
	}
	move := moves[0]
	if move.Pickup != pickupIdx || move.Delivery != deliveryIdx {
		t.Fatalf("unexpected pair on move: pickup=%v delivery=%v", move.Pickup, move.Delivery)
	}
	if move.InsertsFirst != move.Delivery {
		t.Fatalf("expected InsertsFirst to be the delivery index, got %v (delivery=%v)", move.InsertsFirst, move.Delivery)
	}

	start := m.Start(0)
	baseNext, ok := move.Delta.NextAssignment[start]
	if !ok {
		t.Fatal("expected the base index to have a delta entry")
	}
	fixedTo, isFixed := baseNext.Fixed()
	if !isFixed || fixedTo != pickupIdx {
		t.Fatalf("expected the base's next to point at the pickup, got %v (fixed=%v)", fixedTo, isFixed)
	}
}
