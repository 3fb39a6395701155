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

// MakeActiveOperator inserts a single inactive plain node — one that is not
// half of a pickup-delivery pair — immediately after a currently-active
// index or a vehicle start (spec §4.5 "MakeActive"). Pair members are left
// to MakePairActiveOperator, which must insert both ends together.
type MakeActiveOperator struct {
	model *routing.Model
}

// NewMakeActiveOperator builds the operator over m.
func NewMakeActiveOperator(m *routing.Model) *MakeActiveOperator {
	return &MakeActiveOperator{model: m}
}

// Candidates enumerates, for every inactive unpaired node and every
// candidate base index, the move that inserts node immediately after base.
func (op *MakeActiveOperator) Candidates() []Move {
	var moves []Move
	paired := op.pairedIndices()
	for i := 0; i < op.model.NumIndices(); i++ {
		node := routing.Index(i)
		if op.isActive(node) || paired[node] {
			continue
		}
		for base := 0; base < op.model.NumIndices(); base++ {
			idx := routing.Index(base)
			if idx == node || !op.isBaseCandidate(idx) {
				continue
			}
			oldNext, ok := op.model.NextVar(idx).Bound()
			if !ok {
				continue
			}
			delta := Delta{NextAssignment: map[routing.Index]DeltaElement{
				idx:  FixedNext(node),
				node: FixedNext(routing.Index(oldNext)),
			}}
			delta.NewObjective = MoveObjective(op.model, delta)
			moves = append(moves, Move{Delta: delta, InsertsFirst: node})
		}
	}
	return moves
}

func (op *MakeActiveOperator) pairedIndices() map[routing.Index]bool {
	paired := make(map[routing.Index]bool)
	for _, p := range op.model.Pairs() {
		paired[p.Pickup] = true
		paired[p.Delivery] = true
	}
	return paired
}

func (op *MakeActiveOperator) isActive(idx routing.Index) bool {
	v, ok := op.model.ActiveVar(idx).Bound()
	return ok && v == 1
}

func (op *MakeActiveOperator) isBaseCandidate(idx routing.Index) bool {
	for v := 0; v < op.model.NumVehicles(); v++ {
		if op.model.Start(v) == idx {
			return true
		}
	}
	return op.isActive(idx)
}
