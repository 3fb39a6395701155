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

package routing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrpcore/vrpcore/cpsolver"
)

func newThreeVehicleModel(t *testing.T) *Model {
	t.Helper()
	solver := cpsolver.NewSolver()
	starts := []NodeIndex{100, 101, 102}
	ends := []NodeIndex{100, 101, 102}
	m, err := New(solver, 2, 3, starts, ends)
	require.NoError(t, err, "New")
	require.NoError(t, m.SetCost(func(from, to Index) int64 { return 0 }), "SetCost")
	require.NoError(t, m.CloseModel(), "CloseModel")
	return m
}

// TestAssignmentRoutesRoundTrip checks the round-trip law from spec §8:
// AssignmentToRoutes(RoutesToAssignment(R)) == R for a route collection
// with both an occupied and empty vehicles.
func TestAssignmentRoutesRoundTrip(t *testing.T) {
	m := newThreeVehicleModel(t)
	routes := RouteCollection{nil, {0, 1}, nil}

	a, err := m.RoutesToAssignment(routes, false, true)
	require.NoError(t, err, "RoutesToAssignment")
	got, err := m.AssignmentToRoutes(a)
	require.NoError(t, err, "AssignmentToRoutes")

	require.Equal(t, RouteCollection{nil, {0, 1}, nil}, got, "round trip mismatch")
}

// TestCompactAssignmentMovesUsedVehiclesToPrefix exercises the compacted
// assignment invariant from spec §8: used vehicles occupy indices [0,k)
// after compaction. Vehicle 1 alone serves both customers here; after
// compaction it should have moved to slot 0.
func TestCompactAssignmentMovesUsedVehiclesToPrefix(t *testing.T) {
	m := newThreeVehicleModel(t)
	routes := RouteCollection{nil, {0, 1}, nil}
	a, err := m.RoutesToAssignment(routes, false, true)
	require.NoError(t, err, "RoutesToAssignment")

	compacted, err := m.CompactAssignment(a)
	require.NoError(t, err, "CompactAssignment")
	got, err := m.AssignmentToRoutes(compacted)
	require.NoError(t, err, "AssignmentToRoutes")

	require.Equal(t, RouteCollection{{0, 1}, nil, nil}, got, "expected used vehicle compacted to slot 0")
}

// TestCompactAssignmentEmptyModelIsNoOp checks the boundary behavior from
// spec §8: an assignment with no used vehicles compacts to itself.
func TestCompactAssignmentEmptyModelIsNoOp(t *testing.T) {
	m := newThreeVehicleModel(t)
	routes := RouteCollection{nil, nil, nil}
	a, err := m.RoutesToAssignment(routes, false, true)
	require.NoError(t, err, "RoutesToAssignment")

	compacted, err := m.CompactAssignment(a)
	require.NoError(t, err, "CompactAssignment")
	got, err := m.AssignmentToRoutes(compacted)
	require.NoError(t, err, "AssignmentToRoutes")

	require.Equal(t, RouteCollection{nil, nil, nil}, got, "expected no-op compaction")
}
