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

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/flatzinc"
)

// TestDispatchLinearEqPropagatesAllVars covers a fixed-point of the C1-C3
// pipeline without presolve: x+y+z==6 with x,y in [1,3] fixed to 1 and 2
// should propagate z to exactly 3.
func TestDispatchLinearEqPropagatesAllVars(t *testing.T) {
	m := flatzinc.NewModel()
	x, err := m.NewIntVar("x", cpsolver.NewSingleDomain(1), false)
	require.NoError(t, err, "NewIntVar(x)")
	y, err := m.NewIntVar("y", cpsolver.NewSingleDomain(2), false)
	require.NoError(t, err, "NewIntVar(y)")
	z, err := m.NewIntVar("z", cpsolver.NewDomain(1, 3), false)
	require.NoError(t, err, "NewIntVar(z)")

	_, err = m.AddConstraint("int_lin_eq", []flatzinc.Argument{
		flatzinc.IntArrayArg([]int64{1, 1, 1}),
		flatzinc.VarArrayArg([]flatzinc.VarID{x.ID, y.ID, z.ID}),
		flatzinc.IntArg(6),
	})
	require.NoError(t, err, "AddConstraint")
	m.Close()

	s := cpsolver.NewSolver()
	d := New(m, s)
	require.NoError(t, d.Run(), "Run")
	require.NoError(t, s.Propagate(), "Propagate")
	require.False(t, s.Failed(), "expected propagation to succeed")

	zv, ok := d.Var(z.ID)
	require.True(t, ok, "expected z to have a backing cpsolver variable")
	val, bound := zv.Bound()
	require.True(t, bound, "expected z to be bound")
	require.Equal(t, int64(3), val, "expected z to propagate to 3")
}

// TestDispatchUnsupportedConstraintErrors covers spec §4.3's contract that
// dispatching an unknown tag is a fatal, distinguishable error.
func TestDispatchUnsupportedConstraintErrors(t *testing.T) {
	m := flatzinc.NewModel()
	x, err := m.NewIntVar("x", cpsolver.NewDomain(0, 5), false)
	require.NoError(t, err, "NewIntVar(x)")
	_, err = m.AddConstraint("count", []flatzinc.Argument{flatzinc.VarArg(x.ID)})
	require.NoError(t, err, "AddConstraint")
	m.Close()

	s := cpsolver.NewSolver()
	d := New(m, s)
	err = d.Run()
	require.Error(t, err, "expected Run to fail on an unsupported tag")

	var unsupported *flatzinc.UnsupportedConstraintError
	require.ErrorAs(t, err, &unsupported, "expected an UnsupportedConstraintError in the chain")
}
