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

package presolve

import (
	"testing"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/flatzinc"
)

// TestPresolveIntEqAliasesVariables covers spec §8's alias-elimination
// scenario: int_eq(x,y) between two free variables should merge them into
// one union-find class and mark the constraint trivially true rather than
// dispatching it.
func TestPresolveIntEqAliasesVariables(t *testing.T) {
	m := flatzinc.NewModel()
	x, err := m.NewIntVar("x", cpsolver.NewDomain(0, 10), false)
	if err != nil {
		t.Fatalf("NewIntVar(x): %v", err)
	}
	y, err := m.NewIntVar("y", cpsolver.NewDomain(0, 10), false)
	if err != nil {
		t.Fatalf("NewIntVar(y): %v", err)
	}
	c, err := m.AddConstraint("int_eq", []flatzinc.Argument{flatzinc.VarArg(x.ID), flatzinc.VarArg(y.ID)})
	if err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	p := New(m)
	if changed := p.Run(); !changed {
		t.Fatal("expected the int_eq rule to fire")
	}
	if !c.TriviallyTrue {
		t.Error("expected the int_eq constraint to be marked trivially true")
	}

	rx := m.Resolve(x.ID)
	ry := m.Resolve(y.ID)
	if rx.ID != ry.ID {
		t.Errorf("expected x and y to resolve to the same representative, got %d and %d", rx.ID, ry.ID)
	}

	live := m.LiveConstraints()
	if len(live) != 0 {
		t.Errorf("expected no live constraints after aliasing, got %d", len(live))
	}
}

// TestPresolveIntEqAliasResolutionIsIdempotent covers the invariant that
// resolving an alias chain twice in a row returns the same id.
func TestPresolveIntEqAliasResolutionIsIdempotent(t *testing.T) {
	m := flatzinc.NewModel()
	x, _ := m.NewIntVar("x", cpsolver.NewDomain(0, 10), false)
	y, _ := m.NewIntVar("y", cpsolver.NewDomain(0, 10), false)
	if _, err := m.AddConstraint("int_eq", []flatzinc.Argument{flatzinc.VarArg(x.ID), flatzinc.VarArg(y.ID)}); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	p := New(m)
	p.Run()

	first := m.Resolve(y.ID)
	second := m.Resolve(first.ID)
	if first.ID != second.ID {
		t.Errorf("expected idempotent resolution, got %d then %d", first.ID, second.ID)
	}
}

// TestPresolveArrayIntElementRewritesToIntEq covers spec §8's element-
// rewrite scenario: array_int_element with a fixed index collapses to
// int_eq(target, values[index]).
func TestPresolveArrayIntElementRewritesToIntEq(t *testing.T) {
	m := flatzinc.NewModel()
	idx, err := m.NewIntVar("idx", cpsolver.NewSingleDomain(2), false)
	if err != nil {
		t.Fatalf("NewIntVar(idx): %v", err)
	}
	target, err := m.NewIntVar("target", cpsolver.NewDomain(0, 100), false)
	if err != nil {
		t.Fatalf("NewIntVar(target): %v", err)
	}
	c, err := m.AddConstraint("array_int_element", []flatzinc.Argument{
		flatzinc.VarArg(idx.ID),
		flatzinc.IntArrayArg([]int64{10, 20, 30}),
		flatzinc.VarArg(target.ID),
	})
	if err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	p := New(m)
	if changed := p.Run(); !changed {
		t.Fatal("expected the array_int_element rule to fire")
	}

	if c.Tag != "int_eq" {
		t.Fatalf("expected the constraint to be rewritten to int_eq, got %q", c.Tag)
	}
	if len(c.Args) != 2 {
		t.Fatalf("expected 2 args after rewrite, got %d", len(c.Args))
	}
	gotTarget, err := c.Args[0].AsVar()
	if err != nil {
		t.Fatalf("Args[0].AsVar: %v", err)
	}
	if m.Resolve(gotTarget).ID != m.Resolve(target.ID).ID {
		t.Errorf("expected the rewritten constraint's var arg to be target, got %d", gotTarget)
	}
	gotValue, err := c.Args[1].AsInt()
	if err != nil {
		t.Fatalf("Args[1].AsInt: %v", err)
	}
	if gotValue != 20 {
		t.Errorf("expected values[index-1]=20 (1-based index 2), got %d", gotValue)
	}
}

// TestPresolveBoolEqReifAliasesOnTrueOutput covers the wantEqual branch:
// bool_eq_reif(a,b,r) with r fixed to 1 asserts a==b, so a and b are merged
// via the union-find and the reification is dropped.
func TestPresolveBoolEqReifAliasesOnTrueOutput(t *testing.T) {
	m := flatzinc.NewModel()
	a, _ := m.NewBoolVar("a", false)
	b, _ := m.NewBoolVar("b", false)
	r, err := m.NewIntVar("r", cpsolver.NewSingleDomain(1), false)
	if err != nil {
		t.Fatalf("NewIntVar(r): %v", err)
	}
	c, err := m.AddConstraint("bool_eq_reif", []flatzinc.Argument{
		flatzinc.VarArg(a.ID), flatzinc.VarArg(b.ID), flatzinc.VarArg(r.ID),
	})
	if err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	p := New(m)
	if changed := p.Run(); !changed {
		t.Fatal("expected the bool_eq_reif rule to fire")
	}
	if !c.TriviallyTrue {
		t.Error("expected the bool_eq_reif constraint to be marked trivially true")
	}
	if m.Resolve(a.ID).ID != m.Resolve(b.ID).ID {
		t.Errorf("expected a and b to resolve to the same representative")
	}
}

// TestPresolveBoolNeReifRewritesToIntNe covers the !wantEqual branch: a
// bool_ne_reif(a,b,r) with r fixed to 1 asserts a!=b, which has no
// union-find analog, so the constraint must survive as a direct int_ne
// rather than being silently discarded.
func TestPresolveBoolNeReifRewritesToIntNe(t *testing.T) {
	m := flatzinc.NewModel()
	a, _ := m.NewBoolVar("a", false)
	b, _ := m.NewBoolVar("b", false)
	r, err := m.NewIntVar("r", cpsolver.NewSingleDomain(1), false)
	if err != nil {
		t.Fatalf("NewIntVar(r): %v", err)
	}
	c, err := m.AddConstraint("bool_ne_reif", []flatzinc.Argument{
		flatzinc.VarArg(a.ID), flatzinc.VarArg(b.ID), flatzinc.VarArg(r.ID),
	})
	if err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	p := New(m)
	if changed := p.Run(); !changed {
		t.Fatal("expected the bool_ne_reif rule to fire")
	}
	if c.TriviallyTrue {
		t.Error("expected the rewritten constraint to remain live, not trivially true")
	}
	if c.Tag != "int_ne" {
		t.Fatalf("expected the constraint to be rewritten to int_ne, got %q", c.Tag)
	}
	if len(c.Args) != 2 {
		t.Fatalf("expected 2 args after rewrite, got %d", len(c.Args))
	}
	gotA, err := c.Args[0].AsVar()
	if err != nil {
		t.Fatalf("Args[0].AsVar: %v", err)
	}
	gotB, err := c.Args[1].AsVar()
	if err != nil {
		t.Fatalf("Args[1].AsVar: %v", err)
	}
	if m.Resolve(gotA).ID != m.Resolve(a.ID).ID || m.Resolve(gotB).ID != m.Resolve(b.ID).ID {
		t.Errorf("expected the rewritten constraint's args to be a and b, got %d and %d", gotA, gotB)
	}
	live := m.LiveConstraints()
	if len(live) != 1 || live[0] != c {
		t.Errorf("expected the rewritten int_ne to remain the model's single live constraint")
	}
}

// TestPresolveIntDivDividendZeroFixesTargetToZero covers int_div's
// dividend-zero collapse: int_div(a,b,target) with a fixed to 0 forces
// target to 0 regardless of b.
func TestPresolveIntDivDividendZeroFixesTargetToZero(t *testing.T) {
	m := flatzinc.NewModel()
	a, _ := m.NewIntVar("a", cpsolver.NewSingleDomain(0), false)
	b, _ := m.NewIntVar("b", cpsolver.NewDomain(1, 10), false)
	target, _ := m.NewIntVar("target", cpsolver.NewDomain(-100, 100), false)
	c, err := m.AddConstraint("int_div", []flatzinc.Argument{
		flatzinc.VarArg(a.ID), flatzinc.VarArg(b.ID), flatzinc.VarArg(target.ID),
	})
	if err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	p := New(m)
	if changed := p.Run(); !changed {
		t.Fatal("expected the int_div dividend-zero rule to fire")
	}
	if !c.TriviallyTrue {
		t.Error("expected the int_div constraint to be marked trivially true")
	}
	fixed, ok := m.Resolve(target.ID).Domain.IsFixed()
	if !ok || fixed != 0 {
		t.Errorf("expected target fixed to 0, got fixed=%d ok=%v", fixed, ok)
	}
}

// TestPresolveIntDivDivisorOneAliasesTargetToDividend covers int_div's
// divisor-one collapse: int_div(a,b,target) with b fixed to 1 aliases
// target to a.
func TestPresolveIntDivDivisorOneAliasesTargetToDividend(t *testing.T) {
	m := flatzinc.NewModel()
	a, _ := m.NewIntVar("a", cpsolver.NewDomain(-10, 10), false)
	b, _ := m.NewIntVar("b", cpsolver.NewSingleDomain(1), false)
	target, _ := m.NewIntVar("target", cpsolver.NewDomain(-10, 10), false)
	c, err := m.AddConstraint("int_div", []flatzinc.Argument{
		flatzinc.VarArg(a.ID), flatzinc.VarArg(b.ID), flatzinc.VarArg(target.ID),
	})
	if err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}

	p := New(m)
	if changed := p.Run(); !changed {
		t.Fatal("expected the int_div divisor-one rule to fire")
	}
	if !c.TriviallyTrue {
		t.Error("expected the int_div constraint to be marked trivially true")
	}
	if m.Resolve(target.ID).ID != m.Resolve(a.ID).ID {
		t.Errorf("expected target to resolve to the same representative as a")
	}
}
