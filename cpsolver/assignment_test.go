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

package cpsolver

import "testing"

func TestAssignmentSetValueAndValue(t *testing.T) {
	s := NewSolver()
	v := s.NewIntVar(0, 10, "v")

	a := NewAssignment()
	a.Add(v)
	if !a.Contains(v) {
		t.Fatal("expected Add to register v")
	}
	if _, ok := a.Value(v); ok {
		t.Error("expected an added-but-unset variable to report not-ok")
	}

	a.SetValue(v, 5)
	got, ok := a.Value(v)
	if !ok || got != 5 {
		t.Errorf("expected Value to return 5, got %d, %v", got, ok)
	}
}

func TestAssignmentCloneIsIndependent(t *testing.T) {
	s := NewSolver()
	v := s.NewIntVar(0, 10, "v")

	a := NewAssignment()
	a.SetValue(v, 3)
	clone := a.Clone()

	a.SetValue(v, 9)
	got, ok := clone.Value(v)
	if !ok || got != 3 {
		t.Errorf("expected the clone to keep its own value 3 after the original changed, got %d, %v", got, ok)
	}
}

func TestAssignmentObjectiveValue(t *testing.T) {
	s := NewSolver()
	obj := s.NewIntVar(0, 100, "obj")

	a := NewAssignment()
	if _, ok := a.ObjectiveValue(); ok {
		t.Error("expected no objective before SetObjective is called")
	}
	a.SetObjective(obj)
	a.SetValue(obj, 42)
	got, ok := a.ObjectiveValue()
	if !ok || got != 42 {
		t.Errorf("expected ObjectiveValue to return 42, got %d, %v", got, ok)
	}
}

func TestAssignmentRestoreCommitsToLiveVariables(t *testing.T) {
	s := NewSolver()
	w := s.NewIntVar(0, 10, "w")

	a := NewAssignment()
	a.SetValue(w, 7)
	if err := a.Restore([]IntVarExpr{w}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, ok := w.Bound()
	if !ok || got != 7 {
		t.Errorf("expected w to be bound to 7 after Restore, got %d, %v", got, ok)
	}
}
