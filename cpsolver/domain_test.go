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

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDomainRemoveValueSplitsInterval(t *testing.T) {
	d := NewDomain(0, 5)
	got := d.RemoveValue(2)
	want := Domain{[]ClosedInterval{{0, 1}, {3, 5}}}

	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Domain{}, ClosedInterval{})); diff != "" {
		t.Errorf("RemoveValue(2) returned unexpected diff (-want+got):\n%s", diff)
	}
	if got.Size() != 5 {
		t.Errorf("expected size 5 after removing one value from a 6-value domain, got %d", got.Size())
	}
}

func TestDomainIntersectWith(t *testing.T) {
	a := NewDomain(0, 10)
	b := FromValues([]int64{3, 4, 5, 20})
	got := a.IntersectWith(b)
	want := Domain{[]ClosedInterval{{3, 5}}}

	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Domain{}, ClosedInterval{})); diff != "" {
		t.Errorf("IntersectWith returned unexpected diff (-want+got):\n%s", diff)
	}
	if got.Size() != 3 {
		t.Errorf("expected intersection size 3, got %d", got.Size())
	}
}

func TestDomainIsFixed(t *testing.T) {
	single := NewSingleDomain(7)
	val, ok := single.IsFixed()
	if !ok || val != 7 {
		t.Errorf("expected a single-value domain to report fixed=7, got %d, %v", val, ok)
	}

	wide := NewDomain(0, 1)
	if _, ok := wide.IsFixed(); ok {
		t.Error("expected a two-value domain not to be fixed")
	}
}

func TestDomainEmptyBoundary(t *testing.T) {
	// An empty domain has no intervals, no min, and reports zero size.
	empty := NewEmptyDomain()
	want := Domain{}

	if diff := cmp.Diff(want, empty, cmp.AllowUnexported(Domain{}, ClosedInterval{})); diff != "" {
		t.Errorf("NewEmptyDomain() returned unexpected diff (-want+got):\n%s", diff)
	}
	if _, ok := empty.Min(); ok {
		t.Error("expected Min() to report not-ok on an empty domain")
	}
	if empty.Size() != 0 {
		t.Errorf("expected size 0 for an empty domain, got %d", empty.Size())
	}
}
