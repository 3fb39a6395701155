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

// Package cpsolver defines the generic constraint-propagation collaborators
// (Solver, IntVarExpr, BoolVarExpr, Constraint, Demon, Assignment) that the
// flatzinc dispatcher and the routing model are written against, plus a
// single-threaded trail-based engine implementing them.
package cpsolver

import (
	"fmt"
	"math"
	"sort"
)

// ClosedInterval stores the closed interval `[Start,End]`. If Start is
// greater than End the interval is considered empty.
type ClosedInterval struct {
	Start int64
	End   int64
}

func checkOverflowAndAdd(i, delta int64) int64 {
	if i == math.MinInt64 || i == math.MaxInt64 {
		return i
	}
	s := i + delta
	if delta < 0 && s > i {
		return math.MinInt64
	}
	if delta > 0 && s < i {
		return math.MaxInt64
	}
	return s
}

// Offset adds delta to both Start and End, clamped at the int64 extremes.
func (c ClosedInterval) Offset(delta int64) ClosedInterval {
	return ClosedInterval{checkOverflowAndAdd(c.Start, delta), checkOverflowAndAdd(c.End, delta)}
}

// Domain stores an ordered, non-adjacent list of ClosedIntervals: any subset
// of [MinInt64,MaxInt64].
type Domain struct {
	intervals []ClosedInterval
}

func (d *Domain) joinIntervals() {
	var itvs []ClosedInterval
	for _, v := range d.intervals {
		if v.Start <= v.End {
			itvs = append(itvs, v)
		}
	}
	d.intervals = itvs
	if len(d.intervals) == 0 {
		return
	}
	sort.Slice(d.intervals, func(i, j int) bool {
		if d.intervals[i].Start != d.intervals[j].Start {
			return d.intervals[i].Start < d.intervals[j].Start
		}
		return d.intervals[i].End < d.intervals[j].End
	})
	newIntervals := []ClosedInterval{d.intervals[0]}
	for i := 1; i < len(d.intervals); i++ {
		last := &newIntervals[len(newIntervals)-1]
		if last.End+1 >= d.intervals[i].Start {
			if last.End < d.intervals[i].End {
				last.End = d.intervals[i].End
			}
		} else {
			newIntervals = append(newIntervals, d.intervals[i])
		}
	}
	d.intervals = newIntervals
}

// NewEmptyDomain creates an empty Domain.
func NewEmptyDomain() Domain { return Domain{} }

// NewSingleDomain creates the singleton domain {val}.
func NewSingleDomain(val int64) Domain {
	return Domain{[]ClosedInterval{{val, val}}}
}

// NewDomain creates the domain [left,right]. If left > right, the domain is
// empty.
func NewDomain(left, right int64) Domain {
	if left > right {
		return NewEmptyDomain()
	}
	return Domain{[]ClosedInterval{{left, right}}}
}

// FromValues builds a domain from an unordered, possibly repeating, list of
// values.
func FromValues(values []int64) Domain {
	var d Domain
	for _, v := range values {
		d.intervals = append(d.intervals, ClosedInterval{v, v})
	}
	d.joinIntervals()
	return d
}

// FromIntervals builds a domain as the union of possibly-overlapping
// intervals.
func FromIntervals(intervals []ClosedInterval) Domain {
	itvs := make([]ClosedInterval, len(intervals))
	copy(itvs, intervals)
	d := Domain{itvs}
	d.joinIntervals()
	return d
}

// FromFlatIntervals rebuilds a domain from a flattened [start,end,start,end,...]
// list, as produced by FlattenedIntervals.
func FromFlatIntervals(values []int64) (Domain, error) {
	if len(values) == 0 {
		return NewEmptyDomain(), nil
	}
	if len(values)%2 != 0 {
		return NewEmptyDomain(), fmt.Errorf("len(values)=%d must be even", len(values))
	}
	var intervals []ClosedInterval
	for i := 1; i < len(values); i += 2 {
		intervals = append(intervals, ClosedInterval{values[i-1], values[i]})
	}
	d := Domain{intervals}
	d.joinIntervals()
	return d, nil
}

// FlattenedIntervals returns the [start,end,start,end,...] flattening of d.
func (d Domain) FlattenedIntervals() []int64 {
	var result []int64
	for _, i := range d.intervals {
		result = append(result, i.Start, i.End)
	}
	return result
}

// Min returns the domain minimum, or false if the domain is empty.
func (d Domain) Min() (int64, bool) {
	if len(d.intervals) == 0 {
		return 0, false
	}
	return d.intervals[0].Start, true
}

// Max returns the domain maximum, or false if the domain is empty.
func (d Domain) Max() (int64, bool) {
	if len(d.intervals) == 0 {
		return 0, false
	}
	return d.intervals[len(d.intervals)-1].End, true
}

// IsEmpty reports whether the domain has no members.
func (d Domain) IsEmpty() bool { return len(d.intervals) == 0 }

// IsFixed reports whether the domain contains exactly one value, and returns
// it.
func (d Domain) IsFixed() (int64, bool) {
	if len(d.intervals) == 1 && d.intervals[0].Start == d.intervals[0].End {
		return d.intervals[0].Start, true
	}
	return 0, false
}

// Contains reports whether v is a member of the domain.
func (d Domain) Contains(v int64) bool {
	for _, iv := range d.intervals {
		if v >= iv.Start && v <= iv.End {
			return true
		}
		if v < iv.Start {
			break
		}
	}
	return false
}

// Size returns the number of values in the domain, or -1 if it is unbounded
// (contains MinInt64 or MaxInt64 as an endpoint of an infinite interval).
func (d Domain) Size() int64 {
	var total int64
	for _, iv := range d.intervals {
		if iv.Start == math.MinInt64 || iv.End == math.MaxInt64 {
			return -1
		}
		total += iv.End - iv.Start + 1
	}
	return total
}

// IntersectWith returns the intersection of d and other.
func (d Domain) IntersectWith(other Domain) Domain {
	var result []ClosedInterval
	i, j := 0, 0
	for i < len(d.intervals) && j < len(other.intervals) {
		a, b := d.intervals[i], other.intervals[j]
		lo := a.Start
		if b.Start > lo {
			lo = b.Start
		}
		hi := a.End
		if b.End < hi {
			hi = b.End
		}
		if lo <= hi {
			result = append(result, ClosedInterval{lo, hi})
		}
		if a.End < b.End {
			i++
		} else {
			j++
		}
	}
	return FromIntervals(result)
}

// RemoveValue returns d with val removed.
func (d Domain) RemoveValue(val int64) Domain {
	var result []ClosedInterval
	for _, iv := range d.intervals {
		if val < iv.Start || val > iv.End {
			result = append(result, iv)
			continue
		}
		if iv.Start <= val-1 {
			result = append(result, ClosedInterval{iv.Start, val - 1})
		}
		if val+1 <= iv.End {
			result = append(result, ClosedInterval{val + 1, iv.End})
		}
	}
	return FromIntervals(result)
}

// String renders the domain as a union of intervals, e.g. "[0,2][5,5]".
func (d Domain) String() string {
	s := ""
	for _, iv := range d.intervals {
		s += fmt.Sprintf("[%d,%d]", iv.Start, iv.End)
	}
	if s == "" {
		return "{}"
	}
	return s
}
