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

package search

import (
	"math"
	"sort"

	"github.com/vrpcore/vrpcore/cpsolver"
	"github.com/vrpcore/vrpcore/routing"
)

// PolarLocator supplies each node's (angle, distance) from the depot so
// SweepStrategy can bucket nodes into angular sectors (spec §4.6 "Sweep",
// grounded on original_source/src/constraint_solver/routing.cc's sweep
// arc builder, lines ~2198-2290, which buckets by polar angle around the
// depot and orders within a sector by distance).
type PolarLocator interface {
	Angle(n routing.NodeIndex) float64    // radians, [0, 2π)
	Distance(n routing.NodeIndex) float64 // from depot
}

type sweepPoint struct {
	node     routing.NodeIndex
	index    routing.Index
	angle    float64
	distance float64
}

// sweepStrategy partitions plain nodes into cfg.SweepSectors angular
// sectors around vehicle 0's start and orders nodes within a sector by
// increasing distance (spec §4.6 "Sweep"). Sectors are then walked in order
// and their nodes appended to the current vehicle's route one at a time; a
// node that the current vehicle cannot serve — because its VehicleVar
// domain excludes that vehicle, or appending it would break a dimension's
// forward-propagated cumul bounds against the vehicle's capacity — starts
// a new route on the next compatible vehicle instead, mirroring
// RouteConstructor's own vehicle-class and dimension checks (spec §4.6
// steps 2-3). If no PolarLocator is registered on the model this degrades
// to pathByPathCheapestArc, since the geometry needed for sweeping is not
// derivable from arc costs alone.
func sweepStrategy(cfg Config) routing.Strategy {
	return func(m *routing.Model, initial *cpsolver.Assignment) (*cpsolver.Assignment, error) {
		locator, ok := locatorRegistry[m]
		if !ok {
			return pathByPathCheapestArc(m, initial)
		}
		sectors := cfg.SweepSectors
		if sectors <= 0 {
			sectors = 1
		}
		points := make([]sweepPoint, 0, m.NumNodes())
		for i := 0; i < m.NumNodes(); i++ {
			idx := routing.Index(i)
			node := m.IndexToNode(idx)
			points = append(points, sweepPoint{
				node:     node,
				index:    idx,
				angle:    locator.Angle(node),
				distance: locator.Distance(node),
			})
		}
		sectorWidth := 2 * math.Pi / float64(sectors)
		buckets := make([][]sweepPoint, sectors)
		for _, p := range points {
			s := int(p.angle / sectorWidth)
			if s >= sectors {
				s = sectors - 1
			}
			buckets[s] = append(buckets[s], p)
		}
		for _, b := range buckets {
			sort.Slice(b, func(i, j int) bool { return b[i].distance < b[j].distance })
		}

		routes := make(routing.RouteCollection, m.NumVehicles())
		vehicle := 0
		var prev routing.Index
		havePrev := false
		cumuls := make(map[string]int64)
		advance := func() {
			vehicle++
			havePrev = false
			cumuls = make(map[string]int64)
		}
		for _, b := range buckets {
			for _, p := range b {
				for vehicle < m.NumVehicles() {
					if !m.VehicleVar(p.index).Domain().Contains(int64(vehicle)) {
						advance()
						continue
					}
					if havePrev && !sweepDimensionsAllow(m, prev, p.index, vehicle, cumuls) {
						advance()
						continue
					}
					break
				}
				if vehicle >= m.NumVehicles() {
					continue // no vehicle left that can serve this node: stays unperformed
				}
				routes[vehicle] = append(routes[vehicle], p.node)
				prev, havePrev = p.index, true
			}
		}
		return m.RoutesToAssignment(routes, false, true)
	}
}

// sweepDimensionsAllow reports whether appending to right after from on
// vehicle's route keeps every dimension within its slack/cumul bounds and
// the vehicle's own capacity, updating cumuls (keyed by dimension name) in
// place on success.
func sweepDimensionsAllow(m *routing.Model, from, to routing.Index, vehicle int, cumuls map[string]int64) bool {
	for _, name := range m.DimensionNames() {
		d, ok := m.Dimension(name)
		if !ok {
			continue
		}
		next, feasible := d.FeasibleForward(cumuls[name], from, to)
		if !feasible || next > d.CapacityOf(vehicle) {
			return false
		}
		cumuls[name] = next
	}
	return true
}

// locatorRegistry associates a Model with a caller-registered PolarLocator
// (spec §4.6 does not specify how geometry reaches the sweep builder; this
// port uses an explicit registration call rather than a Model field, to
// keep routing.Model free of search-only concerns).
var locatorRegistry = make(map[*routing.Model]PolarLocator)

// RegisterPolarLocator attaches a PolarLocator to m for SweepStrategy's
// use. Call this before invoking Solve with search.Sweep.
func RegisterPolarLocator(m *routing.Model, locator PolarLocator) {
	locatorRegistry[m] = locator
}
