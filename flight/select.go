// seehuhn.de/go/radar - nearest-aircraft display for colour e-paper
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package flight

import (
	"math"

	"seehuhn.de/go/radar/geo"
)

// Selection is the outcome of choosing an aircraft. It is either Selected
// or NoAircraft.
type Selection interface {
	isSelection()
}

// Selected is a Selection holding the chosen aircraft.
type Selected struct {
	Record     Record
	DistanceKm float64 // great-circle distance from the reference point
}

func (Selected) isSelection() {}

// NoAircraft is the Selection used when no candidate is in range. It is a
// normal outcome, not an error.
type NoAircraft struct{}

func (NoAircraft) isSelection() {}

// Select returns the candidate closest to center. When several candidates
// are equally close, the one that comes first in candidates wins.
// Candidates whose distance cannot be computed are ignored.
func Select(candidates []Record, center geo.Point) Selection {
	best := -1
	bestDist := math.Inf(1)
	for i := range candidates {
		d := geo.Distance(center, candidates[i].Position)
		if math.IsNaN(d) {
			continue
		}
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return NoAircraft{}
	}
	return Selected{Record: candidates[best], DistanceKm: bestDist}
}

// Filter restricts which candidates are eligible for selection.
// Zero values disable the corresponding criterion.
type Filter struct {
	MaxDistanceKm float64 // ignore aircraft further away than this
	MaxAltitude   float64 // ignore aircraft higher than this, in metres
}

// Apply returns the candidates that pass f, in their original order.
// Records without an altitude pass the altitude test.
func (f Filter) Apply(candidates []Record, center geo.Point) []Record {
	if f.MaxDistanceKm <= 0 && f.MaxAltitude <= 0 {
		return candidates
	}
	out := make([]Record, 0, len(candidates))
	for _, r := range candidates {
		if f.MaxDistanceKm > 0 && !(geo.Distance(center, r.Position) <= f.MaxDistanceKm) {
			continue
		}
		if f.MaxAltitude > 0 && r.Altitude != nil && *r.Altitude > f.MaxAltitude {
			continue
		}
		out = append(out, r)
	}
	return out
}
