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

// Package testcases is a catalogue of display situations, used for tests,
// benchmarks and for looking at the output by eye.
package testcases

import (
	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/geo"
	"seehuhn.de/go/radar/scene"
)

// TestCase is one situation shown on the display.
type TestCase struct {
	Name      string           // lowercase a-z and _ only
	Selection flight.Selection // outcome of the aircraft selection
	Route     *flight.Route    // nil if unknown
	Photo     *flight.Photo    // nil if unavailable
	Notice    string           // placeholder notice, if any

	// Center is the reference point. The zero value means Home.
	Center geo.Point

	// BrokenPhoto is set if the photo cannot be decoded, so that
	// rendering the case gives an optional error.
	BrokenPhoto bool
}

// Home is the reference point used by most cases.
var Home = geo.Point{Lat: 47.4197, Lon: 8.4344}

// Scene composes the scene for tc.
func (tc TestCase) Scene() *scene.Scene {
	center := tc.Center
	if center == (geo.Point{}) {
		center = Home
	}
	return scene.Compose(tc.Selection, tc.Route, tc.Photo, scene.Options{
		Center: center,
		Notice: tc.Notice,
	})
}

// All contains all test cases, grouped by category.
// The category name is used as a prefix in output file names.
var All = map[string][]TestCase{
	"placeholder": placeholderCases,
	"selected":    selectedCases,
	"edge":        edgeCases,
}

// selected builds a selection for a record at the given bearing and
// distance from Home.
func selected(r flight.Record, bearing, distKm float64) flight.Selected {
	r.Position = geo.Destination(Home, bearing, distKm)
	return flight.Selected{Record: r, DistanceKm: distKm}
}

func route(from, fromName, to, toName, number string) *flight.Route {
	return &flight.Route{
		Origin:       flight.Airport{IATA: from, Name: fromName},
		Destination:  flight.Airport{IATA: to, Name: toName},
		FlightNumber: number,
	}
}
