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

// Package flight holds the aircraft data model and the nearest-aircraft
// selection.
package flight

import (
	"strings"

	"seehuhn.de/go/radar/geo"
)

// Record is one aircraft as reported by the position source. Optional
// numeric fields are nil when the source did not report them; optional
// strings are empty.
type Record struct {
	ICAO24   string    // 24-bit transponder address, lowercase hex
	Callsign string    // trimmed callsign, empty if unknown
	Position geo.Point // last known position

	Altitude    *float64 // barometric altitude in metres
	GroundSpeed *float64 // metres per second
	Heading     *float64 // true track, degrees clockwise from north

	// AircraftType is the model name, e.g. "Airbus A320-214".
	AircraftType string

	// Route is filled in by enrichment.
	Route *Route

	// PhotoURL is the location of a photo of this airframe, if known.
	PhotoURL string
}

// Ident returns the callsign, or the uppercase transponder address if no
// callsign is known.
func (r *Record) Ident() string {
	if r.Callsign != "" {
		return r.Callsign
	}
	return strings.ToUpper(r.ICAO24)
}

// Airport identifies one end of a route.
type Airport struct {
	IATA string // three-letter code, may be empty
	Name string // city or airport name, may be empty
}

// Route describes the scheduled origin and destination of a flight.
type Route struct {
	Origin       Airport
	Destination  Airport
	FlightNumber string // IATA flight number, e.g. "LX318"
}

// HasEndpoints reports whether both airport codes are known.
func (r *Route) HasEndpoints() bool {
	return r != nil && r.Origin.IATA != "" && r.Destination.IATA != ""
}

// Photo is an encoded raster image of an aircraft.
type Photo struct {
	Data []byte // encoded image bytes
	MIME string // media type of Data, e.g. "image/jpeg"

	// Source is the URL the photo was downloaded from, if any.
	Source string

	// Credit names the photographer, if known.
	Credit string
}

// Float returns a pointer to v. It is a convenience for filling the
// optional fields of a Record.
func Float(v float64) *float64 {
	return &v
}
