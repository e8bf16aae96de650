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

package testcases

import (
	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/geo"
)

var placeholderCases = []TestCase{
	{
		Name:      "empty_sky",
		Selection: flight.NoAircraft{},
	},
	{
		Name:      "positions_unavailable",
		Selection: flight.NoAircraft{},
		Notice:    "Position data unavailable",
	},
	{
		Name:      "southern_hemisphere",
		Selection: flight.NoAircraft{},
		Center:    geo.Point{Lat: -33.9461, Lon: 151.1772},
	},
}

var swiss318 = flight.Record{
	ICAO24:       "4b1814",
	Callsign:     "SWR318",
	Altitude:     flight.Float(3650),
	GroundSpeed:  flight.Float(128.6),
	Heading:      flight.Float(272.4),
	AircraftType: "Airbus A320 214",
}

var selectedCases = []TestCase{
	{
		Name:      "full",
		Selection: selected(swiss318, 20, 3.2),
		Route:     route("ZRH", "Zurich", "LHR", "London", "LX318"),
		Photo:     skyPNG(),
	},
	{
		Name:      "jpeg_photo",
		Selection: selected(swiss318, 20, 3.2),
		Route:     route("ZRH", "Zurich", "LHR", "London", "LX318"),
		Photo:     skyJPEG(),
	},
	{
		Name:      "portrait_photo",
		Selection: selected(swiss318, 20, 3.2),
		Route:     route("ZRH", "Zurich", "LHR", "London", "LX318"),
		Photo:     portraitPNG(),
	},
	{
		Name:      "no_photo",
		Selection: selected(swiss318, 20, 3.2),
		Route:     route("ZRH", "Zurich", "LHR", "London", "LX318"),
	},
	{
		Name:      "no_route",
		Selection: selected(swiss318, 20, 3.2),
		Photo:     skyPNG(),
	},
	{
		Name:      "flight_number_only",
		Selection: selected(swiss318, 20, 3.2),
		Route:     &flight.Route{Origin: flight.Airport{IATA: "ZRH"}, FlightNumber: "LX318"},
		Photo:     skyPNG(),
	},
	{
		Name: "long_names",
		Selection: selected(flight.Record{
			ICAO24:       "a8f4c2",
			Callsign:     "UAL1702",
			Altitude:     flight.Float(11277.6),
			GroundSpeed:  flight.Float(245.3),
			Heading:      flight.Float(45),
			AircraftType: "Boeing 787-10 Dreamliner",
		}, 200, 24.8),
		Route: route("SFO", "San Francisco", "EWR", "Newark Liberty International", "UA1702"),
	},
}

var edgeCases = []TestCase{
	{
		Name: "transponder_only",
		Selection: selected(flight.Record{
			ICAO24: "3c6444",
		}, 90, 0.4),
	},
	{
		Name: "on_ground",
		Selection: selected(flight.Record{
			ICAO24:      "4b1a2b",
			Callsign:    "EDW23",
			Altitude:    flight.Float(0),
			GroundSpeed: flight.Float(0),
			Heading:     flight.Float(359.9),
		}, 135, 1.7),
	},
	{
		Name:        "broken_photo",
		Selection:   selected(swiss318, 20, 3.2),
		Route:       route("ZRH", "Zurich", "LHR", "London", "LX318"),
		Photo:       &flight.Photo{Data: []byte("<html>rate limited</html>"), MIME: "image/jpeg"},
		BrokenPhoto: true,
	},
	{
		Name: "non_latin",
		Selection: selected(flight.Record{
			ICAO24:       "780a3b",
			Callsign:     "CCA841",
			Altitude:     flight.Float(10668),
			GroundSpeed:  flight.Float(250),
			Heading:      flight.Float(301),
			AircraftType: "Airbus A350-941",
		}, 300, 12.5),
		Route: route("PEK", "北京", "ZRH", "Zürich", "CA841"),
	},
}
