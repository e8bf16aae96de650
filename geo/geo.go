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

// Package geo provides great-circle helpers for positions on the Earth's
// surface.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all distance calculations.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the length of one degree of latitude along a meridian.
const kmPerDegreeLat = 111.32

// Point is a position in decimal degrees (WGS84).
type Point struct {
	Lat float64 // latitude, positive north, -90 to 90
	Lon float64 // longitude, positive east, -180 to 180
}

func (p Point) String() string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lon)
}

// Valid reports whether p lies within the usual coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the great-circle distance between a and b in
// kilometres, using the haversine formula.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	h := sLat*sLat + math.Cos(lat1)*math.Cos(lat2)*sLon*sLon
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(min(h, 1)))
}

// Bearing returns the initial course from a to b in degrees clockwise from
// true north, in the range [0, 360).
func Bearing(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Destination returns the point reached by travelling distKm from p along
// the great circle with the given initial bearing.
func Destination(p Point, bearingDeg, distKm float64) Point {
	lat1 := p.Lat * math.Pi / 180
	lon1 := p.Lon * math.Pi / 180
	theta := bearingDeg * math.Pi / 180
	delta := distKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))

	lon := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return Point{Lat: lat2 * 180 / math.Pi, Lon: lon}
}

// BoundingBox is a lat/lon rectangle. MinLat <= MaxLat and MinLon <= MaxLon
// always hold for boxes built by BoxAround.
type BoundingBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// BoxAround returns the box of half-size radiusKm centred on c. The box is
// clamped to the valid coordinate range and never wraps the antimeridian.
// A negative radius is treated as zero.
func BoxAround(c Point, radiusKm float64) BoundingBox {
	radiusKm = max(radiusKm, 0)
	dLat := radiusKm / kmPerDegreeLat

	dLon := 180.0
	if cosLat := math.Cos(c.Lat * math.Pi / 180); cosLat > 1e-9 {
		dLon = min(dLat/cosLat, 180)
	}

	return BoundingBox{
		MinLat: max(c.Lat-dLat, -90),
		MaxLat: min(c.Lat+dLat, 90),
		MinLon: max(c.Lon-dLon, -180),
		MaxLon: min(c.Lon+dLon, 180),
	}
}

// Contains reports whether p lies inside b, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Center returns the midpoint of the box in coordinate space.
func (b BoundingBox) Center() Point {
	return Point{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}
