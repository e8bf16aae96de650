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

package scene

import (
	"fmt"
	"image/color"
	"math"

	"github.com/dustin/go-humanize"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/geo"
)

// DefaultFamily is the font family list used when Options.Family is empty.
const DefaultFamily = "Google Sans, sans-serif"

// Options control the parts of the layout which do not depend on the
// selected aircraft.
type Options struct {
	// Center is the reference point. It is shown on the placeholder.
	Center geo.Point

	// Notice is an optional message shown on the placeholder, for example
	// when position data could not be fetched.
	Notice string

	// Family overrides DefaultFamily.
	Family string
}

func (o Options) family() string {
	if o.Family != "" {
		return o.Family
	}
	return DefaultFamily
}

// Band boundaries of the aircraft layout.
const (
	routeBottom = 160  // route band: [0, routeBottom)
	photoBottom = 920  // photo region: [routeBottom, photoBottom)
	statsBottom = 1040 // statistics band: [photoBottom, statsBottom)
)

const (
	metresToFeet = 3.28084
	msToKnots    = 1.943844
)

// Compose builds the scene for a selection. Route and photo are optional
// and may be nil. Missing fields are left out of the layout.
func Compose(sel flight.Selection, route *flight.Route, photo *flight.Photo, opts Options) *Scene {
	s, ok := sel.(flight.Selected)
	if !ok {
		return Placeholder(opts)
	}

	b := newBuilder(opts.family())
	b.add(Rect{W: Width, H: Height, Fill: White})

	if photo != nil && len(photo.Data) > 0 {
		b.add(Image{
			Y: routeBottom, W: Width, H: photoBottom - routeBottom,
			MIME: photo.MIME,
			Data: photo.Data,
		})
	}

	b.routeBand(route)
	b.add(Rect{Y: routeBottom - 2, W: Width, H: 4, Fill: Black})

	b.add(Rect{Y: photoBottom, W: Width, H: statsBottom - photoBottom, Fill: White})
	b.statsBand(&s.Record, s.DistanceKm)
	b.add(Rect{Y: statsBottom - 2, W: Width, H: 4, Fill: Black})

	b.identBand(&s.Record, route)

	return b.scene()
}

// Placeholder returns the layout shown when no aircraft is in range.
func Placeholder(opts Options) *Scene {
	b := newBuilder(opts.family())
	b.add(Rect{W: Width, H: Height, Fill: White})

	// radar scope
	cx, cy := float64(Width)/2, 330.0
	scope := &path.Data{}
	for _, r := range []float64{70, 140, 210} {
		addCircle(scope, cx, cy, r)
	}
	scope.MoveTo(vec.Vec2{X: cx - 230, Y: cy}).LineTo(vec.Vec2{X: cx + 230, Y: cy})
	scope.MoveTo(vec.Vec2{X: cx, Y: cy - 230}).LineTo(vec.Vec2{X: cx, Y: cy + 230})
	b.add(Path{Data: scope, Stroke: &Stroke{
		Color: Blue, Width: 6,
		Cap: graphics.LineCapRound, Join: graphics.LineJoinRound,
	}})

	b.text(cx, 700, "NO AIRCRAFT OVERHEAD", 90, true, Black)
	b.text(cx, 790, fmt.Sprintf("Watching %.4f, %.4f", opts.Center.Lat, opts.Center.Lon), 40, false, Black)
	if opts.Notice != "" {
		b.text(cx, 900, opts.Notice, 40, true, Red)
	}
	return b.scene()
}

type builder struct {
	family string
	elems  []Element
}

func newBuilder(family string) *builder {
	return &builder{family: family}
}

func (b *builder) add(e Element) {
	b.elems = append(b.elems, e)
}

func (b *builder) text(x, y float64, s string, size float64, bold bool, c color.RGBA) {
	b.add(Text{
		X: x, Y: y,
		Content: s,
		Size:    size,
		Bold:    bold,
		Anchor:  Middle,
		Fill:    c,
		Family:  b.family,
	})
}

func (b *builder) scene() *Scene {
	return &Scene{Width: Width, Height: Height, Elements: b.elems}
}

// routeBand shows origin and destination. Without both airport codes only
// the flight number is shown, if known.
func (b *builder) routeBand(route *flight.Route) {
	if !route.HasEndpoints() {
		if route != nil && route.FlightNumber != "" {
			b.text(Width/2, 105, route.FlightNumber, 90, true, Black)
		}
		return
	}

	for _, end := range []struct {
		x  float64
		ap flight.Airport
	}{{400, route.Origin}, {1200, route.Destination}} {
		b.text(end.x, 105, end.ap.IATA, 100, true, Black)
		if end.ap.Name != "" {
			b.text(end.x, 150, end.ap.Name, 35, false, Black)
		}
	}

	arrow := (&path.Data{}).
		MoveTo(vec.Vec2{X: 710, Y: 70}).
		LineTo(vec.Vec2{X: 890, Y: 70}).
		MoveTo(vec.Vec2{X: 850, Y: 35}).
		LineTo(vec.Vec2{X: 890, Y: 70}).
		LineTo(vec.Vec2{X: 850, Y: 105})
	b.add(Path{Data: arrow, Stroke: &Stroke{
		Color: Red, Width: 10,
		Cap: graphics.LineCapRound, Join: graphics.LineJoinRound,
	}})
}

type field struct {
	label, value string
	size         float64
}

// statsBand shows altitude, speed, heading and distance.
func (b *builder) statsBand(r *flight.Record, distKm float64) {
	var fields []field
	if r.Altitude != nil {
		ft := humanize.Comma(int64(math.Round(*r.Altitude * metresToFeet)))
		fields = append(fields, field{"ALTITUDE", ft + " ft", 50})
	}
	if r.GroundSpeed != nil {
		fields = append(fields, field{"SPEED", fmt.Sprintf("%.0f kt", *r.GroundSpeed*msToKnots), 50})
	}
	if r.Heading != nil {
		deg := int(math.Round(*r.Heading)) % 360
		if deg < 0 {
			deg += 360
		}
		fields = append(fields, field{"HEADING", fmt.Sprintf("%03d° %s", deg, compassPoint(deg)), 50})
	}
	fields = append(fields, field{"DISTANCE", fmt.Sprintf("%.1f km", distKm), 50})

	b.row(fields, photoBottom+40, 60)
}

// identBand shows callsign, flight number and aircraft type.
func (b *builder) identBand(r *flight.Record, route *flight.Route) {
	fields := []field{{"CALLSIGN", r.Ident(), 90}}
	if route != nil && route.FlightNumber != "" {
		fields = append(fields, field{"FLIGHT", route.FlightNumber, 90})
	}
	if r.AircraftType != "" {
		fields = append(fields, field{"AIRCRAFT TYPE", r.AircraftType, 70})
	}
	b.row(fields, statsBottom+50, 85)
}

// row spreads fields evenly across the canvas width. Labels sit on the
// baseline y, values gap units below.
func (b *builder) row(fields []field, y, gap float64) {
	n := float64(len(fields))
	for i, f := range fields {
		x := Width * (2*float64(i) + 1) / (2 * n)
		b.text(x, y, f.label, 30+f.size/10, false, Blue)
		b.text(x, y+gap, f.value, f.size, true, Black)
	}
}

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// compassPoint names the eighth of the compass containing deg.
func compassPoint(deg int) string {
	return compassPoints[((deg*2+45)/90)%8]
}

// addCircle appends a circle made of four cubic arcs to p.
func addCircle(p *path.Data, cx, cy, r float64) {
	const k = 0.5522847498
	kr := k * r
	p.MoveTo(vec.Vec2{X: cx + r, Y: cy}).
		CubeTo(vec.Vec2{X: cx + r, Y: cy + kr}, vec.Vec2{X: cx + kr, Y: cy + r}, vec.Vec2{X: cx, Y: cy + r}).
		CubeTo(vec.Vec2{X: cx - kr, Y: cy + r}, vec.Vec2{X: cx - r, Y: cy + kr}, vec.Vec2{X: cx - r, Y: cy}).
		CubeTo(vec.Vec2{X: cx - r, Y: cy - kr}, vec.Vec2{X: cx - kr, Y: cy - r}, vec.Vec2{X: cx, Y: cy - r}).
		CubeTo(vec.Vec2{X: cx + kr, Y: cy - r}, vec.Vec2{X: cx + r, Y: cy - kr}, vec.Vec2{X: cx + r, Y: cy}).
		Close()
}
