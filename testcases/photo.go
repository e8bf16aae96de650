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
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/radar/flight"
	"seehuhn.de/go/radar/raster"
)

// Synthetic aircraft photos: a plane silhouette against a sky gradient
// above a strip of grass.
var (
	skyPNG = sync.OnceValue(func() *flight.Photo {
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, skyImage(480, 320)); err != nil {
			panic(err)
		}
		return &flight.Photo{Data: buf.Bytes(), MIME: "image/png", Credit: "testcases"}
	})
	skyJPEG = sync.OnceValue(func() *flight.Photo {
		buf := &bytes.Buffer{}
		if err := jpeg.Encode(buf, skyImage(640, 360), &jpeg.Options{Quality: 80}); err != nil {
			panic(err)
		}
		return &flight.Photo{Data: buf.Bytes(), MIME: "image/jpeg"}
	})
	// tall photo, to exercise letterboxing on the sides
	portraitPNG = sync.OnceValue(func() *flight.Photo {
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, skyImage(300, 400)); err != nil {
			panic(err)
		}
		return &flight.Photo{Data: buf.Bytes(), MIME: "image/png"}
	})
)

func skyImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	ground := h * 4 / 5
	for y := range h {
		var c color.RGBA
		if y < ground {
			t := float64(y) / float64(ground)
			c = color.RGBA{
				R: uint8(90 + 150*t),
				G: uint8(150 + 95*t),
				B: 245,
				A: 255,
			}
		} else {
			c = color.RGBA{R: 60, G: 150, B: 50, A: 255}
		}
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}

	// silhouette, in units of the image width
	s := float64(w)
	cx, cy := s/2, float64(h)*0.4
	p := func(x, y float64) vec.Vec2 { return vec.Vec2{X: cx + x*s, Y: cy + y*s} }
	plane := (&path.Data{}).
		// fuselage
		MoveTo(p(-0.30, -0.015)).LineTo(p(0.27, -0.015)).
		QuadTo(p(0.32, 0), p(0.27, 0.015)).
		LineTo(p(-0.30, 0.015)).Close().
		// wing
		MoveTo(p(0.02, 0)).LineTo(p(-0.10, -0.22)).LineTo(p(-0.14, -0.22)).
		LineTo(p(-0.08, 0)).LineTo(p(-0.14, 0.22)).LineTo(p(-0.10, 0.22)).Close().
		// tail
		MoveTo(p(-0.24, 0)).LineTo(p(-0.30, -0.08)).LineTo(p(-0.32, -0.08)).
		LineTo(p(-0.30, 0)).LineTo(p(-0.32, 0.08)).LineTo(p(-0.30, 0.08)).Close()

	r := raster.NewRasterizer(rect.Rect{URx: float64(w), URy: float64(h)})
	r.FillNonZero(plane, func(y, xMin int, coverage []float32) {
		for i, v := range coverage {
			x := xMin + i
			bg := img.RGBAAt(x, y)
			mix := func(a uint8) uint8 { return uint8(float32(a)*(1-v) + 40*v) }
			img.SetRGBA(x, y, color.RGBA{R: mix(bg.R), G: mix(bg.G), B: mix(bg.B), A: 255})
		}
	})
	return img
}
