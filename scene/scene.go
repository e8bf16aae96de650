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

// Package scene describes the display as a list of vector elements.
//
// A Scene is resolution independent and can be written as SVG, or turned
// into pixels by the render package. Coordinates are in canvas units with
// the origin at the top left and y pointing down.
package scene

import (
	"image/color"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf/graphics"
)

// Canvas size of the e-paper panel, in pixels.
const (
	Width  = 1600
	Height = 1200
)

// Scene is an ordered list of elements on a fixed-size canvas. Later
// elements are painted over earlier ones.
type Scene struct {
	Width, Height int
	Elements      []Element
}

// Element is one of Rect, Path, Text or Image.
type Element interface {
	isElement()
}

// Rect is an axis-aligned filled rectangle.
type Rect struct {
	X, Y, W, H float64
	Fill       color.RGBA
}

func (Rect) isElement() {}

// FillRule selects how the interior of a Path is determined.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// Path is a general outline which can be filled, stroked, or both.
type Path struct {
	Data   *path.Data
	Fill   *color.RGBA // nil for no fill
	Rule   FillRule
	Stroke *Stroke // nil for no stroke
}

func (Path) isElement() {}

// Stroke describes how the outline of a Path is drawn.
type Stroke struct {
	Color color.RGBA
	Width float64
	Cap   graphics.LineCapStyle
	Join  graphics.LineJoinStyle
}

// Anchor is the horizontal alignment of a Text relative to its X
// coordinate.
type Anchor int

const (
	Start Anchor = iota
	Middle
	End
)

// Text is a single line of text. Y is the baseline.
type Text struct {
	X, Y    float64
	Content string
	Size    float64 // font size in canvas units
	Bold    bool
	Anchor  Anchor
	Fill    color.RGBA

	// Family is a comma-separated list of font families, in order of
	// preference. The generic family "sans-serif" matches any font.
	Family string
}

func (Text) isElement() {}

// Image is an embedded raster image, scaled to fit inside the given box
// while keeping its aspect ratio, and centred.
type Image struct {
	X, Y, W, H float64
	MIME       string
	Data       []byte
}

func (Image) isElement() {}

// Palette colours. They match the six inks of the display, so that solid
// areas are reproduced without dithering.
var (
	Black  = color.RGBA{0, 0, 0, 255}
	White  = color.RGBA{255, 255, 255, 255}
	Yellow = color.RGBA{255, 255, 0, 255}
	Red    = color.RGBA{255, 0, 0, 255}
	Blue   = color.RGBA{0, 0, 255, 255}
	Green  = color.RGBA{0, 255, 0, 255}
)
